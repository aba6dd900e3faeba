package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/C-EO/codebot/internal/commands"
	"github.com/C-EO/codebot/internal/config"
	"github.com/C-EO/codebot/internal/discord"
	"github.com/C-EO/codebot/internal/dispatch"
	"github.com/C-EO/codebot/internal/guard"
	"github.com/C-EO/codebot/internal/logging"
	"github.com/C-EO/codebot/internal/storage"
	"github.com/C-EO/codebot/pkg/cmd"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// logging is not configured yet
		logging.New(logging.Options{Level: "info"}).Fatal().Err(err).Msg("failed to load config")
	}

	log := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	log.Info().Msg("starting discord bot")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store, err := storage.New(cfg.StoragePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.StoragePath).Msg("failed to open storage")
	}
	defer store.Close()

	if cfg.OwnerID == "" {
		log.Warn().Msg("OWNER_ID is not set, owner-only commands are disabled")
	}

	registry := cmd.DefaultRegistry
	deps := commands.Deps{
		Registry: registry,
		Store:    store,
		OwnerID:  cfg.OwnerID,
		Started:  time.Now(),
	}
	if err := commands.RegisterAll(deps, dispatch.WithCommandLogger(store, log)); err != nil {
		log.Fatal().Err(err).Msg("failed to register commands")
	}

	auth := &guard.Authorizer{OwnerID: cfg.OwnerID, DB: store}
	bot, err := discord.NewBot(cfg, registry, auth, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create bot")
	}

	if err := bot.Run(ctx); err != nil {
		log.Error().Err(err).Msg("discord bot error")
		return
	}
	log.Info().Msg("discord bot exited cleanly")
}
