package discord

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/C-EO/codebot/internal/config"
	"github.com/C-EO/codebot/internal/dispatch"
	"github.com/C-EO/codebot/internal/guard"
	"github.com/C-EO/codebot/pkg/cmd"
	"github.com/C-EO/codebot/pkg/jobmgr"
	"github.com/C-EO/codebot/pkg/util"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

// Bot is a Discord bot
type Bot struct {
	dg         *discordgo.Session
	cfg        *config.Config
	registry   *cmd.Registry
	dispatcher *dispatch.Dispatcher
	syncer     *commandSyncer
	log        zerolog.Logger

	ctx    context.Context
	jobs   *jobmgr.Manager
	mu     sync.Mutex
	synced map[string]bool
}

// guildSyncWorkers bounds concurrent command registration on startup.
const guildSyncWorkers = 4

// NewBot creates the session and the interaction pipeline. Nothing connects
// until Run.
func NewBot(cfg *config.Config, registry *cmd.Registry, auth *guard.Authorizer, log zerolog.Logger) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	b := &Bot{
		dg:       dg,
		cfg:      cfg,
		registry: registry,
		syncer:   newCommandSyncer(sessionCommandAPI(dg), cfg.CommandHashDir, log),
		log:      log,
		ctx:      context.Background(),
		synced:   make(map[string]bool),
	}
	b.dispatcher = dispatch.New(registry, auth, b, Responder{Session: dg},
		dispatch.WithSubject(subjectWithFallback(dg)),
		dispatch.WithLogger(log),
		dispatch.WithTimeouts(cfg.CommandTimeout, cfg.AutocompleteTimeout),
	)
	return b, nil
}

// Session implements slash.Client.
func (b *Bot) Session() *discordgo.Session { return b.dg }

// Run opens the gateway connection and blocks until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	b.ctx = ctx
	b.jobs = jobmgr.NewManager(ctx, func(name, state string, err error) {
		if err != nil {
			b.log.Error().Str("job", name).Err(err).Msg("system job failed")
			return
		}
		b.log.Debug().Str("job", name).Str("state", state).Msg("system job")
	})

	b.dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers
	b.dg.AddHandler(b.onReady)
	b.dg.AddHandler(b.onGuildCreate)
	b.dg.AddHandler(b.onInteractionCreate)

	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer b.dg.Close()
	defer b.jobs.StopAll()

	go b.handleSystemEvents(ctx)

	<-ctx.Done()
	b.log.Info().Msg("shutdown signal received, closing session")
	return nil
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	var guildIDs []string
	for _, g := range r.Guilds {
		if !b.leaveIfBlacklisted(s, g.ID) {
			guildIDs = append(guildIDs, g.ID)
		}
	}
	err := util.Parallel(b.ctx, guildIDs, guildSyncWorkers, func(_ context.Context, guildID string) error {
		return b.syncGuild(guildID, false)
	})
	if err != nil {
		b.log.Error().Err(err).Msg("slash command registration incomplete")
	}
	b.log.Info().Str("user", r.User.Username).Int("guilds", len(r.Guilds)).Msg("discord bot is running")
}

func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	if b.leaveIfBlacklisted(s, g.ID) {
		return
	}
	if err := b.syncGuild(g.ID, false); err != nil {
		b.log.Error().Str("guild", g.ID).Err(err).Msg("failed to register slash commands")
	}
}

func (b *Bot) onInteractionCreate(_ *discordgo.Session, i *discordgo.InteractionCreate) {
	b.dispatcher.Route(b.ctx, i)
}

func (b *Bot) isGuildBlacklisted(guildID string) bool {
	return slices.Contains(b.cfg.DiscordGuildBlacklist, guildID)
}

func (b *Bot) leaveIfBlacklisted(s *discordgo.Session, guildID string) bool {
	if !b.isGuildBlacklisted(guildID) {
		return false
	}
	b.log.Info().Str("guild", guildID).Msg("leaving blacklisted guild")
	if err := s.GuildLeave(guildID); err != nil {
		b.log.Error().Str("guild", guildID).Err(err).Msg("failed to leave guild")
	}
	return true
}

// schemas returns the registration payload of every registered command.
func (b *Bot) schemas() []*discordgo.ApplicationCommand {
	defs := dispatch.Definitions(b.registry)
	out := make([]*discordgo.ApplicationCommand, 0, len(defs))
	for _, d := range defs {
		out = append(out, d.Schema())
	}
	return out
}

// syncGuild registers commands for a guild once per process unless force is
// set.
func (b *Bot) syncGuild(guildID string, force bool) error {
	if !b.cfg.InitSlashCommands {
		b.log.Debug().Str("guild", guildID).Msg("slash command registration skipped")
		return nil
	}

	b.mu.Lock()
	if b.synced[guildID] && !force {
		b.mu.Unlock()
		return nil
	}
	b.synced[guildID] = true
	b.mu.Unlock()

	if b.dg.State == nil || b.dg.State.User == nil {
		return fmt.Errorf("guild %s: session user unknown", guildID)
	}
	if err := b.syncer.sync(b.ctx, b.dg.State.User.ID, guildID, b.schemas()); err != nil {
		b.mu.Lock()
		delete(b.synced, guildID)
		b.mu.Unlock()
		return err
	}
	return nil
}
