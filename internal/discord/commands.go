package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/C-EO/codebot/pkg/retrylimit"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

// commandAPI is the slice of the Discord REST API command sync needs.
type commandAPI struct {
	list   func(appID, guildID string) ([]*discordgo.ApplicationCommand, error)
	create func(appID, guildID string, c *discordgo.ApplicationCommand) (*discordgo.ApplicationCommand, error)
	remove func(appID, guildID, cmdID string) error
}

func sessionCommandAPI(s *discordgo.Session) commandAPI {
	return commandAPI{
		list: func(appID, guildID string) ([]*discordgo.ApplicationCommand, error) {
			return s.ApplicationCommands(appID, guildID)
		},
		create: func(appID, guildID string, c *discordgo.ApplicationCommand) (*discordgo.ApplicationCommand, error) {
			return s.ApplicationCommandCreate(appID, guildID, c)
		},
		remove: func(appID, guildID, cmdID string) error {
			return s.ApplicationCommandDelete(appID, guildID, cmdID)
		},
	}
}

// commandSyncer makes a guild's registered commands match the local
// definitions: obsolete ones are deleted, new or changed ones are created.
type commandSyncer struct {
	api     commandAPI
	cache   hashCache
	limiter *retrylimit.AdaptiveLimiter
	retry   retrylimit.Config
	log     zerolog.Logger
}

func newCommandSyncer(api commandAPI, hashDir string, log zerolog.Logger) *commandSyncer {
	return &commandSyncer{
		api:     api,
		cache:   hashCache{dir: hashDir},
		limiter: retrylimit.NewAdaptiveLimiter(20, 1, 40, 1, 0.5),
		retry: retrylimit.Config{
			MaxAttempts: 3,
			Retryable:   transientRESTError,
			OnRetry: func(attempt int, err error, wait time.Duration) {
				log.Warn().Int("attempt", attempt).Dur("wait", wait).Err(err).Msg("retrying command sync call")
			},
		},
		log: log,
	}
}

// transientRESTError treats throttling and server-side failures as
// retryable.
func transientRESTError(err error) (bool, time.Duration) {
	var rest *discordgo.RESTError
	if !errors.As(err, &rest) || rest.Response == nil {
		return false, 0
	}
	code := rest.Response.StatusCode
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError, 0
}

func (s *commandSyncer) call(ctx context.Context, fn func() error) error {
	return retrylimit.Do(ctx, s.limiter, s.retry, fn)
}

func (s *commandSyncer) sync(ctx context.Context, appID, guildID string, defs []*discordgo.ApplicationCommand) error {
	log := s.log.With().Str("guild", guildID).Logger()

	remote, err := s.api.list(appID, guildID)
	if err != nil {
		return fmt.Errorf("list commands for guild %s: %w", guildID, err)
	}
	remoteByName := make(map[string]*discordgo.ApplicationCommand, len(remote))
	for _, rc := range remote {
		remoteByName[rc.Name] = rc
	}

	hashes, err := s.cache.load(guildID)
	if err != nil {
		log.Warn().Err(err).Msg("ignoring command hash cache")
	}

	local := make(map[string]struct{}, len(defs))
	for _, d := range defs {
		local[d.Name] = struct{}{}
	}

	for name, rc := range remoteByName {
		if _, ok := local[name]; ok {
			continue
		}
		err := s.call(ctx, func() error { return s.api.remove(appID, guildID, rc.ID) })
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			log.Error().Str("command", name).Err(err).Msg("failed to delete obsolete command")
			continue
		}
		delete(hashes, name)
		log.Info().Str("command", name).Msg("deleted obsolete command")
	}

	for _, d := range defs {
		h := hashCommand(d)
		if _, registered := remoteByName[d.Name]; registered && hashes[d.Name] == h {
			continue
		}
		err := s.call(ctx, func() error {
			_, err := s.api.create(appID, guildID, d)
			return err
		})
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			log.Error().Str("command", d.Name).Err(err).Msg("failed to register command")
			continue
		}
		hashes[d.Name] = h
		log.Info().Str("command", d.Name).Msg("registered command")
	}

	return s.cache.save(guildID, hashes)
}

// removeAll deletes every command registered in a guild.
func (s *commandSyncer) removeAll(ctx context.Context, appID, guildID string) error {
	existing, err := s.api.list(appID, guildID)
	if err != nil {
		return err
	}
	for _, c := range existing {
		if err := s.call(ctx, func() error { return s.api.remove(appID, guildID, c.ID) }); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.log.Error().Str("guild", guildID).Str("command", c.Name).Err(err).Msg("failed to delete command")
		}
	}
	return s.cache.save(guildID, map[string]string{})
}
