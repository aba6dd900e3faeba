package dispatch

import (
	"context"
	"time"

	"github.com/C-EO/codebot/internal/storage"
	"github.com/C-EO/codebot/pkg/cmd"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

// HistoryStore records executed commands.
type HistoryStore interface {
	AppendCommandToHistory(guildID string, rec storage.CommandHistoryRecord) error
}

// WithCommandLogger records every guild invocation that reached its handler,
// whether or not the handler succeeded.
func WithCommandLogger(store HistoryStore, log zerolog.Logger) cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			err := c.Run(ctx, inv)

			call, ok := inv.Data.(*Call)
			if !ok || call.Interaction == nil || call.Interaction.GuildID == "" {
				return err
			}
			rec := historyRecord(call, c.Name())
			if e := store.AppendCommandToHistory(call.Interaction.GuildID, rec); e != nil {
				log.Warn().Str("command", c.Name()).Err(e).Msg("failed to log command")
			}
			return err
		})
	}
}

func historyRecord(call *Call, name string) storage.CommandHistoryRecord {
	i := call.Interaction
	rec := storage.CommandHistoryRecord{
		ChannelID: i.ChannelID,
		Command:   name,
		Datetime:  time.Now(),
	}
	if path := call.Options.Path(); path != "" {
		rec.Command = name + " " + path
	}

	user := invokingUser(i)
	rec.UserID, rec.Username = user.ID, user.Username

	var s *discordgo.Session
	if call.Client != nil {
		s = call.Client.Session()
	}
	if s != nil && s.State != nil {
		if ch, err := s.State.Channel(i.ChannelID); err == nil {
			rec.ChannelName = ch.Name
		}
		if g, err := s.State.Guild(i.GuildID); err == nil {
			rec.GuildName = g.Name
		}
	}
	return rec
}

func invokingUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	if i.User != nil {
		return i.User
	}
	return &discordgo.User{ID: "unknown", Username: "Unknown"}
}
