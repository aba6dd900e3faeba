package discord

import (
	"context"
)

func (b *Bot) handleSystemEvents(ctx context.Context) {
	for {
		select {
		case ev := <-SystemEvents():
			b.handleSystemEvent(ctx, ev)
		case <-ctx.Done():
			return
		}
	}
}

// handleSystemEvent runs the event as a background job keyed by type and
// guild, so repeated requests for the same guild collapse into one.
func (b *Bot) handleSystemEvent(_ context.Context, ev SystemEvent) {
	log := b.log.With().Str("event", string(ev.Type)).Str("guild", ev.GuildID).Logger()

	var job func(ctx context.Context) error
	switch ev.Type {
	case SystemEventRefreshCommands:
		job = func(context.Context) error {
			return b.syncGuild(ev.GuildID, true)
		}
	case SystemEventLeaveGuild:
		job = func(ctx context.Context) error {
			if b.dg.State != nil && b.dg.State.User != nil {
				if err := b.syncer.removeAll(ctx, b.dg.State.User.ID, ev.GuildID); err != nil {
					log.Warn().Err(err).Msg("failed to remove commands before leaving")
				}
			}
			return b.dg.GuildLeave(ev.GuildID)
		}
	default:
		log.Warn().Msg("unhandled system event")
		return
	}

	if err := b.jobs.StartAsync(string(ev.Type)+":"+ev.GuildID, job); err != nil {
		log.Info().Err(err).Msg("system event skipped")
	}
}
