package discord

import (
	"github.com/C-EO/codebot/internal/dispatch"
	"github.com/C-EO/codebot/internal/guard"

	"github.com/bwmarrin/discordgo"
)

// subjectWithFallback reads permissions from the interaction payload and,
// when Discord left a set out, computes it from the session state.
func subjectWithFallback(s *discordgo.Session) dispatch.SubjectFunc {
	return func(i *discordgo.InteractionCreate) guard.Subject {
		subj := dispatch.SubjectFromInteraction(i)
		if s == nil || s.State == nil || i.GuildID == "" || i.ChannelID == "" {
			return subj
		}
		if subj.UserPermissions == 0 && subj.UserID != "" {
			if perms, err := s.State.UserChannelPermissions(subj.UserID, i.ChannelID); err == nil {
				subj.UserPermissions = perms
			}
		}
		if subj.BotPermissions == 0 && s.State.User != nil {
			if perms, err := s.State.UserChannelPermissions(s.State.User.ID, i.ChannelID); err == nil {
				subj.BotPermissions = perms
			}
		}
		return subj
	}
}
