package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/C-EO/codebot/internal/discord"
	"github.com/C-EO/codebot/internal/slash"
	"github.com/C-EO/codebot/internal/storage"

	"github.com/bwmarrin/discordgo"
)

const (
	discordMaxMessageLength = 2000
	codeLeftBlockWrapper    = "```md"
	codeRightBlockWrapper   = "```"
)

var maxContentLength = discordMaxMessageLength - len(codeLeftBlockWrapper) - len(codeRightBlockWrapper) - 2

func History(store *storage.Storage) *slash.Command[int] {
	return slash.New[int](&discordgo.ApplicationCommand{
		Name:        "history",
		Description: "Review recently used commands",
	}).
		SetCategory(categoryModeration).
		SetUsage("/history").
		SetDBMS().
		SetPermissions(discordgo.PermissionManageServer).
		SetRun(func(_ context.Context, c slash.Client, i *discordgo.InteractionCreate, _ *slash.Options) (int, error) {
			s := c.Session()
			if i.GuildID == "" {
				return 0, discord.RespondEphemeral(s, i, msgGuildOnly)
			}
			if store == nil {
				return 0, errors.New("history: no storage configured")
			}

			records, err := store.FetchCommandHistory(i.GuildID)
			if err != nil {
				return 0, fmt.Errorf("fetch command history: %w", err)
			}
			if len(records) == 0 {
				return 0, discord.RespondEphemeral(s, i, "No command history found.")
			}
			return len(records), discord.RespondEphemeral(s, i, formatHistory(records))
		})
}

// formatHistory renders records newest first, dropping the oldest ones that
// would not fit into one message.
func formatHistory(records []storage.CommandHistoryRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-19s\t%-15s\t%-15s\t%s\n", "# Datetime", "# Username", "# Channel", "# Command")

	for idx := len(records) - 1; idx >= 0; idx-- {
		rec := records[idx]
		entry := fmt.Sprintf("%-19s\t%-15s\t#%-14s\t%s\n",
			rec.Datetime.Format("2006-01-02 15:04:05"),
			rec.Username,
			rec.ChannelName,
			"/"+rec.Command,
		)
		if b.Len()+len(entry) > maxContentLength {
			break
		}
		b.WriteString(entry)
	}
	return codeLeftBlockWrapper + "\n" + b.String() + codeRightBlockWrapper
}
