package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/C-EO/codebot/internal/discord"
	"github.com/C-EO/codebot/internal/slash"
	"github.com/C-EO/codebot/pkg/cmd"

	"github.com/bwmarrin/discordgo"
)

func Maintenance(registry *cmd.Registry, started time.Time) *slash.Command[string] {
	return slash.New[string](&discordgo.ApplicationCommand{
		Name:        "maintenance",
		Description: "Bot maintenance commands",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "status",
				Description: "Show uptime, guild and command counts",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "refresh",
				Description: "Re-register slash commands in this server",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "leave-guild",
				Description: "Make the bot leave a server",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionString, Name: "guild", Description: "Server ID", Required: true},
				},
			},
		},
	}).
		SetCategory(categoryMaintenance).
		SetUsage("/maintenance status|refresh|leave-guild").
		SetOwnerOnly().
		SetSubCommandHandler("status", func(_ context.Context, c slash.Client, i *discordgo.InteractionCreate, _ *slash.Options) (string, error) {
			s := c.Session()
			guilds := 0
			if s.State != nil {
				guilds = len(s.State.Guilds)
			}
			msg := statusMessage(time.Since(started), guilds, registry.Len(), s.HeartbeatLatency())
			return msg, discord.RespondEmbedEphemeral(s, i, &discordgo.MessageEmbed{
				Title:       "📊 Bot Status",
				Description: msg,
				Color:       discord.EmbedColor,
			})
		}).
		SetSubCommandHandler("refresh", func(_ context.Context, c slash.Client, i *discordgo.InteractionCreate, _ *slash.Options) (string, error) {
			return publish(c.Session(), i, discord.SystemEvent{Type: discord.SystemEventRefreshCommands, GuildID: i.GuildID},
				"Commands will be re-registered shortly.")
		}).
		SetSubCommandHandler("leave-guild", func(_ context.Context, c slash.Client, i *discordgo.InteractionCreate, opts *slash.Options) (string, error) {
			guildID, _ := opts.String("guild")
			guildID = strings.TrimSpace(guildID)
			if guildID == "" {
				return "", discord.RespondEphemeral(c.Session(), i, "A server ID is required.")
			}
			return publish(c.Session(), i, discord.SystemEvent{Type: discord.SystemEventLeaveGuild, GuildID: guildID},
				fmt.Sprintf("Leaving server `%s`.", guildID))
		})
}

func publish(s *discordgo.Session, i *discordgo.InteractionCreate, evt discord.SystemEvent, ok string) (string, error) {
	msg := ok
	if !discord.PublishSystemEvent(evt) {
		msg = "The bot is busy, try again in a moment."
	}
	return msg, discord.RespondEphemeral(s, i, msg)
}

func statusMessage(uptime time.Duration, guilds, commands int, latency time.Duration) string {
	return fmt.Sprintf(
		"- Uptime: %s\n- Servers: %d\n- Commands: %d\n- Latency: %dms",
		uptime.Truncate(time.Second), guilds, commands, latency.Milliseconds(),
	)
}
