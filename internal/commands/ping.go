package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/C-EO/codebot/internal/discord"
	"github.com/C-EO/codebot/internal/slash"

	"github.com/bwmarrin/discordgo"
)

func Ping() *slash.Command[time.Duration] {
	return slash.New[time.Duration](&discordgo.ApplicationCommand{
		Name:        "ping",
		Description: "Check bot latency",
	}).
		SetCategory(categoryInformation).
		SetUsage("/ping").
		SetRun(runPing)
}

func runPing(_ context.Context, c slash.Client, i *discordgo.InteractionCreate, _ *slash.Options) (time.Duration, error) {
	s := c.Session()
	latency := s.HeartbeatLatency()
	return latency, discord.Respond(s, i, pingMessage(latency))
}

func pingMessage(latency time.Duration) string {
	return fmt.Sprintf("🏓 Pong! Response time: `%dms`", latency.Milliseconds())
}
