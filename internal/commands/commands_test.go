package commands

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/C-EO/codebot/internal/dispatch"
	"github.com/C-EO/codebot/internal/slash"
	"github.com/C-EO/codebot/internal/storage"
	"github.com/C-EO/codebot/pkg/cmd"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registered(t *testing.T) *cmd.Registry {
	t.Helper()
	r := cmd.NewRegistry()
	require.NoError(t, RegisterAll(Deps{Registry: r, OwnerID: "owner", Started: time.Now()}))
	return r
}

func TestRegisterAll(t *testing.T) {
	r := registered(t)

	var names []string
	for _, d := range dispatch.Definitions(r) {
		names = append(names, d.Name())
	}
	assert.Equal(t, []string{"help", "history", "maintenance", "ping", "role"}, names)
}

func TestRegisterAllTwiceFails(t *testing.T) {
	r := registered(t)
	assert.Error(t, RegisterAll(Deps{Registry: r}))
}

func TestRequirements(t *testing.T) {
	assert.True(t, History(nil).Requirements().UsesDB)
	assert.True(t, Maintenance(cmd.NewRegistry(), time.Now()).Requirements().OwnerOnly)

	req := Role().Requirements()
	assert.Equal(t, []int64{discordgo.PermissionManageRoles}, req.User)
	assert.Equal(t, []int64{discordgo.PermissionManageRoles}, req.Bot)
	assert.ElementsMatch(t, []string{"add", "remove"}, Role().SubcommandNames())
}

func TestHelpHidesOwnerOnlyCommands(t *testing.T) {
	defs := dispatch.Definitions(registered(t))

	out := helpByCategory(visibleDefinitions(defs, "owner", "someone"))
	assert.NotContains(t, out, "maintenance")
	assert.Contains(t, out, "`ping`")

	out = helpByCategory(visibleDefinitions(defs, "owner", "owner"))
	assert.Contains(t, out, "`maintenance`")

	assert.NotContains(t, helpByCategory(visibleDefinitions(defs, "", "")), "maintenance")
}

func TestHelpCategoryOrder(t *testing.T) {
	out := helpByCategory(dispatch.Definitions(registered(t)))
	info := strings.Index(out, categoryInformation)
	mod := strings.Index(out, categoryModeration)
	maint := strings.Index(out, categoryMaintenance)
	require.True(t, info >= 0 && mod >= 0 && maint >= 0)
	assert.Less(t, info, mod)
	assert.Less(t, mod, maint)
}

func TestCommandDetails(t *testing.T) {
	defs := dispatch.Definitions(registered(t))

	out := commandDetails(defs, "role")
	assert.Contains(t, out, "/role add|remove <user> <role>")
	assert.Contains(t, out, "Manage Roles")

	assert.Contains(t, commandDetails(defs, "history"), "database")
	assert.Equal(t, "No command named `nope`.", commandDetails(defs, "nope"))
}

func TestHelpAutocomplete(t *testing.T) {
	r := registered(t)
	help, ok := dispatch.DefinitionOf(r.Get("help"))
	require.True(t, ok)

	i := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type: discordgo.InteractionApplicationCommandAutocomplete,
		Data: discordgo.ApplicationCommandInteractionData{
			Name: "help",
			Options: []*discordgo.ApplicationCommandInteractionDataOption{
				{Name: "command", Type: discordgo.ApplicationCommandOptionString, Value: "h", Focused: true},
			},
		},
	}}

	choices, err := help.Autocomplete(context.Background(), nil, i)
	require.NoError(t, err)
	assert.Equal(t, []slash.Choice{{Name: "help", Value: "help"}, {Name: "history", Value: "history"}}, choices)

	assert.Empty(t, commandChoices(dispatch.Definitions(r), "maint"))
}

func TestFormatHistory(t *testing.T) {
	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	out := formatHistory([]storage.CommandHistoryRecord{
		{Username: "old", ChannelName: "general", Command: "ping", Datetime: ts},
		{Username: "new", ChannelName: "general", Command: "role add", Datetime: ts.Add(time.Minute)},
	})

	assert.True(t, strings.HasPrefix(out, "```md\n"))
	assert.True(t, strings.HasSuffix(out, "```"))
	assert.Contains(t, out, "2025-01-02 03:04:05")
	assert.Less(t, strings.Index(out, "new"), strings.Index(out, "old"))
	assert.Contains(t, out, "/role add")
}

func TestFormatHistoryFitsOneMessage(t *testing.T) {
	recs := make([]storage.CommandHistoryRecord, 200)
	for i := range recs {
		recs[i] = storage.CommandHistoryRecord{Username: strings.Repeat("u", 15), ChannelName: "c", Command: "ping"}
	}
	assert.LessOrEqual(t, len(formatHistory(recs)), discordMaxMessageLength)
}

func TestMessages(t *testing.T) {
	assert.Equal(t, "🏓 Pong! Response time: `42ms`", pingMessage(42*time.Millisecond))
	assert.Equal(t, "Gave <@&r> to <@u>.", roleMessage(true, "u", "r"))
	assert.Equal(t, "Removed <@&r> from <@u>.", roleMessage(false, "u", "r"))
	assert.Equal(t, "- Uptime: 1m30s\n- Servers: 2\n- Commands: 5\n- Latency: 7ms",
		statusMessage(90*time.Second+300*time.Millisecond, 2, 5, 7*time.Millisecond))
}
