package slash

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func roleSchema() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "role",
		Description: "Manage roles",
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "add", Description: "Add"},
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "remove", Description: "Remove"},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
				Name:        "color",
				Description: "Colors",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "set", Description: "Set"},
				},
			},
		},
	}
}

func TestValidate(t *testing.T) {
	r := &recorder{}

	tests := []struct {
		name    string
		build   func() *Command[string]
		wantErr string
	}{
		{
			name: "consistent",
			build: func() *Command[string] {
				return New[string](roleSchema()).
					SetSubCommandHandler("add", r.handler("add")).
					SetSubCommandHandler("remove", r.handler("remove")).
					SetSubCommandHandler("color set", r.handler("color set"))
			},
		},
		{
			name: "orphaned handler",
			build: func() *Command[string] {
				return New[string](roleSchema()).
					SetSubCommandHandler("add", r.handler("add")).
					SetSubCommandHandler("remove", r.handler("remove")).
					SetSubCommandHandler("color set", r.handler("color set")).
					SetSubCommandHandler("rename", r.handler("rename"))
			},
			wantErr: "undeclared subcommands: rename",
		},
		{
			name: "declared without handler",
			build: func() *Command[string] {
				return New[string](roleSchema()).
					SetSubCommandHandler("add", r.handler("add"))
			},
			wantErr: "without handlers: remove, color set",
		},
		{
			name: "plain command needs run",
			build: func() *Command[string] {
				return New[string](&discordgo.ApplicationCommand{Name: "ping"})
			},
			wantErr: ErrNoHandler.Error(),
		},
		{
			name: "plain command with run",
			build: func() *Command[string] {
				return New[string](&discordgo.ApplicationCommand{Name: "ping"}).SetRun(r.handler("run"))
			},
		},
		{
			name: "missing name",
			build: func() *Command[string] {
				return New[string](nil).SetRun(r.handler("run"))
			},
			wantErr: "no name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.build().Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
