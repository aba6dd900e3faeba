package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/C-EO/codebot/internal/config"
	"github.com/C-EO/codebot/internal/discord"
	"github.com/C-EO/codebot/internal/dispatch"
	"github.com/C-EO/codebot/internal/guard"
	"github.com/C-EO/codebot/internal/slash"
	"github.com/C-EO/codebot/pkg/cmd"

	"github.com/bwmarrin/discordgo"
)

func Help(registry *cmd.Registry, ownerID string) *slash.Command[string] {
	return slash.New[string](&discordgo.ApplicationCommand{
		Name:        "help",
		Description: "Get a list of available commands",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:         discordgo.ApplicationCommandOptionString,
				Name:         "command",
				Description:  "Show details for one command",
				Autocomplete: true,
			},
		},
	}).
		SetCategory(categoryInformation).
		SetUsage("/help [command]").
		SetAutocompleteOptions(func(_ context.Context, input string, _ int, _ *discordgo.InteractionCreate, _ slash.Client) ([]slash.Choice, error) {
			return commandChoices(dispatch.Definitions(registry), input), nil
		}).
		SetRun(func(_ context.Context, c slash.Client, i *discordgo.InteractionCreate, opts *slash.Options) (string, error) {
			defs := visibleDefinitions(dispatch.Definitions(registry), ownerID, invokerID(i))

			var out string
			if name, ok := opts.String("command"); ok && name != "" {
				out = commandDetails(defs, name)
			} else {
				out = helpByCategory(defs)
			}

			return out, discord.RespondEmbedEphemeral(c.Session(), i, &discordgo.MessageEmbed{
				Title:       "Help",
				Description: out,
				Color:       discord.EmbedColor,
			})
		})
}

func invokerID(i *discordgo.InteractionCreate) string {
	switch {
	case i.Member != nil && i.Member.User != nil:
		return i.Member.User.ID
	case i.User != nil:
		return i.User.ID
	}
	return ""
}

// visibleDefinitions hides owner-only commands from everyone but the owner.
func visibleDefinitions(defs []slash.Definition, ownerID, userID string) []slash.Definition {
	out := make([]slash.Definition, 0, len(defs))
	for _, d := range defs {
		if d.Requirements().OwnerOnly && (ownerID == "" || ownerID != userID) {
			continue
		}
		out = append(out, d)
	}
	return out
}

func helpByCategory(defs []slash.Definition) string {
	byCategory := make(map[string][]slash.Definition)
	var categories []string
	for _, d := range defs {
		cat := d.Category()
		if _, ok := byCategory[cat]; !ok {
			categories = append(categories, cat)
		}
		byCategory[cat] = append(byCategory[cat], d)
	}
	sort.SliceStable(categories, func(i, j int) bool {
		wi, wj := config.CategoryWeight(categories[i]), config.CategoryWeight(categories[j])
		if wi != wj {
			return wi < wj
		}
		return categories[i] < categories[j]
	})

	var sb strings.Builder
	for _, cat := range categories {
		fmt.Fprintf(&sb, "**%s**\n", cat)
		for _, d := range byCategory[cat] {
			fmt.Fprintf(&sb, "`%s` - %s\n", d.Name(), d.Description())
		}
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String())
}

func commandDetails(defs []slash.Definition, name string) string {
	for _, d := range defs {
		if d.Name() != name {
			continue
		}
		var sb strings.Builder
		fmt.Fprintf(&sb, "**/%s**\n%s\n", d.Name(), d.Description())
		if d.Usage() != "" {
			fmt.Fprintf(&sb, "\nUsage: `%s`", d.Usage())
		}
		req := d.Requirements()
		if len(req.User) > 0 {
			fmt.Fprintf(&sb, "\nRequires: %s", strings.Join(guard.PermissionList(req.User), ", "))
		}
		if req.UsesDB {
			sb.WriteString("\nNeeds the database to be available.")
		}
		return sb.String()
	}
	return fmt.Sprintf("No command named `%s`.", name)
}

func commandChoices(defs []slash.Definition, input string) []slash.Choice {
	input = strings.ToLower(strings.TrimSpace(input))
	var out []slash.Choice
	for _, d := range defs {
		if d.Requirements().OwnerOnly {
			continue
		}
		if strings.HasPrefix(d.Name(), input) {
			out = append(out, slash.Choice{Name: d.Name(), Value: d.Name()})
		}
	}
	return out
}
