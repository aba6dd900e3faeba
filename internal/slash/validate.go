package slash

import (
	"fmt"
	"slices"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// Validate checks the definition against its own schema: the name must be
// set, every registered subcommand must be declared in the option tree, and
// every declared subcommand must have a handler.
func (c *Command[T]) Validate() error {
	if c.schema.Name == "" {
		return fmt.Errorf("command has no name")
	}

	declared := declaredSubcommands(c.schema.Options)
	registered := c.SubcommandNames()

	var orphaned, unhandled []string
	for _, name := range registered {
		if !slices.Contains(declared, name) {
			orphaned = append(orphaned, name)
		}
	}
	for _, name := range declared {
		if _, ok := c.subcommands[name]; !ok {
			unhandled = append(unhandled, name)
		}
	}

	switch {
	case len(orphaned) > 0:
		return fmt.Errorf("/%s: handlers registered for undeclared subcommands: %s",
			c.Name(), strings.Join(orphaned, ", "))
	case len(unhandled) > 0:
		return fmt.Errorf("/%s: declared subcommands without handlers: %s",
			c.Name(), strings.Join(unhandled, ", "))
	case len(declared) == 0 && c.run == nil:
		return fmt.Errorf("/%s: %w", c.Name(), ErrNoHandler)
	}
	return nil
}

func declaredSubcommands(opts []*discordgo.ApplicationCommandOption) []string {
	var out []string
	for _, o := range opts {
		if o == nil {
			continue
		}
		switch o.Type {
		case discordgo.ApplicationCommandOptionSubCommand:
			out = append(out, o.Name)
		case discordgo.ApplicationCommandOptionSubCommandGroup:
			for _, sub := range o.Options {
				if sub != nil && sub.Type == discordgo.ApplicationCommandOptionSubCommand {
					out = append(out, o.Name+" "+sub.Name)
				}
			}
		}
	}
	return out
}
