// Package slash describes slash commands once and serves that description to
// both registration (the Discord schema) and execution (handler resolution
// and autocomplete routing).
package slash

import (
	"context"
	"slices"

	"github.com/C-EO/codebot/internal/guard"

	"github.com/bwmarrin/discordgo"
)

// DefaultCategory is used when a command never calls SetCategory, or calls it
// without an argument.
const DefaultCategory = "misc"

// Client is the bot-side context handed to every handler.
type Client interface {
	Session() *discordgo.Session
}

// RunFunc handles one invocation. The result is never inspected by the
// dispatcher; it only exists so callers can thread a value through.
type RunFunc[T any] func(ctx context.Context, c Client, i *discordgo.InteractionCreate, opts *Options) (T, error)

// AutocompleteFunc produces suggestions for the focused option. index is the
// position of that option in the command's schema, at the invoked
// subcommand level.
type AutocompleteFunc func(ctx context.Context, input string, index int, i *discordgo.InteractionCreate, c Client) ([]Choice, error)

// Choice is one autocomplete suggestion.
type Choice struct {
	Name  string
	Value string
}

// Command is a slash command definition. Build it once at startup with the
// Set* methods; after that it is only read, so it is safe for concurrent use.
type Command[T any] struct {
	schema         *discordgo.ApplicationCommand
	kind           discordgo.ApplicationCommandType
	run            RunFunc[T]
	ownerOnly      bool
	usesDB         bool
	usage          string
	category       string
	permissions    []int64
	botPermissions []int64
	autocomplete   AutocompleteFunc
	subcommands    subcommandRegistry[T]
}

// New starts a definition from its registration schema.
func New[T any](schema *discordgo.ApplicationCommand) *Command[T] {
	if schema == nil {
		schema = &discordgo.ApplicationCommand{}
	}
	if schema.Type == 0 {
		schema.Type = discordgo.ChatApplicationCommand
	}
	return &Command[T]{
		schema:      schema,
		kind:        schema.Type,
		category:    DefaultCategory,
		subcommands: subcommandRegistry[T]{},
	}
}

// SetRun installs the top-level handler. The last call wins.
func (c *Command[T]) SetRun(run RunFunc[T]) *Command[T] {
	c.run = run
	return c
}

// SetOwnerOnly restricts the command to the configured bot owner.
func (c *Command[T]) SetOwnerOnly() *Command[T] {
	c.ownerOnly = true
	return c
}

// SetDBMS marks the command as needing a live persistence layer.
func (c *Command[T]) SetDBMS() *Command[T] {
	c.usesDB = true
	return c
}

// SetUsage stores the invocation syntax shown by help. Without an argument
// the usage is cleared.
func (c *Command[T]) SetUsage(usage ...string) *Command[T] {
	c.usage = ""
	if len(usage) > 0 {
		c.usage = usage[0]
	}
	return c
}

// SetCategory stores the help category. Without an argument it resets to
// DefaultCategory.
func (c *Command[T]) SetCategory(category ...string) *Command[T] {
	c.category = DefaultCategory
	if len(category) > 0 {
		c.category = category[0]
	}
	return c
}

// SetPermissions replaces the permissions the invoking user must hold.
func (c *Command[T]) SetPermissions(perms ...int64) *Command[T] {
	c.permissions = guard.Normalize(perms)
	return c
}

// SetBotPermissions replaces the permissions the bot must hold in the channel.
func (c *Command[T]) SetBotPermissions(perms ...int64) *Command[T] {
	c.botPermissions = guard.Normalize(perms)
	return c
}

// SetAutocompleteOptions installs the suggestion provider for autocomplete
// options. The provider must answer within Discord's autocomplete window.
func (c *Command[T]) SetAutocompleteOptions(fn AutocompleteFunc) *Command[T] {
	c.autocomplete = fn
	return c
}

func (c *Command[T]) Schema() *discordgo.ApplicationCommand { return c.schema }
func (c *Command[T]) Name() string { return c.schema.Name }
func (c *Command[T]) Description() string { return c.schema.Description }
func (c *Command[T]) Type() discordgo.ApplicationCommandType { return c.kind }
func (c *Command[T]) Run() RunFunc[T] { return c.run }
func (c *Command[T]) OwnerOnly() bool { return c.ownerOnly }
func (c *Command[T]) UsesDB() bool { return c.usesDB }
func (c *Command[T]) Usage() string { return c.usage }
func (c *Command[T]) Category() string { return c.category }
func (c *Command[T]) Permissions() []int64 { return slices.Clone(c.permissions) }
func (c *Command[T]) BotPermissions() []int64 { return slices.Clone(c.botPermissions) }
func (c *Command[T]) HasAutocomplete() bool { return c.autocomplete != nil }

// Requirements is what the authorizer checks before any handler of this
// command runs.
func (c *Command[T]) Requirements() guard.Requirements {
	return guard.Requirements{
		OwnerOnly: c.ownerOnly,
		UsesDB:    c.usesDB,
		User:      c.Permissions(),
		Bot:       c.BotPermissions(),
	}
}
