package slash

import (
	"context"
	"errors"
	"fmt"

	"github.com/C-EO/codebot/internal/guard"

	"github.com/bwmarrin/discordgo"
)

// MaxChoices is the most suggestions Discord accepts in one autocomplete response.
const MaxChoices = 25

var (
	// ErrUnroutedSubcommand is matched by *UnroutedSubcommandError.
	ErrUnroutedSubcommand = errors.New("subcommand has no registered handler")
	// ErrNoHandler means the command was invoked without a subcommand but
	// never had SetRun called.
	ErrNoHandler = errors.New("command has no run handler")
)

// UnroutedSubcommandError reports a subcommand Discord sent that the
// definition has no handler for. It is a configuration fault on our side.
type UnroutedSubcommandError struct {
	Command    string
	Subcommand string
}

func (e *UnroutedSubcommandError) Error() string {
	return fmt.Sprintf("/%s %s: %v", e.Command, e.Subcommand, ErrUnroutedSubcommand)
}

func (e *UnroutedSubcommandError) Unwrap() error { return ErrUnroutedSubcommand }

// Invoker runs an already resolved handler and hands back its opaque result.
type Invoker func(ctx context.Context, c Client, i *discordgo.InteractionCreate, opts *Options) (any, error)

// Definition is the type-erased view of a Command that loaders and the
// dispatcher work with, so commands with different result types can share
// one registry.
type Definition interface {
	Name() string
	Description() string
	Schema() *discordgo.ApplicationCommand
	Type() discordgo.ApplicationCommandType
	Category() string
	Usage() string
	Requirements() guard.Requirements
	Resolve(opts *Options) (Invoker, error)
	Autocomplete(ctx context.Context, c Client, i *discordgo.InteractionCreate) ([]Choice, error)
	Validate() error
}

var _ Definition = (*Command[any])(nil)

// ResolveHandler picks the handler that will serve this invocation without
// running anything: the subcommand handler when a subcommand was invoked,
// otherwise the top-level run handler. An invoked subcommand with no handler
// is never served by the top-level handler.
func (c *Command[T]) ResolveHandler(opts *Options) (RunFunc[T], error) {
	if opts == nil {
		opts = &Options{}
	}
	if path := opts.Path(); path != "" {
		h, ok := c.GetSubCommandHandler(path)
		if !ok || h == nil {
			return nil, &UnroutedSubcommandError{Command: c.Name(), Subcommand: path}
		}
		return h, nil
	}
	if c.run == nil {
		return nil, ErrNoHandler
	}
	return c.run, nil
}

// Resolve is ResolveHandler with the result type erased.
func (c *Command[T]) Resolve(opts *Options) (Invoker, error) {
	h, err := c.ResolveHandler(opts)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context, cl Client, i *discordgo.InteractionCreate, o *Options) (any, error) {
		return h(ctx, cl, i, o)
	}, nil
}

// HandleSubCommandInteraction resolves and runs the handler for one
// invocation. Authorization is the caller's job and has to happen between
// ResolveHandler and the call; this is the shortcut for callers that already
// authorized.
func (c *Command[T]) HandleSubCommandInteraction(ctx context.Context, cl Client, i *discordgo.InteractionCreate, opts *Options) (T, error) {
	if opts == nil {
		opts = OptionsOf(i)
	}
	h, err := c.ResolveHandler(opts)
	if err != nil {
		var zero T
		return zero, err
	}
	return h(ctx, cl, i, opts)
}

// Autocomplete routes an autocomplete interaction to the suggestion provider
// with the focused option's input and its position in the schema. No
// provider, or no focused option, gives an empty list.
func (c *Command[T]) Autocomplete(ctx context.Context, cl Client, i *discordgo.InteractionCreate) ([]Choice, error) {
	if c.autocomplete == nil {
		return []Choice{}, nil
	}
	opts := OptionsOf(i)
	index, name, input, ok := opts.Focused()
	if !ok {
		return []Choice{}, nil
	}
	if pos, declared := c.schemaIndex(opts, name); declared {
		index = pos
	}
	choices, err := c.autocomplete(ctx, input, index, i, cl)
	if err != nil {
		return nil, fmt.Errorf("autocomplete /%s: %w", c.Name(), err)
	}
	if len(choices) > MaxChoices {
		choices = choices[:MaxChoices]
	}
	if choices == nil {
		choices = []Choice{}
	}
	return choices, nil
}

// schemaIndex finds the named option in the schema at the level opts was
// invoked at. Discord omits unfilled options from the payload, so this
// position can differ from the one in the payload.
func (c *Command[T]) schemaIndex(opts *Options, name string) (int, bool) {
	level := c.schema.Options
	for _, step := range []string{opts.group, opts.sub} {
		if step == "" {
			continue
		}
		next := -1
		for idx, o := range level {
			if o != nil && o.Name == step {
				next = idx
				break
			}
		}
		if next < 0 {
			return 0, false
		}
		level = level[next].Options
	}
	for idx, o := range level {
		if o != nil && o.Name == name {
			return idx, true
		}
	}
	return 0, false
}
