package dispatch

import (
	"context"
	"fmt"

	"github.com/C-EO/codebot/internal/slash"
	"github.com/C-EO/codebot/pkg/cmd"

	"github.com/bwmarrin/discordgo"
)

// Call is the Invocation payload for a slash command whose handler has
// already been resolved and authorized.
type Call struct {
	Client      slash.Client
	Interaction *discordgo.InteractionCreate
	Options     *slash.Options
	Invoke      slash.Invoker
	Result      any
}

// Entry adapts a slash.Definition to cmd.Command so it can live in a
// cmd.Registry and be wrapped by cmd middleware.
type Entry struct {
	Def slash.Definition
}

func (e *Entry) Name() string        { return e.Def.Name() }
func (e *Entry) Description() string { return e.Def.Description() }

// Run executes the resolved handler carried by the Call.
func (e *Entry) Run(ctx context.Context, inv *cmd.Invocation) error {
	call, ok := inv.Data.(*Call)
	if !ok || call.Invoke == nil {
		return fmt.Errorf("/%s: unexpected invocation payload %T", e.Name(), inv.Data)
	}
	res, err := call.Invoke(ctx, call.Client, call.Interaction, call.Options)
	call.Result = res
	return err
}

// Register validates def against its schema and adds it to r behind mws.
func Register(r *cmd.Registry, def slash.Definition, mws ...cmd.Middleware) error {
	if err := def.Validate(); err != nil {
		return fmt.Errorf("invalid command definition: %w", err)
	}
	return r.Register(cmd.Apply(&Entry{Def: def}, mws...))
}

// DefinitionOf returns the slash definition underneath a registered command.
func DefinitionOf(c cmd.Command) (slash.Definition, bool) {
	if c == nil {
		return nil, false
	}
	e, ok := cmd.Root(c).(*Entry)
	if !ok {
		return nil, false
	}
	return e.Def, true
}

// Definitions lists every slash definition in r, sorted by name.
func Definitions(r *cmd.Registry) []slash.Definition {
	var defs []slash.Definition
	for _, c := range r.GetAll() {
		if def, ok := DefinitionOf(c); ok {
			defs = append(defs, def)
		}
	}
	return defs
}
