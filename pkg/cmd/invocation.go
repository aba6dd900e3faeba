// Package cmd is the transport-agnostic command core: something with a name,
// a description, and Run(ctx, invocation). Transports (Discord slash
// commands here) register adapters in a Registry and call Run with their own
// payload in Invocation.Data.
package cmd

import "context"

// Invocation carries what a transport passes to a command. Data is the
// transport payload, e.g. a resolved slash command call.
type Invocation struct {
	Args []string
	Data any
}

// Command is the universal contract: identity plus execution.
type Command interface {
	Name() string
	Description() string
	Run(ctx context.Context, inv *Invocation) error
}
