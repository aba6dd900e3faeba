package slash

import (
	"maps"
	"slices"
)

// subcommandRegistry maps a subcommand path to its handler. A path is the
// subcommand name, or "group name" for subcommands inside a group.
type subcommandRegistry[T any] map[string]RunFunc[T]

// SetSubCommandHandler routes the named subcommand to h, replacing any handler
// registered under the same name.
func (c *Command[T]) SetSubCommandHandler(name string, h RunFunc[T]) *Command[T] {
	c.subcommands[name] = h
	return c
}

// GetSubCommandHandler returns the handler registered for name.
func (c *Command[T]) GetSubCommandHandler(name string) (RunFunc[T], bool) {
	h, ok := c.subcommands[name]
	return h, ok
}

// SubcommandNames lists registered subcommand paths in sorted order.
func (c *Command[T]) SubcommandNames() []string {
	return slices.Sorted(maps.Keys(c.subcommands))
}
