package cmd

import (
	"fmt"
	"sort"
)

// DefaultRegistry is the process-wide registry the bot loads commands into.
var DefaultRegistry = NewRegistry()

// Registry stores commands by name. It does not dispatch; transports look
// commands up and invoke them with their own payload. Fill it before serving
// traffic: lookups are not synchronized with registration.
type Registry struct {
	commands map[string]Command
}

func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

// Register adds a command, refusing a second command with the same name.
func (r *Registry) Register(c Command) error {
	if _, exists := r.commands[c.Name()]; exists {
		return fmt.Errorf("command %q is already registered", c.Name())
	}
	r.commands[c.Name()] = c
	return nil
}

// Get returns the command with the given name, or nil.
func (r *Registry) Get(name string) Command {
	return r.commands[name]
}

// GetAll returns all registered commands sorted by name.
func (r *Registry) GetAll() []Command {
	list := make([]Command, 0, len(r.commands))
	for _, c := range r.commands {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name() < list[j].Name()
	})
	return list
}

func (r *Registry) Len() int { return len(r.commands) }
