// Package commands holds the built-in slash commands.
package commands

import (
	"fmt"
	"time"

	"github.com/C-EO/codebot/internal/dispatch"
	"github.com/C-EO/codebot/internal/slash"
	"github.com/C-EO/codebot/internal/storage"
	"github.com/C-EO/codebot/pkg/cmd"
)

const msgGuildOnly = "This command only works inside a server."

const (
	categoryInformation = "🕯️ Information"
	categoryModeration  = "🛡️ Moderation"
	categoryMaintenance = "🛠️ Maintenance"
)

// Deps are the services built-in commands read from.
type Deps struct {
	Registry *cmd.Registry
	Store    *storage.Storage
	OwnerID  string
	Started  time.Time
}

// Definitions returns every built-in command.
func Definitions(deps Deps) []slash.Definition {
	return []slash.Definition{
		Ping(),
		Help(deps.Registry, deps.OwnerID),
		History(deps.Store),
		Role(),
		Maintenance(deps.Registry, deps.Started),
	}
}

// RegisterAll validates and registers the built-in commands behind mws.
func RegisterAll(deps Deps, mws ...cmd.Middleware) error {
	for _, def := range Definitions(deps) {
		if err := dispatch.Register(deps.Registry, def, mws...); err != nil {
			return fmt.Errorf("register /%s: %w", def.Name(), err)
		}
	}
	return nil
}
