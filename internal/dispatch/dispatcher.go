// Package dispatch runs one interaction through the command pipeline:
// look the command up, resolve the handler, authorize, then execute.
// Autocomplete requests take a separate path that skips authorization.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/C-EO/codebot/internal/guard"
	"github.com/C-EO/codebot/internal/slash"
	"github.com/C-EO/codebot/pkg/cmd"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

const (
	msgUnavailable = "This command is not available right now."
	msgFailed      = "Something went wrong while running this command."
	msgDenied      = "You can't use this command here."
)

// Status is the terminal state of one invocation.
type Status int

const (
	StatusUnknown Status = iota
	StatusExecuted
	StatusRejected
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusExecuted:
		return "executed"
	case StatusRejected:
		return "rejected"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type Outcome struct {
	Status Status
	Result any
	Err    error
}

// Responder sends replies back to the platform.
type Responder interface {
	RespondEphemeral(i *discordgo.InteractionCreate, content string) error
	RespondAutocomplete(i *discordgo.InteractionCreate, choices []*discordgo.ApplicationCommandOptionChoice) error
}

// SubjectFunc extracts the invoking user and the permissions held in the
// invocation context.
type SubjectFunc func(i *discordgo.InteractionCreate) guard.Subject

type Dispatcher struct {
	registry            *cmd.Registry
	auth                *guard.Authorizer
	client              slash.Client
	responder           Responder
	subject             SubjectFunc
	log                 zerolog.Logger
	commandTimeout      time.Duration
	autocompleteTimeout time.Duration
}

type Option func(*Dispatcher)

func WithSubject(fn SubjectFunc) Option {
	return func(d *Dispatcher) { d.subject = fn }
}

func WithLogger(log zerolog.Logger) Option {
	return func(d *Dispatcher) { d.log = log }
}

func WithTimeouts(command, autocomplete time.Duration) Option {
	return func(d *Dispatcher) {
		if command > 0 {
			d.commandTimeout = command
		}
		if autocomplete > 0 {
			d.autocompleteTimeout = autocomplete
		}
	}
}

func New(registry *cmd.Registry, auth *guard.Authorizer, client slash.Client, responder Responder, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry:            registry,
		auth:                auth,
		client:              client,
		responder:           responder,
		subject:             SubjectFromInteraction,
		log:                 zerolog.Nop(),
		commandTimeout:      15 * time.Second,
		autocompleteTimeout: 3 * time.Second,
	}
	if d.auth == nil {
		d.auth = &guard.Authorizer{}
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Route sends an interaction down the invocation or the autocomplete path.
// Other interaction types are ignored.
func (d *Dispatcher) Route(ctx context.Context, i *discordgo.InteractionCreate) Outcome {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		return d.Handle(ctx, i)
	case discordgo.InteractionApplicationCommandAutocomplete:
		choices, err := d.Autocomplete(ctx, i)
		if err != nil {
			return Outcome{Status: StatusFailed, Err: err}
		}
		return Outcome{Status: StatusExecuted, Result: choices}
	default:
		return Outcome{Status: StatusUnknown}
	}
}

func (d *Dispatcher) lookup(i *discordgo.InteractionCreate) (cmd.Command, slash.Definition, discordgo.ApplicationCommandInteractionData, bool) {
	data, ok := i.Data.(discordgo.ApplicationCommandInteractionData)
	if !ok {
		return nil, nil, data, false
	}
	c := d.registry.Get(data.Name)
	def, ok := DefinitionOf(c)
	if !ok {
		return nil, nil, data, false
	}
	return c, def, data, true
}

// Handle runs a full command invocation. The handler is resolved before any
// check runs, so the checks gate the handler that will actually execute.
func (d *Dispatcher) Handle(ctx context.Context, i *discordgo.InteractionCreate) Outcome {
	c, def, data, ok := d.lookup(i)
	if !ok {
		d.log.Warn().Str("command", data.Name).Msg("unknown command")
		return Outcome{Status: StatusUnknown}
	}

	log := d.log.With().Str("command", def.Name()).Str("guild", i.GuildID).Logger()
	opts := slash.NewOptions(data.Options)
	if path := opts.Path(); path != "" {
		log = log.With().Str("subcommand", path).Logger()
	}

	invoke, err := def.Resolve(opts)
	if err != nil {
		log.Error().Err(err).Msg("command is misconfigured")
		d.reply(log, i, msgUnavailable)
		return Outcome{Status: StatusRejected, Err: err}
	}

	subj := d.subject(i)
	if err := d.auth.Check(ctx, def.Requirements(), subj); err != nil {
		msg := msgDenied
		var rej *guard.Rejection
		if errors.As(err, &rej) {
			msg = rej.Message()
			log.Info().Str("user", subj.UserID).Stringer("reason", rej.Reason).Err(err).Msg("command rejected")
		} else {
			log.Warn().Str("user", subj.UserID).Err(err).Msg("authorization failed")
		}
		d.reply(log, i, msg)
		return Outcome{Status: StatusRejected, Err: err}
	}

	runCtx, cancel := context.WithTimeout(ctx, d.commandTimeout)
	defer cancel()

	call := &Call{Client: d.client, Interaction: i, Options: opts, Invoke: invoke}
	if err := execute(runCtx, c, call); err != nil {
		log.Error().Err(err).Msg("command failed")
		d.reply(log, i, msgFailed)
		return Outcome{Status: StatusFailed, Result: call.Result, Err: err}
	}

	log.Debug().Str("user", subj.UserID).Msg("command executed")
	return Outcome{Status: StatusExecuted, Result: call.Result}
}

func execute(ctx context.Context, c cmd.Command, call *Call) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in /%s: %v", c.Name(), r)
		}
	}()
	return c.Run(ctx, &cmd.Invocation{Data: call})
}

// Autocomplete answers an autocomplete request with the command's
// suggestions. It never authorizes: suggestions are offered to anyone who
// can see the command.
func (d *Dispatcher) Autocomplete(ctx context.Context, i *discordgo.InteractionCreate) ([]slash.Choice, error) {
	_, def, data, ok := d.lookup(i)
	if !ok {
		d.log.Warn().Str("command", data.Name).Msg("autocomplete for unknown command")
		return []slash.Choice{}, nil
	}

	acCtx, cancel := context.WithTimeout(ctx, d.autocompleteTimeout)
	defer cancel()

	choices, err := def.Autocomplete(acCtx, d.client, i)
	if err != nil {
		d.log.Error().Str("command", def.Name()).Err(err).Msg("autocomplete failed")
		choices = []slash.Choice{}
	}

	if rerr := d.responder.RespondAutocomplete(i, ToDiscordChoices(choices)); rerr != nil {
		d.log.Warn().Str("command", def.Name()).Err(rerr).Msg("failed to send autocomplete response")
	}
	return choices, err
}

func (d *Dispatcher) reply(log zerolog.Logger, i *discordgo.InteractionCreate, msg string) {
	if err := d.responder.RespondEphemeral(i, msg); err != nil {
		log.Debug().Err(err).Msg("failed to send reply")
	}
}

// ToDiscordChoices converts suggestions to the wire type.
func ToDiscordChoices(choices []slash.Choice) []*discordgo.ApplicationCommandOptionChoice {
	out := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(choices))
	for _, c := range choices {
		out = append(out, &discordgo.ApplicationCommandOptionChoice{Name: c.Name, Value: c.Value})
	}
	return out
}

// SubjectFromInteraction reads the invoking user and both permission sets
// Discord attaches to the interaction.
func SubjectFromInteraction(i *discordgo.InteractionCreate) guard.Subject {
	subj := guard.Subject{BotPermissions: i.AppPermissions}
	switch {
	case i.Member != nil && i.Member.User != nil:
		subj.UserID = i.Member.User.ID
		subj.UserPermissions = i.Member.Permissions
	case i.User != nil:
		subj.UserID = i.User.ID
	}
	return subj
}
