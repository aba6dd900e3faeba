package slash

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Options is a read-only view over the resolved options of a command
// interaction. It descends through a subcommand group and subcommand so the
// getters see the options of the invoked leaf.
type Options struct {
	group string
	sub   string
	leaf  []*discordgo.ApplicationCommandInteractionDataOption
}

// NewOptions builds an Options view from the raw interaction options.
func NewOptions(raw []*discordgo.ApplicationCommandInteractionDataOption) *Options {
	o := &Options{leaf: raw}
	if len(o.leaf) > 0 && o.leaf[0] != nil && o.leaf[0].Type == discordgo.ApplicationCommandOptionSubCommandGroup {
		o.group = o.leaf[0].Name
		o.leaf = o.leaf[0].Options
	}
	if len(o.leaf) > 0 && o.leaf[0] != nil && o.leaf[0].Type == discordgo.ApplicationCommandOptionSubCommand {
		o.sub = o.leaf[0].Name
		o.leaf = o.leaf[0].Options
	}
	return o
}

// OptionsOf returns the Options of a command or autocomplete interaction. Any
// other interaction yields an empty view.
func OptionsOf(i *discordgo.InteractionCreate) *Options {
	data, ok := commandData(i)
	if !ok {
		return &Options{}
	}
	return NewOptions(data.Options)
}

func commandData(i *discordgo.InteractionCreate) (discordgo.ApplicationCommandInteractionData, bool) {
	if i == nil || i.Interaction == nil {
		return discordgo.ApplicationCommandInteractionData{}, false
	}
	data, ok := i.Data.(discordgo.ApplicationCommandInteractionData)
	return data, ok
}

// Subcommand returns the invoked subcommand name.
func (o *Options) Subcommand() (string, bool) { return o.sub, o.sub != "" }

// SubcommandGroup returns the invoked subcommand group name.
func (o *Options) SubcommandGroup() (string, bool) { return o.group, o.group != "" }

// Path is the key subcommand handlers are registered under: "sub", or
// "group sub" inside a group. Empty when no subcommand was invoked.
func (o *Options) Path() string {
	if o == nil {
		return ""
	}
	if o.group != "" {
		return o.group + " " + o.sub
	}
	return o.sub
}

// All returns the leaf options in the order Discord sent them.
func (o *Options) All() []*discordgo.ApplicationCommandInteractionDataOption { return o.leaf }

func (o *Options) get(name string) *discordgo.ApplicationCommandInteractionDataOption {
	for _, opt := range o.leaf {
		if opt != nil && opt.Name == name {
			return opt
		}
	}
	return nil
}

// Has reports whether the option was supplied.
func (o *Options) Has(name string) bool { return o.get(name) != nil }

func (o *Options) String(name string) (string, bool) {
	opt := o.get(name)
	if opt == nil {
		return "", false
	}
	v, ok := opt.Value.(string)
	return v, ok
}

// Int reads an integer option. Discord delivers JSON numbers, so the value
// arrives as float64.
func (o *Options) Int(name string) (int64, bool) {
	opt := o.get(name)
	if opt == nil {
		return 0, false
	}
	switch v := opt.Value.(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	}
	return 0, false
}

func (o *Options) Bool(name string) (bool, bool) {
	opt := o.get(name)
	if opt == nil {
		return false, false
	}
	v, ok := opt.Value.(bool)
	return v, ok
}

// Snowflake returns the ID carried by a user, role, channel or mentionable option.
func (o *Options) Snowflake(name string) (string, bool) {
	opt := o.get(name)
	if opt == nil {
		return "", false
	}
	switch opt.Type {
	case discordgo.ApplicationCommandOptionUser,
		discordgo.ApplicationCommandOptionRole,
		discordgo.ApplicationCommandOptionChannel,
		discordgo.ApplicationCommandOptionMentionable:
		v, ok := opt.Value.(string)
		return v, ok
	}
	return "", false
}

// Focused returns the position among the sent options, the name and the
// current partial input of the option the user is typing into during
// autocomplete.
func (o *Options) Focused() (index int, name, input string, ok bool) {
	for idx, opt := range o.leaf {
		if opt == nil || !opt.Focused {
			continue
		}
		switch v := opt.Value.(type) {
		case string:
			input = v
		case nil:
		default:
			input = fmt.Sprint(v)
		}
		return idx, opt.Name, input, true
	}
	return 0, "", "", false
}
