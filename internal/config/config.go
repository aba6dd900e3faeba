package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	DiscordToken          string        `env:"DISCORD_TOKEN,required,notEmpty"`
	OwnerID               string        `env:"OWNER_ID"`
	StoragePath           string        `env:"STORAGE_PATH" envDefault:"datastore.json"`
	CommandHashDir        string        `env:"COMMAND_HASH_DIR" envDefault:"data/commands"`
	DiscordGuildBlacklist []string      `env:"DISCORD_GUILD_BLACKLIST" envSeparator:","`
	InitSlashCommands     bool          `env:"INIT_SLASH_COMMANDS" envDefault:"true"`
	LogLevel              string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFile               string        `env:"LOG_FILE" envDefault:"logs/bot.log"`
	CommandTimeout        time.Duration `env:"COMMAND_TIMEOUT" envDefault:"15s"`
	AutocompleteTimeout   time.Duration `env:"AUTOCOMPLETE_TIMEOUT" envDefault:"3s"`
}

// Load reads an optional .env file (or the given files) into the process
// environment and parses it into a Config. A missing .env is not an error.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}
