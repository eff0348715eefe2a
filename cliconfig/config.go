// Package cliconfig assembles the command line tool's configuration from
// defaults, an optional TOML file and CANARY_* environment variables, in
// that order of precedence.
package cliconfig

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/synqronlabs/canary"
	"github.com/synqronlabs/canary/telegram"
)

// Load builds the effective configuration. The file at path is optional;
// when path is empty the default location is probed instead. Environment
// variables override file values.
func Load(path string) (*canary.Config, error) {
	cfg := canary.DefaultConfig()

	if path == "" {
		path = DefaultConfigPath()
	}
	if path != "" && FileExists(path) {
		fc, err := LoadFileConfig(path)
		if err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
		if err := ApplyFileConfig(cfg, fc); err != nil {
			return nil, err
		}
	}

	if err := canary.ApplyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg carries enough settings to deliver through the
// named channel.
func Validate(cfg *canary.Config, channel string) error {
	switch channel {
	case "telegram":
		if cfg.Telegram.Token == "" {
			return fmt.Errorf("telegram token is required")
		}
		if len(cfg.Telegram.ChatIDs) == 0 {
			return fmt.Errorf("telegram chat id is required")
		}
	case "mail":
		if cfg.Mailer.Host == "" {
			return fmt.Errorf("mailer host is required")
		}
		if cfg.Mailer.Port == 0 {
			return fmt.Errorf("mailer port is required")
		}
		if cfg.Mail.From == "" || cfg.Mail.To == "" {
			return fmt.Errorf("mail sender and recipients are required")
		}
	default:
		return fmt.Errorf("unknown channel %q", channel)
	}
	return nil
}

// Logger returns the console logger used by the command line tool.
func Logger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
}

// applyString overwrites dst only when the file carries a value.
func applyString(value string, dst *string) {
	if value != "" {
		*dst = value
	}
}

// applyChatID parses a comma separated chat id list from the file.
func applyChatID(value string, dst *[]int64) error {
	if value == "" {
		return nil
	}
	ids, err := telegram.ParseChatIDs(value)
	if err != nil {
		return err
	}
	*dst = ids
	return nil
}
