package canary

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/synqronlabs/canary/mailer"
	"github.com/synqronlabs/canary/telegram"
)

// Environment variable names recognized by ApplyEnv.
const (
	EnvServiceName        = "CANARY_SERVICE_NAME"
	EnvDateFormat         = "CANARY_DATE_FORMAT"
	EnvFilenameDateFormat = "CANARY_FILENAME_DATE_FORMAT"

	EnvTelegramToken  = "CANARY_TELEGRAM_TOKEN"
	EnvTelegramChatID = "CANARY_TELEGRAM_CHAT_ID"
	EnvTelegramAPIURL = "CANARY_TELEGRAM_API_URL"

	EnvMailerHost     = "CANARY_MAILER_HOST"
	EnvMailerPort     = "CANARY_MAILER_PORT"
	EnvMailerLogin    = "CANARY_MAILER_LOGIN"
	EnvMailerPassword = "CANARY_MAILER_PASSWORD"
	EnvMailerFrom     = "CANARY_MAILER_FROM"
	EnvMailerTo       = "CANARY_MAILER_TO"
	EnvMailerSSL      = "CANARY_MAILER_SSL"
)

// Config is the explicit process-wide configuration. It is constructed
// once at startup and passed into reporter constructors; nothing reads the
// environment inside deep call paths.
type Config struct {
	// ServiceName labels reports with the owning service.
	ServiceName string

	// DateLayout formats crash timestamps.
	DateLayout string

	// FilenameDateLayout formats timestamps in generated attachment
	// filenames.
	FilenameDateLayout string

	Telegram telegram.Config
	Mailer   mailer.Config
	Mail     MailParams
}

// DefaultConfig returns a Config with formatting defaults and no channel
// credentials.
func DefaultConfig() *Config {
	return &Config{
		DateLayout:         DefaultTimeLayout,
		FilenameDateLayout: DefaultFilenameTimeLayout,
	}
}

// ConfigFromEnv builds the configuration from CANARY_* environment
// variables, loading a .env file first when one exists.
func ConfigFromEnv() (*Config, error) {
	_ = godotenv.Load()
	cfg := DefaultConfig()
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overlays CANARY_* environment variables onto cfg. Unset
// variables leave the existing values untouched. Malformed values (a
// non-numeric port or chat id) are configuration errors.
func ApplyEnv(cfg *Config) error {
	setString(EnvServiceName, &cfg.ServiceName)
	setString(EnvDateFormat, &cfg.DateLayout)
	setString(EnvFilenameDateFormat, &cfg.FilenameDateLayout)

	setString(EnvTelegramToken, &cfg.Telegram.Token)
	setString(EnvTelegramAPIURL, &cfg.Telegram.APIURL)
	if v := os.Getenv(EnvTelegramChatID); v != "" {
		ids, err := telegram.ParseChatIDs(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTelegramChatID, err)
		}
		cfg.Telegram.ChatIDs = ids
	}

	setString(EnvMailerHost, &cfg.Mailer.Host)
	setString(EnvMailerLogin, &cfg.Mailer.Login)
	setString(EnvMailerPassword, &cfg.Mailer.Password)
	setString(EnvMailerFrom, &cfg.Mail.From)
	setString(EnvMailerTo, &cfg.Mail.To)
	if v := os.Getenv(EnvMailerPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: invalid port %q", EnvMailerPort, v)
		}
		cfg.Mailer.Port = port
	}
	if v := os.Getenv(EnvMailerSSL); v != "" {
		ssl, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: invalid boolean %q", EnvMailerSSL, v)
		}
		cfg.Mailer.SSL = ssl
	}
	return nil
}

func setString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// ReporterOptions translates the formatting configuration into reporter
// options, for callers that assemble reporters from a Config.
func (c *Config) ReporterOptions() []Option {
	var opts []Option
	if c.ServiceName != "" {
		opts = append(opts, WithServiceName(c.ServiceName))
	}
	if c.DateLayout != "" {
		opts = append(opts, WithTimeLayout(c.DateLayout))
	}
	if c.FilenameDateLayout != "" {
		opts = append(opts, WithFilenameTimeLayout(c.FilenameDateLayout))
	}
	return opts
}
