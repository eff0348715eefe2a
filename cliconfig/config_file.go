package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/synqronlabs/canary"
)

// FileConfig mirrors canary.Config with TOML tags. The chat id list and
// the SSL flag use file-friendly types so an absent key is distinguishable
// from a zero value.
type FileConfig struct {
	ServiceName        string `toml:"service_name"`
	DateFormat         string `toml:"date_format"`
	FilenameDateFormat string `toml:"filename_date_format"`

	Telegram struct {
		Token  string `toml:"token"`
		ChatID string `toml:"chat_id"`
		APIURL string `toml:"api_url"`
	} `toml:"telegram"`

	Mailer struct {
		Host     string `toml:"host"`
		Port     int    `toml:"port"`
		Login    string `toml:"login"`
		Password string `toml:"password"`
		SSL      *bool  `toml:"ssl"`
	} `toml:"mailer"`

	Mail struct {
		From    string `toml:"from"`
		To      string `toml:"to"`
		Subject string `toml:"subject"`
	} `toml:"mail"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.canary/config.toml when the user home
// directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".canary", "config.toml")
	}
	return ""
}

// ApplyFileConfig overlays file values onto cfg. Absent keys leave the
// existing values untouched.
func ApplyFileConfig(cfg *canary.Config, fc FileConfig) error {
	applyString(fc.ServiceName, &cfg.ServiceName)
	applyString(fc.DateFormat, &cfg.DateLayout)
	applyString(fc.FilenameDateFormat, &cfg.FilenameDateLayout)

	applyString(fc.Telegram.Token, &cfg.Telegram.Token)
	applyString(fc.Telegram.APIURL, &cfg.Telegram.APIURL)
	if err := applyChatID(fc.Telegram.ChatID, &cfg.Telegram.ChatIDs); err != nil {
		return err
	}

	applyString(fc.Mailer.Host, &cfg.Mailer.Host)
	applyString(fc.Mailer.Login, &cfg.Mailer.Login)
	applyString(fc.Mailer.Password, &cfg.Mailer.Password)
	if fc.Mailer.Port != 0 {
		cfg.Mailer.Port = fc.Mailer.Port
	}
	if fc.Mailer.SSL != nil {
		cfg.Mailer.SSL = *fc.Mailer.SSL
	}

	applyString(fc.Mail.From, &cfg.Mail.From)
	applyString(fc.Mail.To, &cfg.Mail.To)
	applyString(fc.Mail.Subject, &cfg.Mail.Subject)
	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
