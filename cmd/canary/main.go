package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/synqronlabs/canary"
	"github.com/synqronlabs/canary/attach"
	"github.com/synqronlabs/canary/cliconfig"
	"github.com/synqronlabs/canary/mailer"
	"github.com/synqronlabs/canary/telegram"
)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	log := cliconfig.Logger()

	var cfgPath string

	root := &cobra.Command{
		Use:   "canary",
		Short: "Deliver crash reports and ad hoc alerts over Telegram or mail",
		Long: `canary sends alert messages through the same delivery channels the
library uses for crash reports. Configuration comes from a TOML file
(default: $HOME/.canary/config.toml) overlaid with CANARY_* environment
variables.`,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.canary/config.toml)")

	var (
		via      string
		message  string
		filePath string
		caption  string
		subject  string
		silent   bool
	)

	send := &cobra.Command{
		Use:   "send",
		Short: "Send a message or a file through the configured channel",
		Example: `  canary send --via telegram -m "deploy finished"
  canary send --via telegram --file crash.log --caption "last night's crash"
  canary send --via mail -m "disk almost full" --subject "ops alert"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if message == "" && filePath == "" {
				return fmt.Errorf("nothing to send: pass --message or --file")
			}

			cfg, err := cliconfig.Load(cfgPath)
			if err != nil {
				return err
			}
			if err := cliconfig.Validate(cfg, via); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			switch via {
			case "telegram":
				return sendTelegram(ctx, cfg, message, filePath, caption, silent)
			case "mail":
				return sendMail(ctx, cfg, message, filePath, subject)
			}
			return nil
		},
	}
	send.Flags().StringVar(&via, "via", "telegram", "delivery channel (telegram or mail)")
	send.Flags().StringVarP(&message, "message", "m", "", "message text")
	send.Flags().StringVar(&filePath, "file", "", "file to send as an attachment")
	send.Flags().StringVar(&caption, "caption", "", "caption for an attached file (telegram)")
	send.Flags().StringVar(&subject, "subject", "", "mail subject (overrides the configured one)")
	send.Flags().BoolVar(&silent, "silent", false, "deliver without a recipient-side notification (telegram)")

	root.AddCommand(send)

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("canary")
		os.Exit(1)
	}
}

func sendTelegram(ctx context.Context, cfg *canary.Config, message, filePath, caption string, silent bool) error {
	client, err := telegram.NewClient(cfg.Telegram, telegram.WithLogger(cliconfig.Logger()))
	if err != nil {
		return err
	}

	if filePath == "" {
		return client.SendMessageContext(ctx, message, &telegram.MessageOptions{
			DisableNotification: silent,
		})
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("read attachment: %w", err)
	}
	if caption == "" {
		caption = message
	}
	return client.SendDocumentContext(ctx, attach.Bytes(data), &telegram.DocumentOptions{
		Caption:             caption,
		Filename:            filepath.Base(filePath),
		DisableNotification: silent,
	})
}

func sendMail(ctx context.Context, cfg *canary.Config, message, filePath, subject string) error {
	client, err := mailer.NewClient(cfg.Mailer)
	if err != nil {
		return err
	}

	if subject == "" {
		subject = cfg.Mail.Subject
	}
	msg := &mailer.Message{
		From:    cfg.Mail.From,
		To:      cfg.Mail.To,
		Subject: subject,
		Body:    message,
	}
	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return fmt.Errorf("read attachment: %w", err)
		}
		msg.Attachment = attach.Bytes(data)
		msg.Filename = filepath.Base(filePath)
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := client.ConnectContext(ctx); err != nil {
		return err
	}
	defer func() {
		if err := client.Disconnect(); err != nil {
			logger := cliconfig.Logger()
			logger.Warn().Err(err).Msg("smtp disconnect")
		}
	}()

	return client.SendMessage(msg)
}
