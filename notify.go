package canary

import (
	"context"

	"github.com/synqronlabs/canary/attach"
	"github.com/synqronlabs/canary/mailer"
	"github.com/synqronlabs/canary/telegram"
)

// NewTelegramReporter creates a Reporter delivering through the Telegram
// bot API. Configuration problems (missing token or chat ids) fail here.
func NewTelegramReporter(cfg telegram.Config, opts ...Option) (*Reporter, error) {
	r := NewReporter(nil, opts...)
	client, err := telegram.NewClient(cfg, telegram.WithLogger(r.log))
	if err != nil {
		return nil, err
	}
	r.notifier = &telegramNotifier{client: client}
	return r, nil
}

// MailParams address the crash-report emails sent by a mail reporter.
type MailParams struct {
	// From is the sender address.
	From string

	// To is a comma-separated recipient list.
	To string

	// Subject is the mail subject; empty means no Subject header.
	Subject string
}

// NewMailReporter creates a Reporter delivering via SMTP. The transport
// configuration is validated eagerly; each dispatch then opens its own
// scoped session (connect, send, disconnect).
func NewMailReporter(cfg mailer.Config, params MailParams, opts ...Option) (*Reporter, error) {
	if _, err := mailer.NewClient(cfg); err != nil {
		return nil, err
	}
	r := NewReporter(nil, opts...)
	r.notifier = &mailNotifier{cfg: cfg, params: params}
	return r, nil
}

type telegramNotifier struct {
	client *telegram.Client
}

func (n *telegramNotifier) Notify(ctx context.Context, rep *Report, d Delivery) error {
	if rep.HasAttachment() {
		return n.client.SendDocumentContext(ctx, attach.Text(rep.Attachment), &telegram.DocumentOptions{
			Caption:             rep.Text,
			Filename:            d.Filename,
			DisableNotification: d.DisableNotification,
		})
	}
	return n.client.SendMessageContext(ctx, rep.Text, &telegram.MessageOptions{
		DisableNotification:   d.DisableNotification,
		DisableWebPagePreview: d.DisableWebPagePreview,
	})
}

type mailNotifier struct {
	cfg    mailer.Config
	params MailParams
}

// Notify opens a session scoped to this single report: the session is
// released on every exit path and never shared between dispatches.
func (n *mailNotifier) Notify(ctx context.Context, rep *Report, d Delivery) error {
	client, err := mailer.NewClient(n.cfg)
	if err != nil {
		return err
	}
	if err := client.ConnectContext(ctx); err != nil {
		return err
	}
	defer client.Disconnect()

	msg := &mailer.Message{
		From:    n.params.From,
		To:      n.params.To,
		Subject: n.params.Subject,
		Body:    rep.Text,
	}
	if rep.HasAttachment() {
		msg.Attachment = attach.Text(rep.Attachment)
		msg.Filename = d.Filename
	}
	return client.SendMessage(msg)
}
