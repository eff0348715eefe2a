// Package mailer implements the mail delivery channel: a session-oriented
// SMTP submission client and a MIME message builder. Sessions are intended
// to be scoped per dispatch: connect, send, disconnect on every exit path.
package mailer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
)

// Configuration errors, raised at client construction.
var (
	ErrMissingHost = errors.New("mailer: smtp host is not configured")
	ErrMissingPort = errors.New("mailer: smtp port is not configured")
)

// Environment errors, raised at send time.
var (
	ErrNoSender     = errors.New("mailer: from address could not be resolved")
	ErrNoRecipients = errors.New("mailer: no recipient addresses could be resolved")
	ErrNotConnected = errors.New("mailer: no active session")
)

// Config holds the SMTP submission configuration.
type Config struct {
	Host     string
	Port     int
	Login    string
	Password string

	// SSL selects implicit TLS (typically port 465). When false the client
	// connects in plaintext and upgrades with STARTTLS if the server
	// offers it.
	SSL bool

	// TLSConfig overrides the TLS configuration for both implicit TLS and
	// STARTTLS. Nil means a default config for Host.
	TLSConfig *tls.Config
}

// Client manages one SMTP session. It is not safe for concurrent use;
// create one scoped client per dispatch.
type Client struct {
	cfg  Config
	conn *smtp.Client
}

// NewClient validates cfg and creates a disconnected Client. Missing host
// or port is a configuration error.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Host == "" {
		return nil, ErrMissingHost
	}
	if cfg.Port == 0 {
		return nil, ErrMissingPort
	}
	return &Client{cfg: cfg}, nil
}

// Addr returns the host:port the client connects to.
func (c *Client) Addr() string {
	return net.JoinHostPort(c.cfg.Host, strconv.Itoa(c.cfg.Port))
}

// Connect opens the session. It is idempotent: an existing session is left
// untouched. After connecting, the client logs in when both login and
// password are configured; absent credentials make login a no-op.
func (c *Client) Connect() error {
	return c.ConnectContext(context.Background())
}

// ConnectContext is Connect honoring ctx during dialing.
func (c *Client) ConnectContext(ctx context.Context) error {
	if c.conn != nil {
		return nil
	}

	addr := c.Addr()
	var (
		conn net.Conn
		err  error
	)
	if c.cfg.SSL {
		d := tls.Dialer{Config: c.tlsConfig()}
		conn, err = d.DialContext(ctx, "tcp", addr)
	} else {
		var d net.Dialer
		conn, err = d.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return fmt.Errorf("mailer: dial %s: %w", addr, err)
	}

	sc, err := smtp.NewClient(conn, c.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("mailer: greeting from %s: %w", addr, err)
	}

	if !c.cfg.SSL {
		if ok, _ := sc.Extension("STARTTLS"); ok {
			if err := sc.StartTLS(c.tlsConfig()); err != nil {
				sc.Close()
				return fmt.Errorf("mailer: starttls: %w", err)
			}
		}
	}

	c.conn = sc
	if err := c.login(); err != nil {
		c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}

func (c *Client) tlsConfig() *tls.Config {
	if c.cfg.TLSConfig != nil {
		return c.cfg.TLSConfig
	}
	return &tls.Config{ServerName: c.cfg.Host}
}

func (c *Client) login() error {
	if c.cfg.Login == "" || c.cfg.Password == "" {
		return nil
	}
	auth := smtp.PlainAuth("", c.cfg.Login, c.cfg.Password, c.cfg.Host)
	if err := c.conn.Auth(auth); err != nil {
		return fmt.Errorf("mailer: login: %w", err)
	}
	return nil
}

// Disconnect terminates the session with QUIT and drops the handle. It is
// idempotent: calling it without an active session does nothing.
func (c *Client) Disconnect() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Quit()
	c.conn = nil
	if err != nil {
		return fmt.Errorf("mailer: quit: %w", err)
	}
	return nil
}

// SendMessage sends msg over the active session. The sender and at least
// one recipient must resolve, otherwise an environment error is returned.
// Transport failures propagate unmodified; there is no retry.
func (c *Client) SendMessage(msg *Message) error {
	if c.conn == nil {
		return ErrNotConnected
	}
	if msg.From == "" {
		return ErrNoSender
	}
	recipients := msg.Recipients()
	if len(recipients) == 0 {
		return ErrNoRecipients
	}

	data, err := msg.Encode(recipients)
	if err != nil {
		return err
	}

	if err := c.conn.Mail(msg.From); err != nil {
		return fmt.Errorf("mailer: mail from %s: %w", msg.From, err)
	}
	for _, rcpt := range recipients {
		if err := c.conn.Rcpt(rcpt); err != nil {
			return fmt.Errorf("mailer: rcpt to %s: %w", rcpt, err)
		}
	}
	w, err := c.conn.Data()
	if err != nil {
		return fmt.Errorf("mailer: data: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("mailer: write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("mailer: finish message: %w", err)
	}
	return nil
}
