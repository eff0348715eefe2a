// Package telegram implements the bot-API delivery channel. A client holds
// a bot token and one or more recipient chat ids; each logical message fans
// out into one sendMessage or sendDocument call per chat id, issued
// sequentially in list order.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/synqronlabs/canary/attach"
	"github.com/synqronlabs/canary/request"
)

// DefaultAPIURL is the public bot API endpoint.
const DefaultAPIURL = "https://api.telegram.org"

// Configuration errors, raised eagerly at client construction.
var (
	ErrMissingToken  = errors.New("telegram: bot token is not configured")
	ErrMissingChatID = errors.New("telegram: no chat ids configured")
	ErrInvalidChatID = errors.New("telegram: invalid chat id")
)

// Config holds the channel configuration.
type Config struct {
	// Token is the bot token obtained from BotFather.
	Token string

	// ChatIDs are the recipient chat identifiers.
	ChatIDs []int64

	// APIURL overrides the bot API base URL. A trailing slash is stripped;
	// empty means DefaultAPIURL.
	APIURL string
}

// ParseChatIDs parses a comma-separated chat id list. Empty segments are
// ignored; a non-numeric segment is a configuration error.
func ParseChatIDs(s string) ([]int64, error) {
	var ids []int64
	for _, seg := range strings.Split(s, ",") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		id, err := strconv.ParseInt(seg, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidChatID, seg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Client is a bot API client. It is stateless per call; the held
// configuration is never mutated after construction.
type Client struct {
	token   string
	chatIDs []int64
	baseURL string
	http    *request.Client
	log     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient injects the HTTP client used for API calls.
func WithHTTPClient(hc *request.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger used for per-recipient delivery failures.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient validates cfg and creates a Client. Missing token or chat ids
// fail here, not at send time.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if cfg.Token == "" {
		return nil, ErrMissingToken
	}
	if len(cfg.ChatIDs) == 0 {
		return nil, ErrMissingChatID
	}

	api := cfg.APIURL
	if api == "" {
		api = DefaultAPIURL
	}
	api = strings.TrimRight(api, "/")

	c := &Client{
		token:   cfg.Token,
		chatIDs: cfg.ChatIDs,
		baseURL: api + "/bot" + cfg.Token,
		http:    request.NewClient(),
		log:     zerolog.New(os.Stderr).With().Timestamp().Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// MessageOptions are the optional sendMessage flags. A flag is included in
// the request body only when set.
type MessageOptions struct {
	DisableNotification   bool
	DisableWebPagePreview bool
}

// DocumentOptions are the optional sendDocument parameters.
type DocumentOptions struct {
	// Caption is the text shown with the document.
	Caption string

	// Filename overrides the attachment's resolved filename.
	Filename string

	DisableNotification bool
}

// SendMessage sends a text message to every configured chat id.
func (c *Client) SendMessage(text string, opts *MessageOptions) error {
	return c.SendMessageContext(context.Background(), text, opts)
}

// SendMessageContext sends a text message to every configured chat id,
// honoring ctx.
//
// Failure policy: a failed send to one chat id is logged and does not abort
// delivery to the remaining ids; the joined per-recipient errors are
// returned after the fan-out completes.
func (c *Client) SendMessageContext(ctx context.Context, text string, opts *MessageOptions) error {
	fields := map[string]string{"text": text}
	if opts != nil {
		if opts.DisableNotification {
			fields["disable_notification"] = "true"
		}
		if opts.DisableWebPagePreview {
			fields["disable_web_page_preview"] = "true"
		}
	}

	var errs []error
	for _, id := range c.chatIDs {
		body := make(map[string]string, len(fields)+1)
		for k, v := range fields {
			body[k] = v
		}
		body["chat_id"] = strconv.FormatInt(id, 10)

		if err := c.post(ctx, "sendMessage", id, &request.PostRequest{Fields: body}); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SendDocument sends a document to every configured chat id.
func (c *Client) SendDocument(doc attach.Attachment, opts *DocumentOptions) error {
	return c.SendDocumentContext(context.Background(), doc, opts)
}

// SendDocumentContext sends a document to every configured chat id,
// honoring ctx. The attachment is resolved into a (filename, bytes) pair
// once, before the fan-out. The failure policy matches SendMessageContext.
func (c *Client) SendDocumentContext(ctx context.Context, doc attach.Attachment, opts *DocumentOptions) error {
	fallback := ""
	if opts != nil {
		fallback = opts.Filename
	}
	name, data, err := doc.Resolve(fallback)
	if err != nil {
		return fmt.Errorf("telegram: prepare attachment: %w", err)
	}

	params := url.Values{}
	if opts != nil {
		if opts.Caption != "" {
			params.Set("caption", opts.Caption)
		}
		if opts.DisableNotification {
			params.Set("disable_notification", "true")
		}
	}

	var errs []error
	for _, id := range c.chatIDs {
		p := url.Values{}
		for k, vs := range params {
			p[k] = vs
		}
		p.Set("chat_id", strconv.FormatInt(id, 10))

		req := &request.PostRequest{
			Params: p,
			Files:  map[string]request.File{"document": {Name: name, Data: data}},
		}
		if err := c.post(ctx, "sendDocument", id, req); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// post issues one API call and classifies the outcome for a single chat id.
func (c *Client) post(ctx context.Context, method string, chatID int64, req *request.PostRequest) error {
	resp, err := c.http.PostContext(ctx, c.baseURL+"/"+method, req)
	if err != nil {
		c.log.Error().Err(err).Int64("chat_id", chatID).Str("method", method).
			Msg("telegram send failed")
		return fmt.Errorf("telegram: chat %d: %w", chatID, err)
	}
	if !resp.IsSuccess() {
		c.log.Error().Int("status", resp.StatusCode).Int64("chat_id", chatID).
			Str("method", method).Str("response", resp.Text()).
			Msg("telegram api rejected send")
		return fmt.Errorf("telegram: chat %d: api status %d", chatID, resp.StatusCode)
	}
	return nil
}
