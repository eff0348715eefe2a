// Package request provides the HTTP POST client and multipart form encoder
// used by the delivery channels. The client attaches query parameters,
// headers, and multipart bodies, and surfaces transport failures as a
// distinct RequestError; response status is left for the caller to inspect.
package request

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
)

// Client issues POST requests. The zero-configured client uses
// http.DefaultClient semantics with the transport's default timeouts.
type Client struct {
	hc *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient injects a configured *http.Client (custom transport,
// timeouts, proxies).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.hc = hc
		}
	}
}

// NewClient creates a Client.
func NewClient(opts ...Option) *Client {
	c := &Client{hc: &http.Client{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PostRequest describes one POST call.
type PostRequest struct {
	// Headers are caller-supplied request headers. They never override the
	// multipart Content-Type generated for Fields/Files.
	Headers map[string]string

	// Params are merged into the URL's query string; existing keys are
	// overridden by new ones.
	Params url.Values

	// Fields become scalar multipart form parts.
	Fields map[string]string

	// Files become file multipart form parts, keyed by field name.
	Files map[string]File
}

// File is a named file payload for a multipart part.
type File struct {
	Name string
	Data []byte
}

// Response is a fully-read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// IsSuccess reports whether the status code is 2xx.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Text decodes the body as text.
func (r *Response) Text() string {
	return string(r.Body)
}

// RequestError wraps a network or protocol failure during an HTTP call.
// Non-2xx responses are not RequestErrors; callers inspect status instead.
type RequestError struct {
	URL string
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request: POST %s: %v", e.URL, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Post issues a POST request on the calling goroutine.
func (c *Client) Post(rawURL string, pr *PostRequest) (*Response, error) {
	return c.PostContext(context.Background(), rawURL, pr)
}

// PostContext issues a POST request honoring ctx for cancellation and
// deadlines.
func (c *Client) PostContext(ctx context.Context, rawURL string, pr *PostRequest) (*Response, error) {
	if pr == nil {
		pr = &PostRequest{}
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &RequestError{URL: rawURL, Err: err}
	}
	if len(pr.Params) > 0 {
		q := u.Query()
		for k, vs := range pr.Params {
			q[k] = vs
		}
		u.RawQuery = q.Encode()
	}

	var body io.Reader
	contentType := ""
	if len(pr.Fields) > 0 || len(pr.Files) > 0 {
		form := NewForm()
		for _, k := range sortedKeys(pr.Fields) {
			form.AddField(k, pr.Fields[k])
		}
		for _, k := range sortedFileKeys(pr.Files) {
			f := pr.Files[k]
			form.AddFile(k, f.Name, f.Data)
		}
		body = bytes.NewReader(form.Encode())
		contentType = form.ContentType()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), body)
	if err != nil {
		return nil, &RequestError{URL: rawURL, Err: err}
	}
	for k, v := range pr.Headers {
		req.Header.Set(k, v)
	}
	if contentType != "" {
		// Set after caller headers so the boundary header always wins.
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, &RequestError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestError{URL: rawURL, Err: err}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedFileKeys(m map[string]File) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
