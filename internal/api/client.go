// Package api provides the single configured HTTP client every domain
// service goes through. It attaches the bearer token, applies a modest
// client-side rate limit, and maps backend responses onto domain errors.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/nextreadapp/nextread-client/internal/errors"
)

const (
	defaultTimeout = 30 * time.Second

	// Keep a polite ceiling on request rate; the client is interactive and
	// should never need more than this.
	defaultRPS   = 10
	defaultBurst = 20

	userAgent = "NextRead-Client/1.0"
)

// TokenSource yields the current bearer token, if any.
type TokenSource interface {
	Token() (string, bool)
}

// Client is the configured NextRead backend client.
type Client struct {
	base    *url.URL
	http    *http.Client
	limiter *rate.Limiter
	tokens  TokenSource
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the default request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithHTTPClient substitutes the underlying http.Client. Used in tests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// New creates a backend client for the given base URL.
func New(baseURL string, tokens TokenSource, logger *slog.Logger, opts ...Option) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	c := &Client{
		base:    base,
		http:    &http.Client{Timeout: defaultTimeout},
		limiter: rate.NewLimiter(rate.Limit(defaultRPS), defaultBurst),
		tokens:  tokens,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// RequestOption tweaks a single request.
type RequestOption func(*http.Request)

// WithHeader sets a header on the request.
func WithHeader(key, value string) RequestOption {
	return func(r *http.Request) {
		r.Header.Set(key, value)
	}
}

// Get issues a GET and decodes the JSON response into out (when non-nil).
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, "", out)
}

// Post issues a POST with a JSON body and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.do(ctx, http.MethodPost, path, body, "application/json", out, opts...)
}

// Put issues a PUT with a JSON body and decodes the response into out.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, "application/json", out)
}

// PutRaw issues a PUT whose body is a raw string rather than JSON.
// The avatar endpoint takes the bare URL as its body.
func (c *Client) PutRaw(ctx context.Context, path, body string, out any) error {
	return c.do(ctx, http.MethodPut, path, body, "text/plain", out)
}

func (c *Client) do(ctx context.Context, method, path string, body any, contentType string, out any, opts ...RequestOption) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		encoded, err := json.Marshal(b)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	u := c.base.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if contentType != "" && reader != nil {
		req.Header.Set("Content-Type", contentType)
	}
	if tok, ok := c.tokens.Token(); ok {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	for _, opt := range opts {
		opt(req)
	}

	c.logger.Debug("api request", "method", method, "path", path)

	resp, err := c.http.Do(req)
	if err != nil {
		// Context errors stay recognizable for callers that cancel.
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errors.Network("backend unreachable").WithCause(err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Network("read response").WithCause(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.errorFrom(resp.StatusCode, payload)
	}

	if out == nil || len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return errors.Wrapf(err, errors.CodeServer, "decode %s %s response", method, path)
	}
	return nil
}

// errorFrom converts a non-2xx response into a domain error, preferring the
// backend's own message when the body carries one.
func (c *Client) errorFrom(status int, payload []byte) error {
	msg := fmt.Sprintf("backend returned status %d", status)

	var body struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	}
	if err := json.Unmarshal(payload, &body); err == nil && body.Message != "" {
		msg = body.Message
	}

	return &errors.Error{Code: errors.FromStatus(status), Message: msg}
}
