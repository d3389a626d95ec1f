package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"journal-desk/models"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

const defaultTimeout = 30 * time.Second

// Error is a non-2xx reply, or a 2xx reply whose envelope reports failure.
type Error struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s failed: %d %s", e.Method, e.Path, e.StatusCode, e.Message)
}

func (e *Error) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized {
		return models.ErrUnauthorized
	}
	return nil
}

// ServerMessage returns the message the backend attached to a failed call.
func ServerMessage(err error) (string, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message, true
	}
	return "", false
}

// StatusCode returns the HTTP status of a failed call, or 0 for transport errors.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

type Client struct {
	baseURL        string
	httpClient     *http.Client
	transport      http.RoundTripper
	tokens         TokenStore
	limiter        *rate.Limiter
	onUnauthorized func(ctx context.Context)
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.transport = rt }
}

func WithTokenStore(store TokenStore) Option {
	return func(c *Client) { c.tokens = store }
}

// WithRateLimit throttles outbound calls to r per second with the given burst.
func WithRateLimit(r float64, burst int) Option {
	return func(c *Client) {
		if r > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(r), burst)
		}
	}
}

// WithUnauthorizedHandler is called after a 401 evicted the stored token.
func WithUnauthorizedHandler(fn func(ctx context.Context)) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		transport: http.DefaultTransport,
		tokens:    &MemoryTokenStore{},
	}
	c.httpClient = &http.Client{
		Timeout:   defaultTimeout,
		Transport: c,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Tokens exposes the client's token store.
func (c *Client) Tokens() TokenStore {
	return c.tokens
}

func (c *Client) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Accept", "application/json")
	if token := c.token(req.Context()); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return c.transport.RoundTrip(req)
}

func (c *Client) token(ctx context.Context) string {
	if token := TokenFromContext(ctx); token != "" {
		return token
	}
	return c.tokens.Token()
}

// Do sends payload as JSON and decodes the envelope's data into out.
// The envelope's pagination, when present, is returned.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, payload, out any) (*models.Pagination, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, errors.Wrapf(err, "%s %s", method, path)
		}
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to encode %s %s", method, path)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build %s %s", method, path)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s %s", method, path)
	}

	var env models.Envelope
	decodeErr := json.Unmarshal(data, &env)
	if len(bytes.TrimSpace(data)) == 0 {
		decodeErr = nil
		env.Success = true
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.evict(ctx)
		return nil, &Error{Method: method, Path: path, StatusCode: resp.StatusCode, Message: env.Message}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := env.Message
		if decodeErr != nil || msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &Error{Method: method, Path: path, StatusCode: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return nil, errors.Wrapf(decodeErr, "failed to decode %s %s", method, path)
	}
	if !env.Success {
		return nil, &Error{Method: method, Path: path, StatusCode: resp.StatusCode, Message: env.Message}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return env.Pagination, nil
	}
	// Some endpoints answer with flat fields instead of a data member.
	src := data
	if len(env.Data) > 0 {
		src = env.Data
	}
	if !bytes.Equal(src, []byte("null")) {
		if err := json.Unmarshal(src, out); err != nil {
			return nil, errors.Wrapf(err, "failed to decode %s %s data", method, path)
		}
	}
	return env.Pagination, nil
}

func (c *Client) evict(ctx context.Context) {
	if TokenFromContext(ctx) == "" {
		if err := c.tokens.Clear(); err != nil {
			log.Printf("[Client] failed to clear token: %v", err)
		}
	}
	if c.onUnauthorized != nil {
		c.onUnauthorized(ctx)
	}
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) (*models.Pagination, error) {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, payload, out any) error {
	_, err := c.Do(ctx, http.MethodPost, path, nil, payload, out)
	return err
}

func (c *Client) Put(ctx context.Context, path string, payload, out any) error {
	_, err := c.Do(ctx, http.MethodPut, path, nil, payload, out)
	return err
}

func (c *Client) Patch(ctx context.Context, path string, payload, out any) error {
	_, err := c.Do(ctx, http.MethodPatch, path, nil, payload, out)
	return err
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	_, err := c.Do(ctx, http.MethodDelete, path, nil, nil, out)
	return err
}
