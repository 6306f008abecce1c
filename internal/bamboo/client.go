// Package bamboo is a thin client for the BambooHR REST API.
//
// Every operation issues exactly one HTTP request. Failures are returned as
// *Error values whose message is safe to show to end users; there are no
// retries and no caching.
package bamboo

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

// DefaultTimeout bounds every request made by the client.
const DefaultTimeout = 30 * time.Second

// Config holds what the client needs to reach one BambooHR company.
type Config struct {
	APIToken string
	BaseURL  string // e.g. https://acme.bamboohr.com/api/v1
	Debug    bool   // log every request and response
}

// Doer executes HTTP requests. *http.Client implements it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Params are query-string parameters. A nil Params means the request carries
// no query string at all.
type Params map[string]any

// Encode renders the params as a URL query string with keys sorted.
func (p Params) Encode() string {
	if len(p) == 0 {
		return ""
	}
	values := make(url.Values, len(p))
	for key, value := range p {
		values.Set(key, fmt.Sprint(value))
	}
	return values.Encode()
}

// String renders the params for diagnostics as {key: value, ...}, keys sorted.
func (p Params) String() string {
	keys := make([]string, 0, len(p))
	for key := range p {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, len(keys))
	for i, key := range keys {
		pairs[i] = fmt.Sprintf("%s: %v", key, p[key])
	}
	return "{" + strings.Join(pairs, ", ") + "}"
}

// Client talks to the BambooHR API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	authHeader string
	http       Doer
	logger     *slog.Logger
	debug      bool
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPDoer replaces the underlying HTTP client.
func WithHTTPDoer(doer Doer) Option {
	return func(c *Client) {
		if doer != nil {
			c.http = doer
		}
	}
}

// WithLogger sets the logger used for debug diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a client for the given configuration.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.APIToken == "" {
		return nil, fmt.Errorf("API token is required")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: scheme and host are required", cfg.BaseURL)
	}

	c := &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		authHeader: BasicAuth(cfg.APIToken),
		http:       &http.Client{Timeout: DefaultTimeout},
		logger:     slog.Default(),
		debug:      cfg.Debug,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BasicAuth builds the Authorization header value. BambooHR takes the API
// token as the username and a literal "x" as the password.
func BasicAuth(apiToken string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(apiToken+":x"))
}

// BaseURL returns the configured API root
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetJSON issues a GET and decodes the JSON body into out.
func (c *Client) GetJSON(ctx context.Context, path string, params Params, out any) error {
	body, err := c.do(ctx, http.MethodGet, path, params, nil)
	if err != nil {
		return err
	}
	return decode(path, body, out)
}

// GetBinary issues a GET and returns the raw body bytes.
func (c *Client) GetBinary(ctx context.Context, path string, params Params) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, params, nil)
}

// Post sends body as JSON and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	resp, err := c.do(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		return err
	}
	return decode(path, resp, out)
}

// Put sends body as JSON and decodes the response into out.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	resp, err := c.do(ctx, http.MethodPut, path, nil, body)
	if err != nil {
		return err
	}
	return decode(path, resp, out)
}

// Delete issues a DELETE and decodes the response into out.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	resp, err := c.do(ctx, http.MethodDelete, path, nil, nil)
	if err != nil {
		return err
	}
	return decode(path, resp, out)
}

func (c *Client) do(ctx context.Context, method, path string, params Params, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.URL.RawQuery = params.Encode()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", c.authHeader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logRequest(method, path, params)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logFailure(0, path, err.Error())
		return nil, Classify(0, nil, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logFailure(resp.StatusCode, path, err.Error())
		return nil, ClassifyTransport(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logFailure(resp.StatusCode, path, statusMessage(resp.StatusCode))
		return nil, Classify(resp.StatusCode, data, nil)
	}

	c.logResponse(resp.StatusCode, path)
	return data, nil
}

func decode(path string, body []byte, out any) error {
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}
