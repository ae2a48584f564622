// Package blogapi is the HTTP adapter for the blog REST API and the resource
// accessors built on it. Every accessor performs exactly one request and
// returns errors untouched; caching and retries live elsewhere.
package blogapi

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

	"github.com/mmcdole/quill/internal/domain"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "Quill/1.0"
)

// TokenSource supplies the bearer credential read before every request
type TokenSource interface {
	Token() string
}

// Client implements domain.PostRepository, domain.CommentRepository,
// domain.LikeRepository, domain.AuthRepository and domain.ProfileRepository.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout bounds each request
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// NewClient creates a new blog API client. tokens may be nil for anonymous use.
func NewClient(baseURL string, tokens TokenSource, logger *slog.Logger, opts ...Option) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	normalized, err := NormalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL: normalized,
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalized server root
func (c *Client) BaseURL() string { return c.baseURL }

// NormalizeBaseURL trims whitespace and trailing slashes and defaults the scheme to http
func NormalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("server URL is empty")
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid server URL: unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid server URL: missing host")
	}
	u.RawQuery = ""
	u.Fragment = ""
	return strings.TrimRight(u.String(), "/"), nil
}

// Request sends a JSON request and returns the raw response body.
// body may be nil; params may be nil. A 2xx with an empty body returns nil.
func (c *Client) Request(ctx context.Context, method, path string, body any, params url.Values) (json.RawMessage, error) {
	var (
		reader      io.Reader
		contentType string
	)
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.doRequest(ctx, method, path, params, reader, contentType)
}

// RequestForm sends a multipart/form-data request
func (c *Client) RequestForm(ctx context.Context, method, path string, form *Form) (json.RawMessage, error) {
	data, contentType, err := form.Encode()
	if err != nil {
		return nil, fmt.Errorf("failed to encode form: %w", err)
	}
	return c.doRequest(ctx, method, path, nil, bytes.NewReader(data), contentType)
}

// doRequest performs an HTTP request, attaching the bearer token when one is present
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) (json.RawMessage, error) {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL = reqURL + "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	token := c.token()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.logger.Debug("api request", "method", method, "url", reqURL, "auth", token != "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("api request failed", "method", method, "url", reqURL, "error", err)
		return nil, &domain.TransportError{Op: method, URL: reqURL, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.TransportError{Op: method, URL: reqURL, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		herr := &domain.HTTPError{
			Status:  resp.StatusCode,
			Body:    string(data),
			Message: errorMessage(data),
		}
		if resp.StatusCode >= 500 {
			c.logger.Error("api request error", "method", method, "url", reqURL, "status", resp.StatusCode, "body", string(data))
		} else {
			c.logger.Debug("api request rejected", "method", method, "url", reqURL, "status", resp.StatusCode)
		}
		return nil, herr
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	return data, nil
}

func (c *Client) token() string {
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

// errorMessage extracts a human message from an error body: {"message": ...}
// or {"error": ...}, each either a string or a list of strings.
func errorMessage(body []byte) string {
	var payload struct {
		Message json.RawMessage `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		text := strings.TrimSpace(string(body))
		if len(text) > 200 || strings.HasPrefix(text, "<") {
			return ""
		}
		return text
	}
	for _, raw := range []json.RawMessage{payload.Message, payload.Error} {
		if msg := flattenMessage(raw); msg != "" {
			return msg
		}
	}
	return ""
}

func flattenMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var list []string
	if json.Unmarshal(raw, &list) == nil {
		return strings.Join(list, "; ")
	}
	return ""
}

// decode parses a response body into T
func decode[T any](raw json.RawMessage) (T, error) {
	var out T
	if len(raw) == 0 {
		return out, fmt.Errorf("failed to parse response: empty body")
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("failed to parse response: %w", err)
	}
	return out, nil
}
