// Package llm is a client SDK for OpenAI-compatible HTTP APIs: chat
// completions (including tool calling and streaming), embeddings, image
// generation, text-to-speech, and audio transcription/translation.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// DefaultBaseURL is the hosted platform endpoint. Self-hosted compatible
// servers are selected through Config.BaseURL.
const DefaultBaseURL = "https://api.openai.com/v1"

const (
	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 2
	defaultRetryDelay = 500 * time.Millisecond

	maxErrorBody = 1200
)

// Config controls a Client.
type Config struct {
	// APIKey is sent as a bearer token. Empty is allowed for compatible
	// servers that do not authenticate.
	APIKey string

	// BaseURL of the API, without a trailing slash. Defaults to DefaultBaseURL.
	BaseURL string

	// Timeout applies per request. Defaults to 30s.
	Timeout time.Duration

	// MaxRetries bounds automatic retries of transient failures. Nil applies
	// the default of 2; pointing at zero disables retries entirely.
	MaxRetries *int

	// HTTPClient overrides the default client. Its transport is wrapped with
	// the retry transport.
	HTTPClient *http.Client

	// TokenSource, when set, takes precedence over APIKey. Used with gateways
	// that front the API with OAuth credentials.
	TokenSource oauth2.TokenSource

	// Logger receives request and retry details at debug level.
	Logger *zap.Logger
}

// Client issues authenticated requests against an OpenAI-compatible API.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
	cred    oauth2.TokenSource
	logger  *zap.Logger
}

// New constructs a Client from config, applying defaults for anything unset.
func New(cfg Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = DefaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	retries := defaultMaxRetries
	if cfg.MaxRetries != nil && *cfg.MaxRetries >= 0 {
		retries = *cfg.MaxRetries
	}

	inner := http.DefaultTransport
	if cfg.HTTPClient != nil && cfg.HTTPClient.Transport != nil {
		inner = cfg.HTTPClient.Transport
	}
	client := &http.Client{
		Timeout: timeout,
		Transport: &retryTransport{
			next:       inner,
			maxRetries: retries,
			baseDelay:  defaultRetryDelay,
			logger:     logger,
		},
	}

	return &Client{
		apiKey:  strings.TrimSpace(cfg.APIKey),
		baseURL: strings.TrimRight(base, "/"),
		client:  client,
		cred:    cfg.TokenSource,
		logger:  logger,
	}
}

// NewFromEnv builds a Client from environment variables: OPENAI_API_KEY,
// OPENAI_API_BASE, LLMKIT_TIMEOUT_SECONDS and LLMKIT_MAX_RETRIES.
func NewFromEnv() (*Client, error) {
	cfg := Config{
		APIKey:  envTrimmed("OPENAI_API_KEY"),
		BaseURL: envTrimmed("OPENAI_API_BASE"),
	}
	if v := envTrimmed("LLMKIT_TIMEOUT_SECONDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("llm: invalid LLMKIT_TIMEOUT_SECONDS %q", v)
		}
		cfg.Timeout = time.Duration(n) * time.Second
	}
	if v := envTrimmed("LLMKIT_MAX_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("llm: invalid LLMKIT_MAX_RETRIES %q", v)
		}
		cfg.MaxRetries = &n
	}
	return New(cfg), nil
}

// BaseURL returns the resolved API base, without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// postJSON sends payload to path and decodes the JSON response into out.
func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	resp, err := c.sendJSON(ctx, path, payload, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("llm: decode %s response: %w", path, err)
	}
	return nil
}

// postRaw sends payload to path and returns the raw response body. Used for
// endpoints that answer with binary content, such as audio synthesis.
func (c *Client) postRaw(ctx context.Context, path string, payload any) ([]byte, error) {
	resp, err := c.sendJSON(ctx, path, payload, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("llm: read %s response: %w", path, err)
	}
	return data, nil
}

func (c *Client) sendJSON(ctx context.Context, path string, payload any, accept string) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("llm: encode %s request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	return c.do(req)
}

// do authorizes the request, sends it, and maps non-2xx responses to *APIError.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	if err := c.authorize(req); err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("request complete",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, decodeAPIError(resp)
	}
	return resp, nil
}

func (c *Client) authorize(req *http.Request) error {
	if c.cred != nil {
		token, err := c.cred.Token()
		if err != nil {
			return fmt.Errorf("llm: token source: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token.AccessToken)
		return nil
	}
	// An empty key sends no Authorization header at all, so the client works
	// against unauthenticated compatible servers.
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: "failed to read error body: " + err.Error()}
	}

	var envelope struct {
		Error *APIError `json:"error"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Error != nil && envelope.Error.Message != "" {
		envelope.Error.StatusCode = resp.StatusCode
		return envelope.Error
	}

	body := strings.TrimSpace(string(data))
	if body == "" {
		body = "<empty body>"
	}
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody] + "... (truncated)"
	}
	return &APIError{StatusCode: resp.StatusCode, Message: body}
}

func envTrimmed(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
