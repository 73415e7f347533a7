package llm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newTestClient(t *testing.T, cfg Config, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg.BaseURL = srv.URL
	return New(cfg)
}

func chatHandler(t *testing.T, onRequest func(r *http.Request)) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if onRequest != nil {
			onRequest(r)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "gpt-3.5-turbo",
			"choices": [{"index": 0, "finish_reason": "stop",
				"message": {"role": "assistant", "content": "hello"}}],
			"usage": {"prompt_tokens": 9, "completion_tokens": 3, "total_tokens": 12}
		}`))
	}
}

func TestNewDefaults(t *testing.T) {
	client := New(Config{BaseURL: "https://example.test/v1/"})
	assert.Equal(t, "https://example.test/v1", client.BaseURL())
	assert.NotNil(t, client.logger)

	client = New(Config{})
	assert.Equal(t, DefaultBaseURL, client.BaseURL())
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", " key-123 ")
	t.Setenv("OPENAI_API_BASE", "https://example.test/v1")
	t.Setenv("LLMKIT_TIMEOUT_SECONDS", "5")
	t.Setenv("LLMKIT_MAX_RETRIES", "4")

	client, err := NewFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "key-123", client.apiKey)
	assert.Equal(t, "https://example.test/v1", client.BaseURL())
	assert.Equal(t, 5*time.Second, client.client.Timeout)
}

func TestNewFromEnvZeroRetries(t *testing.T) {
	t.Setenv("LLMKIT_MAX_RETRIES", "0")

	client, err := NewFromEnv()
	require.NoError(t, err)
	rt := client.client.Transport.(*retryTransport)
	assert.Equal(t, 0, rt.maxRetries)
}

func TestNewFromEnvRejectsBadValues(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "k")
	t.Setenv("LLMKIT_TIMEOUT_SECONDS", "soon")
	_, err := NewFromEnv()
	require.Error(t, err)

	t.Setenv("LLMKIT_TIMEOUT_SECONDS", "")
	t.Setenv("LLMKIT_MAX_RETRIES", "-1")
	_, err = NewFromEnv()
	require.Error(t, err)
}

func TestAuthorizationHeader(t *testing.T) {
	tests := []struct {
		name   string
		cfg    Config
		expect string
	}{
		{name: "api key", cfg: Config{APIKey: "sk-test"}, expect: "Bearer sk-test"},
		{name: "empty key omits header", cfg: Config{}, expect: ""},
		{
			name: "token source wins over api key",
			cfg: Config{
				APIKey:      "sk-test",
				TokenSource: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "gateway-token"}),
			},
			expect: "Bearer gateway-token",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got string
			client := newTestClient(t, tc.cfg, chatHandler(t, func(r *http.Request) {
				got = r.Header.Get("Authorization")
			}))

			_, err := client.ChatCompletion(context.Background(), ChatRequest{
				Messages: []Message{UserMessage("hi", "")},
			})
			require.NoError(t, err)
			assert.Equal(t, tc.expect, got)
		})
	}
}

func TestAPIErrorEnvelope(t *testing.T) {
	client := newTestClient(t, Config{APIKey: "sk-test"}, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`))
	})

	_, err := client.ChatCompletion(context.Background(), ChatRequest{
		Messages: []Message{UserMessage("hi", "")},
	})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Incorrect API key provided", apiErr.Message)
	assert.Equal(t, "invalid_request_error", apiErr.Type)
	assert.Equal(t, "invalid_api_key", apiErr.Code)
	assert.False(t, apiErr.Retryable())
}

func TestAPIErrorUnrecognizedBody(t *testing.T) {
	client := newTestClient(t, Config{}, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("upstream exploded"))
	})

	_, err := client.CreateImage(context.Background(), NewImageRequest("a fox"))
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "upstream exploded", apiErr.Message)
}

func TestAPIErrorTruncatesLongBody(t *testing.T) {
	long := make([]byte, 5000)
	for i := range long {
		long[i] = 'x'
	}
	client := newTestClient(t, Config{}, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write(long)
	})

	_, err := client.CreateImage(context.Background(), NewImageRequest("a fox"))
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Len(t, apiErr.Message, maxErrorBody+len("... (truncated)"))
}
