package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llmkit/llm"
)

// runCLI executes the root command against a test server and returns
// captured stdout.
func runCLI(t *testing.T, srv *httptest.Server, args ...string) (string, error) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_API_BASE", srv.URL)

	root := newRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)

	err = root.Execute()
	return buf.String(), err
}

func TestChatCommand(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "gpt-3.5-turbo",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "hi there"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 3, "completion_tokens": 2, "total_tokens": 5}
		}`))
	}))
	defer srv.Close()

	out, err := runCLI(t, srv, "chat", "hello")
	require.NoError(t, err)
	assert.Equal(t, "hi there\n", out)
	assert.Equal(t, "gpt-3.5-turbo", gotBody["model"])
}

func TestChatCommandSystemAndModel(t *testing.T) {
	var gotBody llm.ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "ok"}, "finish_reason": "stop"}]}`))
	}))
	defer srv.Close()

	_, err := runCLI(t, srv, "chat", "--model", "gpt-4", "--system", "be brief", "hello")
	require.NoError(t, err)

	assert.Equal(t, "gpt-4", gotBody.Model)
	require.Len(t, gotBody.Messages, 2)
	assert.Equal(t, llm.RoleSystem, gotBody.Messages[0].Role)
	assert.Equal(t, "be brief", gotBody.Messages[0].Content)
	assert.Equal(t, llm.RoleUser, gotBody.Messages[1].Role)
}

func TestEmbedCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/embeddings", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"object": "list",
			"model": "text-embedding-ada-002",
			"data": [{"index": 0, "object": "embedding", "embedding": [0.1, 0.2, 0.3]}],
			"usage": {"prompt_tokens": 2, "total_tokens": 2}
		}`))
	}))
	defer srv.Close()

	out, err := runCLI(t, srv, "embed", "some text")
	require.NoError(t, err)
	assert.Equal(t, "[0] 3 dimensions\n", out)
}

func TestImageCommandPrintsURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/images/generations", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"created": 1, "data": [{"url": "https://img.example/cat.png"}]}`))
	}))
	defer srv.Close()

	out, err := runCLI(t, srv, "image", "a cat")
	require.NoError(t, err)
	assert.Equal(t, "https://img.example/cat.png\n", out)
}

func TestTranscribeCommand(t *testing.T) {
	dir := t.TempDir()
	audioPath := filepath.Join(dir, "clip.wav")
	require.NoError(t, os.WriteFile(audioPath, []byte("RIFFfake"), 0o644))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/audio/transcriptions", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text": "hello world"}`))
	}))
	defer srv.Close()

	out, err := runCLI(t, srv, "transcribe", audioPath)
	require.NoError(t, err)
	assert.Equal(t, "hello world\n", out)
}

func TestChatCommandAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "bad key", "type": "invalid_request_error"}}`))
	}))
	defer srv.Close()

	_, err := runCLI(t, srv, "chat", "hello")
	require.Error(t, err)

	var apiErr *llm.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}
