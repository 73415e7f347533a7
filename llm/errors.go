package llm

import (
	"errors"
	"fmt"
)

var (
	ErrNoMessages    = errors.New("chat: at least one message is required")
	ErrNoInput       = errors.New("embeddings: input is required")
	ErrNoPrompt      = errors.New("images: prompt is required")
	ErrNoSpeechInput = errors.New("speech: input text is required")
	ErrNoAudioData   = errors.New("audio: file data is required")
)

// APIError is the error envelope returned by OpenAI-compatible servers.
// When the body is not a recognizable envelope, Message carries the raw
// (possibly truncated) response body instead.
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
	Type       string `json:"type,omitempty"`
	Param      string `json:"param,omitempty"`
	Code       string `json:"code,omitempty"`
}

func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("api error: status %d (%s): %s", e.StatusCode, e.Type, e.Message)
	}
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Message)
}

// Retryable reports whether the failure is worth retrying.
func (e *APIError) Retryable() bool {
	return retryableStatus(e.StatusCode)
}
