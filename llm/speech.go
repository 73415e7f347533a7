package llm

import (
	"context"
	"strings"
)

// Text-to-speech parameters.
const (
	ModelTTS1   = "tts-1"
	ModelTTS1HD = "tts-1-hd"

	VoiceAlloy   = "alloy"
	VoiceEcho    = "echo"
	VoiceFable   = "fable"
	VoiceOnyx    = "onyx"
	VoiceNova    = "nova"
	VoiceShimmer = "shimmer"

	SpeechFormatMP3  = "mp3"
	SpeechFormatOpus = "opus"
	SpeechFormatAAC  = "aac"
	SpeechFormatFLAC = "flac"
)

// SpeechRequest is a request to POST {base}/audio/speech.
type SpeechRequest struct {
	Model          string   `json:"model"`
	Input          string   `json:"input"`
	Voice          string   `json:"voice"`
	ResponseFormat string   `json:"response_format"`
	Speed          *float64 `json:"speed,omitempty"`
}

// NewSpeechRequest builds a request with the default model, voice and format.
func NewSpeechRequest(input string) SpeechRequest {
	return SpeechRequest{
		Model:          ModelTTS1,
		Input:          input,
		Voice:          VoiceNova,
		ResponseFormat: SpeechFormatMP3,
	}
}

// Speech calls POST {base}/audio/speech and returns the raw audio bytes in
// the requested format. Defaults are applied for empty model, voice, and
// response format.
func (c *Client) Speech(ctx context.Context, req SpeechRequest) ([]byte, error) {
	if strings.TrimSpace(req.Input) == "" {
		return nil, ErrNoSpeechInput
	}
	if strings.TrimSpace(req.Model) == "" {
		req.Model = ModelTTS1
	}
	if strings.TrimSpace(req.Voice) == "" {
		req.Voice = VoiceNova
	}
	if strings.TrimSpace(req.ResponseFormat) == "" {
		req.ResponseFormat = SpeechFormatMP3
	}

	return c.postRaw(ctx, "/audio/speech", req)
}
