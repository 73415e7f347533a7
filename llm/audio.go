package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
)

// Audio transcription/translation parameters.
const (
	ModelWhisper1 = "whisper-1"

	AudioFormatJSON        = "json"
	AudioFormatText        = "text"
	AudioFormatSRT         = "srt"
	AudioFormatVerboseJSON = "verbose_json"
	AudioFormatVTT         = "vtt"
)

// AudioRequest transcribes or translates an audio file. File holds the raw
// bytes in one of the accepted container formats (flac, mp3, mp4, mpeg, mpga,
// m4a, ogg, wav, webm).
type AudioRequest struct {
	File     []byte
	FileName string

	Model string

	// Language of the input audio, ISO-639-1. Only sent for transcription;
	// translations always target English.
	Language string

	// Prompt guides the model's style or continues a previous segment.
	Prompt string

	ResponseFormat string
	Temperature    *float64
}

// NewAudioRequest builds a request with the default model and output format.
func NewAudioRequest(data []byte) AudioRequest {
	return AudioRequest{File: data, Model: ModelWhisper1, ResponseFormat: AudioFormatJSON}
}

// AudioResponse holds the transcript. For non-JSON response formats Text
// carries the body verbatim (srt, vtt, plain text).
type AudioResponse struct {
	Text string `json:"text"`
}

// Transcribe calls POST {base}/audio/transcriptions.
func (c *Client) Transcribe(ctx context.Context, req AudioRequest) (*AudioResponse, error) {
	return c.audio(ctx, "/audio/transcriptions", req, true)
}

// Translate calls POST {base}/audio/translations. The language field is not
// sent; translations are English-only.
func (c *Client) Translate(ctx context.Context, req AudioRequest) (*AudioResponse, error) {
	return c.audio(ctx, "/audio/translations", req, false)
}

func (c *Client) audio(ctx context.Context, path string, req AudioRequest, includeLanguage bool) (*AudioResponse, error) {
	if len(req.File) == 0 {
		return nil, ErrNoAudioData
	}
	if strings.TrimSpace(req.Model) == "" {
		req.Model = ModelWhisper1
	}
	format := strings.TrimSpace(req.ResponseFormat)
	if format == "" {
		format = AudioFormatJSON
	}

	body, contentType, err := encodeAudioForm(req, format, includeLanguage)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", contentType)

	resp, err := c.do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch format {
	case AudioFormatJSON, AudioFormatVerboseJSON:
		var out AudioResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return nil, fmt.Errorf("llm: decode %s response: %w", path, err)
		}
		return &out, nil
	default:
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("llm: read %s response: %w", path, err)
		}
		return &AudioResponse{Text: string(data)}, nil
	}
}

func encodeAudioForm(req AudioRequest, format string, includeLanguage bool) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)

	fileName := strings.TrimSpace(req.FileName)
	if fileName == "" {
		fileName = "audio.mp3"
	}
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(req.File); err != nil {
		return nil, "", err
	}

	fields := map[string]string{
		"model":           req.Model,
		"response_format": format,
	}
	if includeLanguage && strings.TrimSpace(req.Language) != "" {
		fields["language"] = req.Language
	}
	if strings.TrimSpace(req.Prompt) != "" {
		fields["prompt"] = req.Prompt
	}
	if req.Temperature != nil {
		fields["temperature"] = strconv.FormatFloat(*req.Temperature, 'f', -1, 64)
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, "", err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return buf, writer.FormDataContentType(), nil
}
