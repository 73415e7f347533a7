package llm

import (
	"context"
	"encoding/json"
	"strings"
)

// Embedding models known to the hosted platform.
const (
	ModelTextEmbeddingAda002   = "text-embedding-ada-002"
	ModelTextEmbeddingAda002V2 = "text-embedding-ada-002-v2"
)

// Embedding encoding formats.
const (
	EncodingFloat  = "float"
	EncodingBase64 = "base64"
)

// EmbeddingInput is either a single string or a list of strings; it marshals
// untagged the way the API expects (a bare string vs a JSON array).
type EmbeddingInput struct {
	texts  []string
	single bool
}

// EmbedText embeds one input string.
func EmbedText(text string) EmbeddingInput {
	return EmbeddingInput{texts: []string{text}, single: true}
}

// EmbedTexts embeds multiple inputs in a single request.
func EmbedTexts(texts []string) EmbeddingInput {
	return EmbeddingInput{texts: texts}
}

// Texts returns the input strings regardless of form.
func (in EmbeddingInput) Texts() []string { return in.texts }

func (in EmbeddingInput) isEmpty() bool {
	if len(in.texts) == 0 {
		return true
	}
	for _, text := range in.texts {
		if strings.TrimSpace(text) != "" {
			return false
		}
	}
	return true
}

func (in EmbeddingInput) MarshalJSON() ([]byte, error) {
	if in.single && len(in.texts) == 1 {
		return json.Marshal(in.texts[0])
	}
	return json.Marshal(in.texts)
}

// EmbeddingRequest is a request to POST {base}/embeddings.
type EmbeddingRequest struct {
	Input          EmbeddingInput `json:"input"`
	Model          string         `json:"model"`
	EncodingFormat string         `json:"encoding_format,omitempty"`
	User           string         `json:"user,omitempty"`
}

// NewEmbeddingRequest builds a request with the default embedding model.
func NewEmbeddingRequest(input EmbeddingInput) EmbeddingRequest {
	return EmbeddingRequest{Input: input, Model: ModelTextEmbeddingAda002}
}

// EmbeddingResponse is the response to an embedding request.
type EmbeddingResponse struct {
	Object string         `json:"object"`
	Data   []Embedding    `json:"data"`
	Model  string         `json:"model"`
	Usage  EmbeddingUsage `json:"usage"`
}

// Embedding is a single embedding vector.
type Embedding struct {
	Index     int       `json:"index"`
	Embedding []float64 `json:"embedding"`
	Object    string    `json:"object"`
}

// EmbeddingUsage captures token accounting for an embedding request.
type EmbeddingUsage struct {
	PromptTokens int `json:"prompt_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// CreateEmbedding calls POST {base}/embeddings. The default model is applied
// when req.Model is empty.
func (c *Client) CreateEmbedding(ctx context.Context, req EmbeddingRequest) (*EmbeddingResponse, error) {
	if req.Input.isEmpty() {
		return nil, ErrNoInput
	}
	if strings.TrimSpace(req.Model) == "" {
		req.Model = ModelTextEmbeddingAda002
	}

	var out EmbeddingResponse
	if err := c.postJSON(ctx, "/embeddings", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
