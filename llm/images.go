package llm

import (
	"context"
	"strings"
)

// Image generation parameters.
const (
	ModelDallE3 = "dall-e-3"

	ImageQualityStandard = "standard"
	ImageQualityHD       = "hd"

	ImageFormatURL     = "url"
	ImageFormatB64JSON = "b64_json"

	ImageSizeSquare = "1024x1024"
	ImageSizeWide   = "1792x1024"
	ImageSizeTall   = "1024x1792"

	ImageStyleVivid   = "vivid"
	ImageStyleNatural = "natural"
)

// ImageRequest is a request to POST {base}/images/generations.
type ImageRequest struct {
	Prompt         string `json:"prompt"`
	Model          string `json:"model"`
	N              int    `json:"n,omitempty"`
	Quality        string `json:"quality,omitempty"`
	ResponseFormat string `json:"response_format,omitempty"`
	Size           string `json:"size,omitempty"`
	Style          string `json:"style,omitempty"`
	User           string `json:"user,omitempty"`
}

// NewImageRequest builds a request with the default image model.
func NewImageRequest(prompt string) ImageRequest {
	return ImageRequest{Prompt: prompt, Model: ModelDallE3}
}

// ImageResponse is the response to an image generation request.
type ImageResponse struct {
	Created int64         `json:"created"`
	Data    []ImageObject `json:"data"`
}

// ImageObject is one generated image: a URL or base64 payload depending on
// the requested response format.
type ImageObject struct {
	B64JSON       string `json:"b64_json,omitempty"`
	URL           string `json:"url,omitempty"`
	RevisedPrompt string `json:"revised_prompt,omitempty"`
}

// CreateImage calls POST {base}/images/generations. The default model is
// applied when req.Model is empty.
func (c *Client) CreateImage(ctx context.Context, req ImageRequest) (*ImageResponse, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, ErrNoPrompt
	}
	if strings.TrimSpace(req.Model) == "" {
		req.Model = ModelDallE3
	}

	var out ImageResponse
	if err := c.postJSON(ctx, "/images/generations", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
