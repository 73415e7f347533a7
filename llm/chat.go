package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"llmkit/llm/schema"
)

// Chat completion models known to the hosted platform. Any other model name
// accepted by the configured server can be passed as-is.
const (
	ModelGPT3Dot5Turbo         = "gpt-3.5-turbo"
	ModelGPT3Dot5TurboInstruct = "gpt-3.5-turbo-instruct"
	ModelGPT4Turbo             = "gpt-4-1106-preview"
	ModelGPT4TurboVision       = "gpt-4-1106-vision-preview"
)

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// FinishReason describes why the model stopped generating tokens.
type FinishReason string

const (
	FinishStop          FinishReason = "stop"
	FinishLength        FinishReason = "length"
	FinishContentFilter FinishReason = "content_filter"
	FinishToolCalls     FinishReason = "tool_calls"
)

// Message is one entry in a chat conversation. Assistant messages may carry
// ToolCalls; tool messages answer one of them through ToolCallID.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	Name       string     `json:"name,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// SystemMessage builds a system message. An empty participant name is omitted.
func SystemMessage(content, name string) Message {
	return Message{Role: RoleSystem, Content: content, Name: name}
}

// UserMessage builds a user message. An empty participant name is omitted.
func UserMessage(content, name string) Message {
	return Message{Role: RoleUser, Content: content, Name: name}
}

// AssistantMessage builds an assistant message, typically when replaying a
// model turn back into the conversation.
func AssistantMessage(content string, calls ...ToolCall) Message {
	return Message{Role: RoleAssistant, Content: content, ToolCalls: calls}
}

// ToolMessage builds a tool result message answering the given tool call.
func ToolMessage(content, toolCallID string) Message {
	return Message{Role: RoleTool, Content: content, ToolCallID: toolCallID}
}

// MarshalJSON emits null content for assistant messages that only carry tool
// calls, matching how the platform serializes them. Replaying such a message
// into the conversation must round-trip the null rather than turn it into "".
func (m Message) MarshalJSON() ([]byte, error) {
	type message Message
	aux := struct {
		message
		Content any `json:"content"`
	}{message: message(m), Content: m.Content}
	if m.Role == RoleAssistant && m.Content == "" && len(m.ToolCalls) > 0 {
		aux.Content = nil
	}
	return json.Marshal(aux)
}

// ToolCall is the model's request to invoke a function.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

// FunctionCall carries the function name and its arguments. Arguments are a
// JSON-encoded string that the model does not always produce valid; callers
// must validate before use.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Tool describes a function the model may call.
type Tool struct {
	Type     string       `json:"type"`
	Function FunctionSpec `json:"function"`
}

// FunctionSpec is the function half of a Tool: name, description, and a JSON
// schema for the arguments.
type FunctionSpec struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

// NewFunctionTool builds a function tool whose parameter schema is derived
// from the params struct via llm/schema. Pass nil for a no-argument function.
func NewFunctionTool(name, description string, params any) (Tool, error) {
	parameters := json.RawMessage(`{"type":"object","properties":{}}`)
	if params != nil {
		derived, err := schema.FromStruct(params)
		if err != nil {
			return Tool{}, fmt.Errorf("tool %s: %w", name, err)
		}
		parameters = derived
	}
	return Tool{
		Type: "function",
		Function: FunctionSpec{
			Name:        name,
			Description: description,
			Parameters:  parameters,
		},
	}, nil
}

// ToolChoice controls which (if any) function the model calls: "none",
// "auto", or a specific function by name.
type ToolChoice struct {
	mode     string
	function string
}

func ToolChoiceNone() ToolChoice { return ToolChoice{mode: "none"} }
func ToolChoiceAuto() ToolChoice { return ToolChoice{mode: "auto"} }

// ToolChoiceFunction forces the model to call the named function.
func ToolChoiceFunction(name string) ToolChoice {
	return ToolChoice{mode: "function", function: name}
}

// MarshalJSON emits the bare mode string, or the function selector object for
// a forced function.
func (tc ToolChoice) MarshalJSON() ([]byte, error) {
	switch tc.mode {
	case "", "none":
		return json.Marshal("none")
	case "auto":
		return json.Marshal("auto")
	case "function":
		return json.Marshal(map[string]any{
			"type":     "function",
			"function": map[string]string{"name": tc.function},
		})
	default:
		return nil, fmt.Errorf("invalid tool choice mode %q", tc.mode)
	}
}

// ResponseFormat selects the output format the model must produce.
type ResponseFormat struct {
	Type string `json:"type"`
}

var (
	ResponseFormatJSON = &ResponseFormat{Type: "json_object"}
	ResponseFormatText = &ResponseFormat{Type: "text"}
)

// ChatRequest is a chat completion request. Zero-valued optional fields are
// omitted from the wire payload; pointer fields distinguish "unset" from a
// meaningful zero.
type ChatRequest struct {
	Model            string          `json:"model"`
	Messages         []Message       `json:"messages"`
	FrequencyPenalty *float64        `json:"frequency_penalty,omitempty"`
	MaxTokens        int             `json:"max_tokens,omitempty"`
	N                int             `json:"n,omitempty"`
	PresencePenalty  *float64        `json:"presence_penalty,omitempty"`
	ResponseFormat   *ResponseFormat `json:"response_format,omitempty"`
	Seed             *int            `json:"seed,omitempty"`
	Stop             string          `json:"stop,omitempty"`
	Stream           bool            `json:"stream,omitempty"`
	Temperature      *float64        `json:"temperature,omitempty"`
	TopP             *float64        `json:"top_p,omitempty"`
	Tools            []Tool          `json:"tools,omitempty"`
	ToolChoice       *ToolChoice     `json:"tool_choice,omitempty"`
	User             string          `json:"user,omitempty"`
}

// ChatCompletion is the response to a chat completion request.
type ChatCompletion struct {
	ID                string       `json:"id"`
	Choices           []ChatChoice `json:"choices"`
	Created           int64        `json:"created"`
	Model             string       `json:"model"`
	SystemFingerprint string       `json:"system_fingerprint,omitempty"`
	Object            string       `json:"object"`
	Usage             Usage        `json:"usage"`
}

// ChatChoice is one generated completion.
type ChatChoice struct {
	FinishReason FinishReason `json:"finish_reason"`
	Index        int          `json:"index"`
	Message      Message      `json:"message"`
}

// Usage captures token accounting for a request.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatCompletion calls POST {base}/chat/completions. The default model is
// applied when req.Model is empty.
func (c *Client) ChatCompletion(ctx context.Context, req ChatRequest) (*ChatCompletion, error) {
	if len(req.Messages) == 0 {
		return nil, ErrNoMessages
	}
	if strings.TrimSpace(req.Model) == "" {
		req.Model = ModelGPT3Dot5Turbo
	}

	var out ChatCompletion
	if err := c.postJSON(ctx, "/chat/completions", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
