package llm

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// StreamEvent is a single streaming update from a chat completion. Consumers
// can rebuild the final reply by concatenating TextDeltaEvent deltas and
// collecting ToolCallEvent calls until DoneEvent arrives, or use
// CollectChatCompletion.
type StreamEvent interface {
	chatStreamEvent()
}

// TextDeltaEvent carries incremental assistant text.
type TextDeltaEvent struct {
	Delta string
}

func (TextDeltaEvent) chatStreamEvent() {}

// ToolCallEvent carries a fully assembled tool call.
type ToolCallEvent struct {
	Call ToolCall
}

func (ToolCallEvent) chatStreamEvent() {}

// DoneEvent signals completion of the stream.
type DoneEvent struct {
	FinishReason FinishReason
	Usage        *Usage
}

func (DoneEvent) chatStreamEvent() {}

// ErrorEvent signals a stream error. The channel closes shortly after.
type ErrorEvent struct {
	Err error
}

func (ErrorEvent) chatStreamEvent() {}

// ChatCompletionStream calls POST {base}/chat/completions with stream:true
// and decodes the server-sent event stream. The returned channel closes after
// a DoneEvent or ErrorEvent.
//
// Tool call fragments arrive spread across chunks (id and name first,
// arguments accumulated as string pieces); they are emitted as complete
// ToolCallEvent values once the stream finishes.
func (c *Client) ChatCompletionStream(ctx context.Context, req ChatRequest) (<-chan StreamEvent, error) {
	if len(req.Messages) == 0 {
		return nil, ErrNoMessages
	}
	if strings.TrimSpace(req.Model) == "" {
		req.Model = ModelGPT3Dot5Turbo
	}
	req.Stream = true

	resp, err := c.sendJSON(ctx, "/chat/completions", req, "text/event-stream")
	if err != nil {
		return nil, err
	}

	events := make(chan StreamEvent, 32)
	go func() {
		defer close(events)
		defer resp.Body.Close()

		state := newStreamState()
		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

		for scanner.Scan() {
			data, ok := strings.CutPrefix(scanner.Text(), "data:")
			if !ok {
				continue // comment, event name, or blank separator line
			}
			data = strings.TrimSpace(data)
			if data == "" {
				continue
			}
			if data == "[DONE]" {
				for _, ev := range state.flushToolCalls() {
					events <- ev
				}
				events <- state.done()
				return
			}

			out, err := state.handle(data)
			if err != nil {
				events <- ErrorEvent{Err: err}
				return
			}
			for _, ev := range out {
				events <- ev
			}
		}

		if err := scanner.Err(); err != nil {
			events <- ErrorEvent{Err: fmt.Errorf("chat stream: %w", err)}
			return
		}
		// Stream ended without the [DONE] sentinel; surface what we have.
		for _, ev := range state.flushToolCalls() {
			events <- ev
		}
		events <- state.done()
	}()

	return events, nil
}

type streamState struct {
	tools        map[int]*toolCallState
	finishReason FinishReason
	usage        *Usage
}

type toolCallState struct {
	id        string
	name      string
	arguments strings.Builder
}

func newStreamState() *streamState {
	return &streamState{tools: make(map[int]*toolCallState)}
}

// Wire model for a streamed chunk: choices carry deltas instead of messages.
type chatChunk struct {
	Choices []chunkChoice `json:"choices"`
	Usage   *Usage        `json:"usage"`
}

type chunkChoice struct {
	Index        int        `json:"index"`
	Delta        chunkDelta `json:"delta"`
	FinishReason string     `json:"finish_reason"`
}

type chunkDelta struct {
	Content   string          `json:"content"`
	ToolCalls []chunkToolCall `json:"tool_calls"`
}

type chunkToolCall struct {
	Index    int    `json:"index"`
	ID       string `json:"id"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

func (s *streamState) handle(data string) ([]StreamEvent, error) {
	var chunk chatChunk
	if err := json.Unmarshal([]byte(data), &chunk); err != nil {
		return nil, fmt.Errorf("chat stream: invalid chunk: %w", err)
	}
	if chunk.Usage != nil {
		s.usage = chunk.Usage
	}

	var out []StreamEvent
	for _, choice := range chunk.Choices {
		if choice.Delta.Content != "" {
			out = append(out, TextDeltaEvent{Delta: choice.Delta.Content})
		}
		for _, fragment := range choice.Delta.ToolCalls {
			state := s.tools[fragment.Index]
			if state == nil {
				state = &toolCallState{}
				s.tools[fragment.Index] = state
			}
			if fragment.ID != "" {
				state.id = fragment.ID
			}
			if fragment.Function.Name != "" {
				state.name = fragment.Function.Name
			}
			state.arguments.WriteString(fragment.Function.Arguments)
		}
		if choice.FinishReason != "" {
			s.finishReason = FinishReason(choice.FinishReason)
		}
	}
	return out, nil
}

// flushToolCalls emits accumulated tool calls in index order.
func (s *streamState) flushToolCalls() []StreamEvent {
	if len(s.tools) == 0 {
		return nil
	}
	indexes := make([]int, 0, len(s.tools))
	for idx := range s.tools {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	out := make([]StreamEvent, 0, len(indexes))
	for _, idx := range indexes {
		state := s.tools[idx]
		out = append(out, ToolCallEvent{Call: ToolCall{
			ID:   state.id,
			Type: "function",
			Function: FunctionCall{
				Name:      state.name,
				Arguments: state.arguments.String(),
			},
		}})
	}
	s.tools = make(map[int]*toolCallState)
	return out
}

func (s *streamState) done() DoneEvent {
	reason := s.finishReason
	if reason == "" {
		reason = FinishStop
	}
	return DoneEvent{FinishReason: reason, Usage: s.usage}
}

// ChatResult is a streamed completion folded back into a single value.
type ChatResult struct {
	Content      string
	ToolCalls    []ToolCall
	FinishReason FinishReason
	Usage        *Usage
}

// CollectChatCompletion drains a stream into a ChatResult. It returns an
// error if an ErrorEvent arrives or the channel closes without DoneEvent.
func CollectChatCompletion(events <-chan StreamEvent) (ChatResult, error) {
	if events == nil {
		return ChatResult{}, errors.New("chat stream: nil events channel")
	}

	var (
		content strings.Builder
		calls   []ToolCall
	)
	for ev := range events {
		switch e := ev.(type) {
		case TextDeltaEvent:
			content.WriteString(e.Delta)
		case ToolCallEvent:
			calls = append(calls, e.Call)
		case DoneEvent:
			return ChatResult{
				Content:      strings.TrimSpace(content.String()),
				ToolCalls:    calls,
				FinishReason: e.FinishReason,
				Usage:        e.Usage,
			}, nil
		case ErrorEvent:
			if e.Err == nil {
				return ChatResult{}, errors.New("chat stream failed")
			}
			return ChatResult{}, e.Err
		}
	}
	return ChatResult{}, errors.New("chat stream ended without done event")
}
