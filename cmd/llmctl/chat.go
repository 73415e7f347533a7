package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"llmkit/llm"
)

func newChatCmd(c *cli) *cobra.Command {
	var (
		model       string
		system      string
		stream      bool
		jsonMode    bool
		temperature float64
		maxTokens   int
	)

	cmd := &cobra.Command{
		Use:   "chat <prompt>",
		Short: "Send a chat completion request",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := strings.Join(args, " ")

			if model == "" {
				model = c.cfg.Model
			}
			var messages []llm.Message
			if system != "" {
				messages = append(messages, llm.SystemMessage(system, ""))
			}
			messages = append(messages, llm.UserMessage(prompt, ""))

			req := llm.ChatRequest{
				Model:    model,
				Messages: messages,
			}
			if cmd.Flags().Changed("temperature") {
				req.Temperature = &temperature
			}
			if maxTokens > 0 {
				req.MaxTokens = maxTokens
			}
			if jsonMode {
				req.ResponseFormat = llm.ResponseFormatJSON
			}

			ctx := cmd.Context()
			if stream {
				return c.streamChat(ctx, req)
			}

			resp, err := c.client.ChatCompletion(ctx, req)
			if err != nil {
				return err
			}
			if len(resp.Choices) == 0 {
				return errors.New("response contained no choices")
			}
			choice := resp.Choices[0]
			fmt.Fprintln(c.out, choice.Message.Content)
			c.logger.Debug("chat completed",
				zap.String("finish_reason", string(choice.FinishReason)),
				zap.Int("prompt_tokens", resp.Usage.PromptTokens),
				zap.Int("completion_tokens", resp.Usage.CompletionTokens))
			return nil
		},
	}

	cmd.Flags().StringVar(&model, "model", "", "model to use (default from config)")
	cmd.Flags().StringVar(&system, "system", "", "system prompt")
	cmd.Flags().BoolVar(&stream, "stream", false, "stream tokens as they arrive")
	cmd.Flags().BoolVar(&jsonMode, "json", false, "request a JSON object response")
	cmd.Flags().Float64Var(&temperature, "temperature", 0, "sampling temperature")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", 0, "maximum tokens to generate")
	return cmd
}

func (c *cli) streamChat(ctx context.Context, req llm.ChatRequest) error {
	events, err := c.client.ChatCompletionStream(ctx, req)
	if err != nil {
		return err
	}
	for ev := range events {
		switch e := ev.(type) {
		case llm.TextDeltaEvent:
			fmt.Fprint(c.out, e.Delta)
		case llm.DoneEvent:
			fmt.Fprintln(c.out)
			if e.Usage != nil {
				c.logger.Debug("stream completed",
					zap.String("finish_reason", string(e.FinishReason)),
					zap.Int("total_tokens", e.Usage.TotalTokens))
			}
		case llm.ErrorEvent:
			return e.Err
		}
	}
	return nil
}
