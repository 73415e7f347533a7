package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"llmkit/llm"
)

func newEmbedCmd(c *cli) *cobra.Command {
	var (
		model  string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "embed <text> [text...]",
		Short: "Create embeddings for one or more texts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if model == "" {
				model = c.cfg.EmbeddingModel
			}

			var input llm.EmbeddingInput
			if len(args) == 1 {
				input = llm.EmbedText(args[0])
			} else {
				input = llm.EmbedTexts(args)
			}
			req := llm.EmbeddingRequest{Model: model, Input: input}

			resp, err := c.client.CreateEmbedding(cmd.Context(), req)
			if err != nil {
				return err
			}
			c.logger.Debug("embeddings created",
				zap.Int("count", len(resp.Data)),
				zap.Int("prompt_tokens", resp.Usage.PromptTokens))

			if asJSON {
				enc := json.NewEncoder(c.out)
				return enc.Encode(resp.Data)
			}
			for _, emb := range resp.Data {
				fmt.Fprintf(c.out, "[%d] %d dimensions\n", emb.Index, len(emb.Embedding))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&model, "model", "", "embedding model to use (default from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw embedding vectors as JSON")
	return cmd
}
