package main

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"llmkit/llm"
)

func newImageCmd(c *cli) *cobra.Command {
	var (
		model   string
		size    string
		quality string
		style   string
		out     string
	)

	cmd := &cobra.Command{
		Use:   "image <prompt>",
		Short: "Generate an image from a prompt",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := llm.ImageRequest{
				Prompt:  strings.Join(args, " "),
				Model:   model,
				Size:    size,
				Quality: quality,
				Style:   style,
			}
			if out != "" {
				req.ResponseFormat = llm.ImageFormatB64JSON
			}

			resp, err := c.client.CreateImage(cmd.Context(), req)
			if err != nil {
				return err
			}
			if len(resp.Data) == 0 {
				return errors.New("response contained no images")
			}
			img := resp.Data[0]
			if img.RevisedPrompt != "" {
				c.logger.Debug("prompt revised", zap.String("revised_prompt", img.RevisedPrompt))
			}

			if out == "" {
				fmt.Fprintln(c.out, img.URL)
				return nil
			}
			data, err := base64.StdEncoding.DecodeString(img.B64JSON)
			if err != nil {
				return fmt.Errorf("decode image payload: %w", err)
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "wrote %d bytes to %s\n", len(data), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&model, "model", llm.ModelDallE3, "image model to use")
	cmd.Flags().StringVar(&size, "size", "", "image size, e.g. 1024x1024, 1792x1024, 1024x1792")
	cmd.Flags().StringVar(&quality, "quality", "", "image quality: standard or hd")
	cmd.Flags().StringVar(&style, "style", "", "image style: vivid or natural")
	cmd.Flags().StringVar(&out, "out", "", "write the image to this file instead of printing a URL")
	return cmd
}
