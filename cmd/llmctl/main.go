// llmctl is a command-line client for OpenAI-compatible APIs: chat
// completions, embeddings, image generation, speech synthesis, and audio
// transcription.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"llmkit/cmd/llmctl/config"
	"llmkit/llm"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "llmctl:", err)
		os.Exit(1)
	}
}

// cli carries the state shared by every subcommand. The client and logger
// are populated by the root command's PersistentPreRunE.
type cli struct {
	cfg    config.Config
	client *llm.Client
	logger *zap.Logger
	out    io.Writer
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		debug      bool
	)
	c := &cli{out: os.Stdout}

	root := &cobra.Command{
		Use:           "llmctl",
		Short:         "Command-line client for OpenAI-compatible APIs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c.out = cmd.OutOrStdout()
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger := zap.NewNop()
			if debug {
				logger, err = zap.NewDevelopment()
				if err != nil {
					return err
				}
			}
			c.cfg = cfg
			c.logger = logger
			c.client = llm.New(llm.Config{
				APIKey:     cfg.APIKey,
				BaseURL:    cfg.BaseURL,
				Timeout:    time.Duration(cfg.TimeoutSeconds) * time.Second,
				MaxRetries: &cfg.MaxRetries,
				Logger:     logger,
			})
			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a config file (default: llmctl.yaml if present)")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newChatCmd(c),
		newEmbedCmd(c),
		newImageCmd(c),
		newSpeakCmd(c),
		newTranscribeCmd(c),
		newTranslateCmd(c),
	)
	return root
}
