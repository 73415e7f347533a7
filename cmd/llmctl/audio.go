package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"llmkit/llm"
)

func newSpeakCmd(c *cli) *cobra.Command {
	var (
		model  string
		voice  string
		format string
		speed  float64
		out    string
	)

	cmd := &cobra.Command{
		Use:   "speak <text>",
		Short: "Synthesize speech from text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := llm.SpeechRequest{
				Model:          model,
				Input:          strings.Join(args, " "),
				Voice:          voice,
				ResponseFormat: format,
			}
			if cmd.Flags().Changed("speed") {
				req.Speed = &speed
			}

			audio, err := c.client.Speech(cmd.Context(), req)
			if err != nil {
				return err
			}
			c.logger.Debug("speech synthesized", zap.Int("bytes", len(audio)))

			if err := os.WriteFile(out, audio, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "wrote %d bytes to %s\n", len(audio), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&model, "model", llm.ModelTTS1, "speech model to use")
	cmd.Flags().StringVar(&voice, "voice", llm.VoiceNova, "voice: alloy, echo, fable, onyx, nova, shimmer")
	cmd.Flags().StringVar(&format, "format", llm.SpeechFormatMP3, "audio format: mp3, opus, aac, flac")
	cmd.Flags().Float64Var(&speed, "speed", 1.0, "speech speed, 0.25 to 4.0")
	cmd.Flags().StringVar(&out, "out", "speech.mp3", "output file")
	return cmd
}

func newTranscribeCmd(c *cli) *cobra.Command {
	var (
		model    string
		language string
		prompt   string
		format   string
	)

	cmd := &cobra.Command{
		Use:   "transcribe <file>",
		Short: "Transcribe an audio file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := audioRequest(args[0], model, prompt, format)
			if err != nil {
				return err
			}
			req.Language = language

			resp, err := c.client.Transcribe(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, resp.Text)
			return nil
		},
	}

	cmd.Flags().StringVar(&model, "model", llm.ModelWhisper1, "transcription model to use")
	cmd.Flags().StringVar(&language, "language", "", "input language, ISO-639-1")
	cmd.Flags().StringVar(&prompt, "prompt", "", "optional prompt to guide the transcript")
	cmd.Flags().StringVar(&format, "format", llm.AudioFormatJSON, "output format: json, text, srt, verbose_json, vtt")
	return cmd
}

func newTranslateCmd(c *cli) *cobra.Command {
	var (
		model  string
		prompt string
		format string
	)

	cmd := &cobra.Command{
		Use:   "translate <file>",
		Short: "Translate an audio file to English",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := audioRequest(args[0], model, prompt, format)
			if err != nil {
				return err
			}

			resp, err := c.client.Translate(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, resp.Text)
			return nil
		},
	}

	cmd.Flags().StringVar(&model, "model", llm.ModelWhisper1, "translation model to use")
	cmd.Flags().StringVar(&prompt, "prompt", "", "optional prompt to guide the transcript")
	cmd.Flags().StringVar(&format, "format", llm.AudioFormatJSON, "output format: json, text, srt, verbose_json, vtt")
	return cmd
}

func audioRequest(path, model, prompt, format string) (llm.AudioRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return llm.AudioRequest{}, err
	}
	return llm.AudioRequest{
		File:           data,
		FileName:       filepath.Base(path),
		Model:          model,
		Prompt:         prompt,
		ResponseFormat: format,
	}, nil
}
