//go:build mage

// Build tasks. Run `mage -l` to list them.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/joho/godotenv"
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"

	"llmkit/llm"
)

var Default = Test

// Chat sends a single diagnostic chat completion to verify credentials and
// connectivity. It requires OPENAI_API_KEY in the environment or a .env file;
// the key itself is never printed.
func Chat(ctx context.Context) error {
	_ = godotenv.Load()
	if os.Getenv("OPENAI_API_KEY") == "" {
		return errors.New("OPENAI_API_KEY is not set; export it or add it to .env")
	}

	client, err := llm.NewFromEnv()
	if err != nil {
		return err
	}

	req := llm.ChatRequest{
		Model: llm.ModelGPT3Dot5Turbo,
		Messages: []llm.Message{
			llm.UserMessage("Reply with the single word: pong", ""),
		},
	}
	resp, err := client.ChatCompletion(ctx, req)
	if err != nil {
		return err
	}
	if len(resp.Choices) == 0 {
		return errors.New("response contained no choices")
	}

	fmt.Printf("model: %s\n", resp.Model)
	fmt.Printf("reply: %s\n", strings.TrimSpace(resp.Choices[0].Message.Content))
	fmt.Printf("usage: %d prompt + %d completion = %d tokens\n",
		resp.Usage.PromptTokens, resp.Usage.CompletionTokens, resp.Usage.TotalTokens)
	return nil
}

// Test runs the full test suite.
func Test() error {
	return sh.RunV("go", "test", "-v", "./...")
}

// Lint checks formatting and vets the module. golangci-lint runs too when it
// is on PATH.
func Lint() error {
	out, err := sh.Output("gofmt", "-l", ".")
	if err != nil {
		return err
	}
	if out != "" {
		return fmt.Errorf("gofmt: files need formatting:\n%s", out)
	}
	if err := sh.RunV("go", "vet", "./..."); err != nil {
		return err
	}
	if _, err := exec.LookPath("golangci-lint"); err == nil {
		return sh.RunV("golangci-lint", "run", "./...")
	}
	return nil
}

// All runs Lint then Test.
func All(ctx context.Context) {
	mg.CtxDeps(ctx, Lint, Test)
}
