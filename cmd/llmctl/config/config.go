// Package config loads llmctl settings from an optional YAML file and the
// environment. A .env file in the working directory is honored when present.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"llmkit/llm"
)

// Config controls the llmctl runtime.
type Config struct {
	APIKey         string `mapstructure:"api_key"`
	BaseURL        string `mapstructure:"base_url"`
	Model          string `mapstructure:"model"`
	EmbeddingModel string `mapstructure:"embedding_model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	MaxRetries     int    `mapstructure:"max_retries"`
}

// Load reads configuration. Precedence, lowest to highest: defaults, config
// file (explicit path or llmctl.yaml in the working directory or
// ~/.config/llmctl), environment (LLMKIT_* with OPENAI_API_KEY and
// OPENAI_API_BASE as aliases).
func Load(path string) (Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}

	v := viper.New()
	v.SetDefault("base_url", llm.DefaultBaseURL)
	v.SetDefault("model", llm.ModelGPT3Dot5Turbo)
	v.SetDefault("embedding_model", llm.ModelTextEmbeddingAda002)
	v.SetDefault("timeout_seconds", 30)
	v.SetDefault("max_retries", 2)

	v.SetEnvPrefix("LLMKIT")
	v.AutomaticEnv()
	_ = v.BindEnv("api_key", "LLMKIT_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("base_url", "LLMKIT_BASE_URL", "OPENAI_API_BASE")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: %w", err)
		}
	} else {
		v.SetConfigName("llmctl")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "llmctl"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if cfg.TimeoutSeconds <= 0 {
		return Config{}, errors.New("config: timeout_seconds must be greater than 0")
	}
	if cfg.MaxRetries < 0 {
		return Config{}, errors.New("config: max_retries must be zero or greater")
	}
	return cfg, nil
}
