package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llmkit/llm"
)

func TestLoadDefaults(t *testing.T) {
	chtmp(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, llm.DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, llm.ModelGPT3Dot5Turbo, cfg.Model)
	assert.Equal(t, llm.ModelTextEmbeddingAda002, cfg.EmbeddingModel)
	assert.Equal(t, 30, cfg.TimeoutSeconds)
	assert.Equal(t, 2, cfg.MaxRetries)
	assert.Empty(t, cfg.APIKey)
}

func TestLoadEnvOverrides(t *testing.T) {
	chtmp(t)
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("OPENAI_API_BASE", "http://localhost:9000/v1")
	t.Setenv("LLMKIT_MODEL", "gpt-4")
	t.Setenv("LLMKIT_TIMEOUT_SECONDS", "5")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "sk-env", cfg.APIKey)
	assert.Equal(t, "http://localhost:9000/v1", cfg.BaseURL)
	assert.Equal(t, "gpt-4", cfg.Model)
	assert.Equal(t, 5, cfg.TimeoutSeconds)
}

func TestLoadConfigFile(t *testing.T) {
	dir := chtmp(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model: gpt-4-turbo\nmax_retries: 5\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "gpt-4-turbo", cfg.Model)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, llm.DefaultBaseURL, cfg.BaseURL)
}

func TestLoadEnvBeatsFile(t *testing.T) {
	dir := chtmp(t)
	path := filepath.Join(dir, "llmctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model: from-file\n"), 0o644))
	t.Setenv("LLMKIT_MODEL", "from-env")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Model)
}

func TestLoadDotEnv(t *testing.T) {
	dir := chtmp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("OPENAI_API_KEY=sk-dotenv\n"), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sk-dotenv", cfg.APIKey)
}

func TestLoadRejectsBadValues(t *testing.T) {
	chtmp(t)

	t.Setenv("LLMKIT_TIMEOUT_SECONDS", "0")
	_, err := Load("")
	assert.ErrorContains(t, err, "timeout_seconds")

	t.Setenv("LLMKIT_TIMEOUT_SECONDS", "30")
	t.Setenv("LLMKIT_MAX_RETRIES", "-1")
	_, err = Load("")
	assert.ErrorContains(t, err, "max_retries")
}

func TestLoadMissingExplicitFile(t *testing.T) {
	chtmp(t)

	_, err := Load("does-not-exist.yaml")
	assert.Error(t, err)
}

// chtmp runs the test in a fresh directory so stray llmctl.yaml or .env
// files cannot leak in, and clears the env aliases Load reads.
func chtmp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	for _, key := range []string{
		"OPENAI_API_KEY", "OPENAI_API_BASE",
		"LLMKIT_API_KEY", "LLMKIT_BASE_URL", "LLMKIT_MODEL",
		"LLMKIT_EMBEDDING_MODEL", "LLMKIT_TIMEOUT_SECONDS", "LLMKIT_MAX_RETRIES",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	return dir
}
