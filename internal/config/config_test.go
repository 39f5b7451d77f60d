package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	inTempDir(t)
	t.Setenv("ANTHROPIC_API_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "data/results.json", cfg.Corpus.Source)
	assert.Equal(t, "anthropic", cfg.Narration.Provider)
	assert.Equal(t, 300, cfg.Narration.MaxTokens)
	assert.Equal(t, 30*time.Second, cfg.Narration.Timeout)
	assert.Equal(t, time.Hour, cfg.Narration.CacheTTL)
	assert.Equal(t, 20, cfg.Session.Limit)
	assert.Equal(t, time.Hour, cfg.Session.Window)
	assert.Empty(t, cfg.Database.URL)
	assert.Empty(t, cfg.Redis.URL)
	assert.False(t, cfg.NarrationEnabled())
}

func TestLoad_EnvOverrides(t *testing.T) {
	inTempDir(t)
	t.Setenv("NARRATION_PROVIDER", "OpenAI")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("SESSION_LIMIT", "5")
	t.Setenv("SESSION_WINDOW", "10m")
	t.Setenv("CORPUS_SOURCE", "https://example.org/results.json")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.Narration.Provider)
	assert.Equal(t, "sk-test", cfg.Narration.APIKey)
	assert.True(t, cfg.NarrationEnabled())
	assert.Equal(t, 5, cfg.Session.Limit)
	assert.Equal(t, 10*time.Minute, cfg.Session.Window)
	assert.Equal(t, "https://example.org/results.json", cfg.Corpus.Source)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := inTempDir(t)
	yaml := "server:\n  port: \"9090\"\nsession:\n  limit: 3\ndatabase:\n  driver: sqlite\n  url: file:explorer.db\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 3, cfg.Session.Limit)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "file:explorer.db", cfg.Database.URL)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unknown provider", "NARRATION_PROVIDER", "gemini"},
		{"zero limit", "SESSION_LIMIT", "0"},
		{"negative window", "SESSION_WINDOW", "-1m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inTempDir(t)
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
