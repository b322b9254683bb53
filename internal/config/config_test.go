package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "fastembed", cfg.Embeddings.Provider)
	assert.Equal(t, "sentence-transformers/all-MiniLM-L6-v2", cfg.Embeddings.Model)
	assert.Equal(t, 0.75, cfg.Intent.Threshold)
	assert.Equal(t, 500, cfg.Intent.CacheSize)
	assert.False(t, cfg.Explain.Enabled)
	assert.Equal(t, "http://localhost:11434", cfg.Explain.ServerURL)
	assert.Equal(t, "mistral", cfg.Explain.Model)
	assert.Equal(t, 5, cfg.Retrieval.TopK)
	assert.Equal(t, 10, cfg.Ingest.MaxUploadSizeMB)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  http_port: 9000
  shutdown_timeout: 5s
logging:
  level: debug
  format: console
embeddings:
  provider: tei
  base_url: http://tei:8080
intent:
  threshold: 0.6
  cache_size: 100
explain:
  enabled: true
  model: llama3
retrieval:
  top_k: 10
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, "tei", cfg.Embeddings.Provider)
	assert.Equal(t, "http://tei:8080", cfg.Embeddings.BaseURL)
	assert.Equal(t, 0.6, cfg.Intent.Threshold)
	assert.Equal(t, 100, cfg.Intent.CacheSize)
	assert.True(t, cfg.Explain.Enabled)
	assert.Equal(t, "llama3", cfg.Explain.Model)
	assert.Equal(t, 10, cfg.Retrieval.TopK)
}

func TestEnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  http_port: 9000\n"), 0600))

	t.Setenv("SERVER_HTTP_PORT", "9100")
	t.Setenv("INTENT_CACHE_SIZE", "42")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, 42, cfg.Intent.CacheSize)
}

func TestMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8000, cfg.Server.Port)
}

func TestValidationRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *Config)
		want   string
	}{
		{
			name:   "port out of range",
			mutate: func(cfg *Config) { cfg.Server.Port = 70000 },
			want:   "http_port",
		},
		{
			name:   "bad log level",
			mutate: func(cfg *Config) { cfg.Logging.Level = "verbose" },
			want:   "logging.level",
		},
		{
			name:   "bad provider",
			mutate: func(cfg *Config) { cfg.Embeddings.Provider = "openai" },
			want:   "embeddings.provider",
		},
		{
			name:   "threshold above one",
			mutate: func(cfg *Config) { cfg.Intent.Threshold = 1.5 },
			want:   "intent.threshold",
		},
		{
			name:   "negative cache size",
			mutate: func(cfg *Config) { cfg.Intent.CacheSize = -1 },
			want:   "intent.cache_size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			require.NoError(t, err)
			tt.mutate(cfg)
			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestEnvTransform(t *testing.T) {
	assert.Equal(t, "server.http_port", envTransform("SERVER_HTTP_PORT"))
	assert.Equal(t, "intent.cache_size", envTransform("INTENT_CACHE_SIZE"))
	assert.Equal(t, "", envTransform("PATH"))
	assert.Equal(t, "", envTransform("HOME"))
	assert.Equal(t, "", envTransform("XDG_CONFIG_HOME"))
}
