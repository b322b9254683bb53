// Package config provides configuration loading for the EDI assistant.
//
// Configuration is loaded from a YAML file, then overridden by environment
// variables, then backfilled with defaults.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds the complete service configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Logging    LoggingConfig    `koanf:"logging"`
	Embeddings EmbeddingsConfig `koanf:"embeddings"`
	Intent     IntentConfig     `koanf:"intent"`
	Explain    ExplainConfig    `koanf:"explain"`
	Retrieval  RetrievalConfig  `koanf:"retrieval"`
	Ingest     IngestConfig     `koanf:"ingest"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            int           `koanf:"http_port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// LoggingConfig holds logger configuration.
type LoggingConfig struct {
	Level  string `koanf:"level"`  // debug, info, warn, error
	Format string `koanf:"format"` // json or console
}

// EmbeddingsConfig holds embedding provider configuration.
type EmbeddingsConfig struct {
	Provider string `koanf:"provider"` // "fastembed" or "tei"
	Model    string `koanf:"model"`
	BaseURL  string `koanf:"base_url"`  // TEI only
	CacheDir string `koanf:"cache_dir"` // FastEmbed only
}

// IntentConfig holds intent classifier configuration.
type IntentConfig struct {
	Threshold float64 `koanf:"threshold"`
	CacheSize int     `koanf:"cache_size"`
}

// ExplainConfig holds the optional Ollama answer-rewrite configuration.
type ExplainConfig struct {
	Enabled   bool          `koanf:"enabled"`
	ServerURL string        `koanf:"server_url"`
	Model     string        `koanf:"model"`
	Timeout   time.Duration `koanf:"timeout"`
}

// RetrievalConfig holds semantic row-search configuration.
type RetrievalConfig struct {
	TopK int `koanf:"top_k"`
}

// IngestConfig holds CSV upload limits.
type IngestConfig struct {
	MaxUploadSizeMB int `koanf:"max_upload_size_mb"`
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.http_port out of range: %d", c.Server.Port))
	}
	if c.Server.ShutdownTimeout < 0 {
		errs = append(errs, errors.New("server.shutdown_timeout cannot be negative"))
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level invalid: %q", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging.format invalid: %q", c.Logging.Format))
	}

	switch c.Embeddings.Provider {
	case "fastembed", "tei":
	default:
		errs = append(errs, fmt.Errorf("embeddings.provider invalid: %q", c.Embeddings.Provider))
	}
	if c.Embeddings.Provider == "tei" && c.Embeddings.BaseURL == "" {
		errs = append(errs, errors.New("embeddings.base_url required for tei provider"))
	}

	if c.Intent.Threshold < 0 || c.Intent.Threshold > 1 {
		errs = append(errs, fmt.Errorf("intent.threshold must be in [0,1]: %g", c.Intent.Threshold))
	}
	if c.Intent.CacheSize < 1 {
		errs = append(errs, fmt.Errorf("intent.cache_size must be positive: %d", c.Intent.CacheSize))
	}

	if c.Explain.Enabled && c.Explain.ServerURL == "" {
		errs = append(errs, errors.New("explain.server_url required when explain is enabled"))
	}
	if c.Explain.Timeout < 0 {
		errs = append(errs, errors.New("explain.timeout cannot be negative"))
	}

	if c.Retrieval.TopK < 1 {
		errs = append(errs, fmt.Errorf("retrieval.top_k must be positive: %d", c.Retrieval.TopK))
	}
	if c.Ingest.MaxUploadSizeMB < 1 {
		errs = append(errs, fmt.Errorf("ingest.max_upload_size_mb must be positive: %d", c.Ingest.MaxUploadSizeMB))
	}

	return errors.Join(errs...)
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Embeddings.Provider == "" {
		cfg.Embeddings.Provider = "fastembed"
	}
	if cfg.Embeddings.Model == "" {
		cfg.Embeddings.Model = "sentence-transformers/all-MiniLM-L6-v2"
	}
	if cfg.Embeddings.Provider == "tei" && cfg.Embeddings.BaseURL == "" {
		cfg.Embeddings.BaseURL = "http://localhost:8080"
	}

	if cfg.Intent.Threshold == 0 {
		cfg.Intent.Threshold = 0.75
	}
	if cfg.Intent.CacheSize == 0 {
		cfg.Intent.CacheSize = 500
	}

	if cfg.Explain.ServerURL == "" {
		cfg.Explain.ServerURL = "http://localhost:11434"
	}
	if cfg.Explain.Model == "" {
		cfg.Explain.Model = "mistral"
	}
	if cfg.Explain.Timeout == 0 {
		cfg.Explain.Timeout = 30 * time.Second
	}

	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 5
	}
	if cfg.Ingest.MaxUploadSizeMB == 0 {
		cfg.Ingest.MaxUploadSizeMB = 10
	}
}
