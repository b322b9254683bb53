package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const maxConfigFileSize = 1024 * 1024 // 1MB

// Load loads configuration from an optional YAML file, then overrides
// with environment variables, then backfills defaults.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (SERVER_HTTP_PORT, EMBEDDINGS_MODEL, etc.)
//  2. YAML config file (configPath, skipped when empty or missing)
//  3. Hardcoded defaults
//
// Environment variables split on the first underscore into section and
// field name:
//
//	SERVER_HTTP_PORT   -> server.http_port
//	EMBEDDINGS_MODEL   -> embeddings.model
//	INTENT_CACHE_SIZE  -> intent.cache_size
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			f, err := os.Open(configPath)
			if err != nil {
				return nil, fmt.Errorf("failed to open config file: %w", err)
			}
			defer f.Close()

			info, err := f.Stat()
			if err != nil {
				return nil, fmt.Errorf("failed to stat config file: %w", err)
			}
			if info.Size() > maxConfigFileSize {
				return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
			}

			content, err := io.ReadAll(f)
			if err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}

			// rawbytes avoids re-opening the file after the size check
			if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
			}
		}
	}

	if err := k.Load(env.Provider("", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// knownSections limits which environment variables map into config keys,
// so unrelated variables like PATH and HOME do not leak in.
var knownSections = map[string]bool{
	"server":     true,
	"logging":    true,
	"embeddings": true,
	"intent":     true,
	"explain":    true,
	"retrieval":  true,
	"ingest":     true,
}

// envTransform maps SECTION_FIELD_NAME to section.field_name. The split is
// on the first underscore only; underscores in the field name survive.
func envTransform(s string) string {
	lower := strings.ToLower(s)
	parts := strings.SplitN(lower, "_", 2)
	if len(parts) != 2 || !knownSections[parts[0]] {
		return ""
	}
	return parts[0] + "." + parts[1]
}
