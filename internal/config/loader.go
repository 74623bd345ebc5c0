package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment keys.
const (
	envPrefix     = "BRC_"
	envConfigFile = "BRC_CONFIG"
)

// Load builds a Config by layering defaults, the YAML file named by
// BRC_CONFIG (if any) and BRC_* environment variables.
func Load(ctx context.Context) (*Config, error) {
	return LoadFile(ctx, os.Getenv(envConfigFile))
}

// LoadFile is Load with an explicit YAML path. An empty path skips the file.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML)
//  3. env (prefix BRC_)
func LoadFile(_ context.Context, path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// BRC_CHUNK_SIZE -> chunk_size; underscores are kept to match koanf tags.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := New()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
