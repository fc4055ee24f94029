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

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if TRIBAL_CONFIG is set
//  3. env (prefix TRIBAL_)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv("TRIBAL_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: TRIBAL_ADDR, TRIBAL_DATABASE_DSN, ...
	// Map env keys like TRIBAL_DATABASE_DSN -> database_dsn (flat keys).
	// Underscores are preserved to match koanf tags on the struct.
	envProvider := env.Provider("TRIBAL_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "tribal_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	switch {
	case cfg.Addr == "":
		return nil, fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case cfg.DatabaseDSN == "":
		return nil, fmt.Errorf("%w: database_dsn must not be empty", ErrInvalidConfig)
	case cfg.MaxLeaderboardLimit < 1:
		return nil, fmt.Errorf("%w: max_leaderboard_limit must be positive", ErrInvalidConfig)
	case cfg.SuggestionTimeoutSeconds < 1:
		return nil, fmt.Errorf("%w: suggestion_timeout_seconds must be positive", ErrInvalidConfig)
	}
	return &cfg, nil
}
