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
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if TRAINSYNC_CONFIG is set
//  3. env (prefix TRAINSYNC_)
func Load(_ context.Context) (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("TRAINSYNC_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: TRAINSYNC_LEDGER_PATH, TRAINSYNC_WINDOW_DAYS, ...
	// Map env keys like TRAINSYNC_WINDOW_DAYS -> window_days (flat keys).
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("TRAINSYNC_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "trainsync_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.LedgerPath == "" {
		return fmt.Errorf("%w: ledger_path must not be empty", ErrInvalidConfig)
	}
	if cfg.TelemetryPath == "" {
		return fmt.Errorf("%w: telemetry_path must not be empty", ErrInvalidConfig)
	}
	switch cfg.TelemetryFormat {
	case FormatJSON, FormatFIT:
	default:
		return fmt.Errorf("%w: telemetry_format must be %q or %q", ErrInvalidConfig, FormatJSON, FormatFIT)
	}
	if cfg.WindowDays <= 0 {
		return fmt.Errorf("%w: window_days must be positive", ErrInvalidConfig)
	}
	if cfg.ClusterGapMinutes <= 0 {
		return fmt.Errorf("%w: cluster_gap_minutes must be positive", ErrInvalidConfig)
	}
	return nil
}
