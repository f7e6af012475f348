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

// Environment variable names.
const (
	EnvPrefix = "CARBON_"
	EnvConfig = "CARBON_CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if CARBON_CONFIG is set
//  3. env (prefix CARBON_)
func Load(_ context.Context) (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv(EnvConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// Map env keys like CARBON_DB_DSN -> db_dsn (flat keys) and
	// CARBON_FACTORS_MACOS -> factors.macos. CARBON_CONFIG itself is not a
	// config field.
	envProvider := env.Provider(EnvPrefix, ".", envKey)
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

// envFactorsPrefix selects per-platform entries of the factors map.
const envFactorsPrefix = "factors_"

func envKey(s string) string {
	if s == EnvConfig {
		return ""
	}
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	if platform, ok := strings.CutPrefix(key, envFactorsPrefix); ok && platform != "" {
		return "factors." + platform
	}
	return key
}

// Validate checks the values that every binary relies on.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.DashboardAddr) == "":
		return fmt.Errorf("%w: dashboard_addr must not be empty", ErrInvalidConfig)
	case c.DBDriver != DriverSQLite && c.DBDriver != DriverPostgres:
		return fmt.Errorf("%w: unsupported db_driver %q", ErrInvalidConfig, c.DBDriver)
	case c.RefreshInterval <= 0:
		return fmt.Errorf("%w: refresh_interval must be positive", ErrInvalidConfig)
	case c.DBMaxOpenConns < 0:
		return fmt.Errorf("%w: db_max_open_conns must not be negative", ErrInvalidConfig)
	case c.DefaultFactor < 0:
		return fmt.Errorf("%w: default_factor must not be negative", ErrInvalidConfig)
	}
	for platform, f := range c.Factors {
		if f < 0 {
			return fmt.Errorf("%w: factor for %q must not be negative", ErrInvalidConfig, platform)
		}
	}
	return nil
}
