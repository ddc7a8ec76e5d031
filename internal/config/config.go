// Package config loads clinicdesk settings from CLINICDESK_* environment
// variables. Command-line flags override these values.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Backend kinds.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config holds runtime settings.
type Config struct {
	Backend     string `env:"CLINICDESK_BACKEND"      envDefault:"sqlite"`
	DBPath      string `env:"CLINICDESK_DB"           envDefault:"clinicdesk.db"`
	PostgresDSN string `env:"CLINICDESK_POSTGRES_DSN"`
	LogLevel    string `env:"CLINICDESK_LOG_LEVEL"    envDefault:"warn"`
	MetricsFile string `env:"CLINICDESK_METRICS_FILE"`
}

// Load parses the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate checks that the selected backend has what it needs.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("sqlite backend requires a database path")
		}
	case BackendPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("postgres backend requires CLINICDESK_POSTGRES_DSN or --dsn")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown backend %q: must be one of sqlite, postgres, memory", c.Backend)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel parses LogLevel.
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}
