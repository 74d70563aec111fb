// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// SeedFile is read when SeedURL is empty.
	SeedFile        string        `env:"ESTIMATE_SEED_FILE" envDefault:"./data/db.json"`
	SeedURL         string        `env:"ESTIMATE_SEED_URL"`
	FetchTimeout    time.Duration `env:"ESTIMATE_FETCH_TIMEOUT" envDefault:"10s"`
	FetchMaxElapsed time.Duration `env:"ESTIMATE_FETCH_MAX_ELAPSED" envDefault:"1m"`
	UndoDepth       int           `env:"ESTIMATE_UNDO_DEPTH" envDefault:"50"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogDevelopment  bool          `env:"LOG_DEVELOPMENT" envDefault:"false"`
}

// Load parses the environment into a Config and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values the env tags cannot express.
func (c *Config) Validate() error {
	if c.SeedFile == "" && c.SeedURL == "" {
		return fmt.Errorf("one of ESTIMATE_SEED_FILE or ESTIMATE_SEED_URL is required")
	}
	if c.UndoDepth < 0 {
		return fmt.Errorf("ESTIMATE_UNDO_DEPTH must not be negative, got %d", c.UndoDepth)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("ESTIMATE_FETCH_TIMEOUT must be positive, got %s", c.FetchTimeout)
	}
	return nil
}
