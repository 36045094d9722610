package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// General
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	ListenAddr  string `envconfig:"LISTEN_ADDR" default:":8000"`

	// Taiga backend (required)
	TaigaBaseURL  string `envconfig:"TAIGA_BASE_URL"`
	TaigaUsername string `envconfig:"TAIGA_USERNAME"`
	TaigaPassword string `envconfig:"TAIGA_PASSWORD"`

	// HTTP action surface (optional — action routes answer 503 until set)
	ActionAPIKey string `envconfig:"ACTION_PROXY_API_KEY"`

	// Idempotency cache for task creation
	IdempotencyTTL time.Duration `envconfig:"IDEMPOTENCY_TTL" default:"24h"`
}

// ActionsEnabled returns true if the HTTP action API key is configured.
func (c *Config) ActionsEnabled() bool {
	return c.ActionAPIKey != ""
}

// Validate checks that the required Taiga settings are present.
func (c *Config) Validate() error {
	if c.TaigaBaseURL == "" {
		return fmt.Errorf("TAIGA_BASE_URL is required")
	}
	if c.TaigaUsername == "" {
		return fmt.Errorf("TAIGA_USERNAME is required")
	}
	if c.TaigaPassword == "" {
		return fmt.Errorf("TAIGA_PASSWORD is required")
	}
	return nil
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
