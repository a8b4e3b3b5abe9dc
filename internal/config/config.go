package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is loaded from environment variables. Each agent process carries its
// own identity defaults here; everything else is per-operation input.
type Config struct {
	DatabasePath string `env:"HUB_DB_PATH" envDefault:"agent-hub.db"`

	// Identity defaults for this process. SessionID is generated when empty.
	SessionID   string `env:"HUB_SESSION_ID"`
	Platform    string `env:"HUB_PLATFORM" envDefault:"claude-code"`
	DisplayName string `env:"HUB_DISPLAY_NAME"`

	FreshnessWindowSeconds int    `env:"HUB_FRESHNESS_WINDOW_SECONDS" envDefault:"300"`
	LogLevel               string `env:"HUB_LOG_LEVEL" envDefault:"info"`
}

// FreshnessWindow is the recency threshold for classifying a session as
// active. Staleness is a read-time filter; nothing is ever evicted.
func (c *Config) FreshnessWindow() time.Duration {
	return time.Duration(c.FreshnessWindowSeconds) * time.Second
}

func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("HUB_DB_PATH must not be empty")
	}
	if c.FreshnessWindowSeconds <= 0 {
		return fmt.Errorf("HUB_FRESHNESS_WINDOW_SECONDS must be positive")
	}
	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
