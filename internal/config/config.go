// Package config loads client settings from DAILYFORTUNE_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// DefaultAPIURL is the production API.
const DefaultAPIURL = "https://api.ys.oftx.top"

// Config holds everything read from the environment.
type Config struct {
	APIURL   string        `env:"DAILYFORTUNE_API_URL" envDefault:"https://api.ys.oftx.top"`
	Token    string        `env:"DAILYFORTUNE_TOKEN"`
	Home     string        `env:"DAILYFORTUNE_HOME"`
	LogLevel string        `env:"DAILYFORTUNE_LOG_LEVEL" envDefault:"info"`
	Timeout  time.Duration `env:"DAILYFORTUNE_TIMEOUT" envDefault:"60s"`
	Lang     string        `env:"DAILYFORTUNE_LANG" envDefault:"zh"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses the environment and fills in the config directory.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("config.Load: %w", err)
	}
	if cfg.Timeout <= 0 {
		return Config{}, fmt.Errorf("config.Load: DAILYFORTUNE_TIMEOUT must be positive, got %s", cfg.Timeout)
	}
	if cfg.Home == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return Config{}, fmt.Errorf("config.Load: get config dir: %w", err)
		}
		cfg.Home = filepath.Join(dir, "dailyfortune")
	}
	return cfg, nil
}

// TokenPath is where the access token is persisted.
func (c Config) TokenPath() string {
	return filepath.Join(c.Home, "token")
}
