package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config is the process configuration, parsed from environment variables.
type Config struct {
	Addr           string   `env:"ADDR" envDefault:":3001"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	LogLevel       string   `env:"LOG_LEVEL" envDefault:"info"`
}

// Load parses the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
