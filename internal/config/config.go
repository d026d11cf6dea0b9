package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Env         string            `envconfig:"APP_ENV" default:"development"`
	LogLevel    string            `envconfig:"LOG_LEVEL" default:"info"`
	Server      ServerConfig      `envconfig:"SERVER"`
	ExchangeAPI ExchangeAPIConfig `envconfig:"EXCHANGE_API"`
	Metrics     MetricsConfig     `envconfig:"METRICS"`
}

type ServerConfig struct {
	Port         int           `envconfig:"PORT" default:"8080"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout  time.Duration `envconfig:"IDLE_TIMEOUT" default:"120s"`
}

type ExchangeAPIConfig struct {
	BaseURL string        `envconfig:"BASE_URL" default:"https://v6.exchangerate-api.com/v6"`
	APIKey  string        `envconfig:"KEY"`
	Timeout time.Duration `envconfig:"TIMEOUT" default:"10s"`
}

type MetricsConfig struct {
	// Addr is where the CLI serves /metrics; empty disables the listener.
	Addr string `envconfig:"ADDR"`
}

// LoadConfig reads the optional env files (".env" when none are given), then
// the process environment. Variables already set in the environment win.
func LoadConfig(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		// A missing file is normal outside local development.
		_ = godotenv.Load(f)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.ExchangeAPI.Timeout <= 0 {
		return nil, fmt.Errorf("EXCHANGE_API_TIMEOUT must be positive, got %s", cfg.ExchangeAPI.Timeout)
	}
	return &cfg, nil
}
