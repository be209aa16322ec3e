// Package config loads host configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Server holds configuration for the HTTP host.
type Server struct {
	Addr            string        `env:"ARBOR_HTTP_ADDR" envDefault:":8080"`
	ReadTimeout     time.Duration `env:"ARBOR_HTTP_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"ARBOR_HTTP_WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"ARBOR_HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Store holds configuration for session persistence.
type Store struct {
	// Backend selects the state store: memory, file or redis.
	Backend  string        `env:"ARBOR_STORE" envDefault:"file"`
	FilePath string        `env:"ARBOR_STORE_PATH"`
	RedisURL string        `env:"ARBOR_REDIS_URL" envDefault:"localhost:6379"`
	RedisDB  int           `env:"ARBOR_REDIS_DB" envDefault:"0"`
	RedisTTL time.Duration `env:"ARBOR_REDIS_TTL" envDefault:"0"`
}

// App is the full host configuration.
type App struct {
	Server   Server
	Store    Store
	LogLevel string `env:"ARBOR_LOG_LEVEL" envDefault:"info"`
}

// Load parses the environment into an App config.
func Load() (*App, error) {
	cfg := &App{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
