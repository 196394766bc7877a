// Copyright (c) 2026 Komira. All rights reserved.

/*
Package config maps environment variables onto the typed runtime
configuration.

Everything the server needs comes from the environment, parsed once at
startup by caarlos0/env. Missing required variables fail Load, so a
misconfigured deployment dies immediately rather than at first use. The
loaded struct is treated as read-only and handed to components through
their constructors; there is no global config state.
*/
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/komira-app/komira/pkg/query"
)

// # Configuration Schema

// Config holds the runtime configuration of the Komira API server.
type Config struct {
	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// PostgreSQL, the system of record.
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath points at the SQL migration directory applied at boot.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Redis, holding recovery tokens and per-device reading positions.
	RedisURL string `env:"REDIS_URL,required"`

	// RSA key pair for access token signing.
	JWTPrivKeyPath string `env:"JWT_PRIVATE_KEY_PATH,required"`
	JWTPubKeyPath  string `env:"JWT_PUBLIC_KEY_PATH,required"`

	// ExtraOrigins lists additional CORS origins, comma separated.
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses the environment into a [Config]. It fails when any
// required variable is unset.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}
	return cfg, nil
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowedOrigins returns the extra CORS origins from EXTRA_ORIGINS.
func (c *Config) AllowedOrigins() []string {
	return query.StringSlice(c.ExtraOrigins)
}
