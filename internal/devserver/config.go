// Package devserver implements the profile backend's identity API as a
// self-contained local server, so the client can be developed and tested
// without the production deployment.
package devserver

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is read from the environment at startup.
type Config struct {
	// Addr is the listen address.
	Addr string `env:"ADDR" envDefault:":8080"`
	// JWTSecret signs access tokens. The default is fine for local use
	// and must never leave a developer machine.
	JWTSecret string `env:"JWT_SECRET" envDefault:"dev-only-secret"`
	// TokenTTL is the access token lifetime.
	TokenTTL time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	// ResetTokenTTL is the password reset token lifetime.
	ResetTokenTTL time.Duration `env:"RESET_TOKEN_TTL" envDefault:"15m"`
	// DatabaseDSN switches persistence from in-memory to Postgres when set.
	DatabaseDSN string `env:"DATABASE_DSN"`
}

// LoadConfig parses the environment into a Config.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
}
