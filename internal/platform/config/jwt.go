package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// JWTConfig configures JWT verification against a JWKS endpoint.
type JWTConfig struct {
	Issuer   string `env:"JWT_ISSUER"`
	Audience string `env:"JWT_AUDIENCE"`
	JWKSURL  string `env:"JWT_JWKS_URL"`

	ClockSkew time.Duration `env:"JWT_CLOCK_SKEW" envDefault:"30s"`
	// Refresh periodically to pick up key rotation even if an old key is still cached.
	JWKSRefreshInterval time.Duration `env:"JWT_JWKS_REFRESH_INTERVAL" envDefault:"5m"`
	// Bound refresh frequency when a token presents an unknown kid.
	JWKSMinRefreshInterval time.Duration `env:"JWT_JWKS_MIN_REFRESH_INTERVAL" envDefault:"10s"`

	HTTPTimeout time.Duration `env:"JWT_HTTP_TIMEOUT" envDefault:"5s"`
}

func LoadJWTConfigFromEnv() (JWTConfig, error) {
	var cfg JWTConfig
	if err := env.Parse(&cfg); err != nil {
		return JWTConfig{}, fmt.Errorf("parse jwt env: %w", err)
	}
	if cfg.Issuer == "" || cfg.Audience == "" || cfg.JWKSURL == "" {
		return JWTConfig{}, fmt.Errorf("missing required env vars: JWT_ISSUER, JWT_AUDIENCE, JWT_JWKS_URL")
	}
	return cfg, nil
}
