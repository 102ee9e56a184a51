package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	AuthModeJWT = "jwt"
	AuthModeDev = "dev"

	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageSQLite   = "sqlite"
	StorageRedis    = "redis"
)

// Config is the API service configuration, loaded from the environment.
type Config struct {
	Port      string `env:"PORT"       envDefault:"8080"`
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	AuthMode string `env:"AUTH_MODE" envDefault:"jwt"`
	// RootSubject is the authenticated subject treated as the registry's root authority.
	RootSubject string `env:"ROOT_SUBJECT"`
	DevSubject  string `env:"DEV_SUBJECT" envDefault:"dev|local"`
	DevIssuer   string `env:"DEV_ISSUER"  envDefault:"dev"`

	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"memory"`
	DatabaseURL    string `env:"DATABASE_URL"`
	SQLitePath     string `env:"SQLITE_PATH"     envDefault:"data/clubs.db"`
	RedisURL       string `env:"REDIS_URL"`
	RedisNamespace string `env:"REDIS_NAMESPACE" envDefault:"clubs"`

	BootstrapFile string `env:"BOOTSTRAP_FILE"`

	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic   string   `env:"KAFKA_TOPIC"   envDefault:"club-membership-events"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load parses the service configuration and validates cross-field rules.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.RootSubject) == "" {
		return fmt.Errorf("ROOT_SUBJECT is required")
	}
	switch c.AuthMode {
	case AuthModeJWT, AuthModeDev:
	default:
		return fmt.Errorf("AUTH_MODE must be %q or %q, got %q", AuthModeJWT, AuthModeDev, c.AuthMode)
	}
	switch c.StorageBackend {
	case StorageMemory, StorageSQLite:
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORAGE_BACKEND=postgres")
		}
	case StorageRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when STORAGE_BACKEND=redis")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q (expected memory|postgres|sqlite|redis)", c.StorageBackend)
	}
	return nil
}
