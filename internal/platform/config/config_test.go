package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ROOT_SUBJECT", "root-sub")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, AuthModeJWT, cfg.AuthMode)
	assert.Equal(t, StorageMemory, cfg.StorageBackend)
	assert.Equal(t, "club-membership-events", cfg.KafkaTopic)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Empty(t, cfg.KafkaBrokers)
}

func TestLoad_RequiresRootSubject(t *testing.T) {
	t.Setenv("ROOT_SUBJECT", "")

	_, err := Load()
	require.ErrorContains(t, err, "ROOT_SUBJECT")
}

func TestLoad_BackendRules(t *testing.T) {
	t.Setenv("ROOT_SUBJECT", "root-sub")
	t.Setenv("STORAGE_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	require.ErrorContains(t, err, "DATABASE_URL")

	t.Setenv("STORAGE_BACKEND", "cassandra")
	_, err = Load()
	require.ErrorContains(t, err, "unknown STORAGE_BACKEND")
}

func TestLoad_KafkaBrokersList(t *testing.T) {
	t.Setenv("ROOT_SUBJECT", "root-sub")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
}

func TestLoadJWTConfigFromEnv(t *testing.T) {
	t.Setenv("JWT_ISSUER", "iss")
	t.Setenv("JWT_AUDIENCE", "aud")
	t.Setenv("JWT_JWKS_URL", "")

	_, err := LoadJWTConfigFromEnv()
	require.Error(t, err)

	t.Setenv("JWT_JWKS_URL", "http://jwks")
	t.Setenv("JWT_CLOCK_SKEW", "1m")
	cfg, err := LoadJWTConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, time.Minute, cfg.ClockSkew)
	assert.Equal(t, 5*time.Minute, cfg.JWKSRefreshInterval)
}
