package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Equal(t, "token", cfg.Auth.CookieName)
	assert.Equal(t, 10*time.Second, cfg.Backend.Timeout())
	assert.Equal(t, 30*time.Second, cfg.Redis.QuestionTTL())
	assert.True(t, cfg.Postgres.RunMigrations)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("BACKEND_BASE_URL", "https://api.example.sk")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "0")
	t.Setenv("POSTGRES_MAX_CONNS", "25")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.App.Addr())
	assert.Equal(t, "https://api.example.sk", cfg.Backend.BaseURL)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, int32(25), cfg.Postgres.MaxConns)
	assert.Zero(t, cfg.App.RequestTimeout())
}

func TestLoadRejectsMalformedNumbers(t *testing.T) {
	t.Setenv("REDIS_DB", "three")
	_, err := Load()
	assert.Error(t, err)
}
