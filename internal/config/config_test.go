package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "file", cfg.Store.Backend)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ARBOR_HTTP_ADDR", ":9999")
	t.Setenv("ARBOR_STORE", "redis")
	t.Setenv("ARBOR_REDIS_TTL", "5m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, "redis", cfg.Store.Backend)
	assert.Equal(t, 5*time.Minute, cfg.Store.RedisTTL)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("ARBOR_HTTP_READ_TIMEOUT", "not-a-duration")
	_, err := Load()
	assert.Error(t, err)
}
