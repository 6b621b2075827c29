package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TMDB_API_KEY", "tmdb-key")
	t.Setenv("OMDB_API_KEY", "omdb-key")
	t.Setenv("JELLYSEERR_API_KEY", "jelly-key")
	t.Setenv("JELLYSEERR_URL", "http://jellyseerr:5055")
}

func TestLoadConfig_Defaults(t *testing.T) {
	validEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.App.Port)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, 1000, cfg.Cache.MaxEntries)
	assert.Equal(t, 10, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 20, cfg.RateLimit.BurstSize)
	assert.Equal(t, 3, cfg.Retry.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, cfg.Retry.InitialDelay)
	assert.Equal(t, 10*time.Second, cfg.Retry.MaxDelay)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
}

func TestLoadConfig_RequiresUpstreamKeys(t *testing.T) {
	validEnv(t)
	t.Setenv("TMDB_API_KEY", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TMDB_API_KEY is required")
}

func TestLoadConfig_RejectsBadJellyseerrURL(t *testing.T) {
	validEnv(t)
	t.Setenv("JELLYSEERR_URL", "not a url")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("TEST_DURATION", "90s")
	assert.Equal(t, 90*time.Second, getEnvDuration("TEST_DURATION", time.Minute))

	t.Setenv("TEST_DURATION", "3600")
	assert.Equal(t, time.Hour, getEnvDuration("TEST_DURATION", time.Minute))

	t.Setenv("TEST_DURATION", "garbage")
	assert.Equal(t, time.Minute, getEnvDuration("TEST_DURATION", time.Minute))
}
