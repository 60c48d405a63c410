package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "CHAT_LATENCY_MIN_MS", "CHAT_LATENCY_MAX_MS", "CHAT_RESOLVE_TIMEOUT_MS", "CHAT_IDLE_TTL_MINUTES", "CRON_ENABLED", "LOG_DIR", "GO_ENV"} {
		t.Setenv(key, "")
	}

	env, err := Get()
	require.NoError(t, err)
	assert.Equal(t, 8080, env.PORT)
	assert.Equal(t, time.Second, env.CHAT_LATENCY_MIN)
	assert.Equal(t, 2*time.Second, env.CHAT_LATENCY_MAX)
	assert.Equal(t, 10*time.Second, env.CHAT_RESOLVE_TIMEOUT)
	assert.Equal(t, 2*time.Hour, env.CHAT_IDLE_TTL)
	assert.True(t, env.CRON_ENABLED)
	assert.Equal(t, "./logs", env.LOG_DIR)
}

func TestGetOverrides(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("PORT", "9090")
	t.Setenv("CHAT_LATENCY_MIN_MS", "0")
	t.Setenv("CHAT_LATENCY_MAX_MS", "5")
	t.Setenv("CRON_ENABLED", "false")

	env, err := Get()
	require.NoError(t, err)
	assert.Equal(t, 9090, env.PORT)
	assert.Zero(t, env.CHAT_LATENCY_MIN)
	assert.Equal(t, 5*time.Millisecond, env.CHAT_LATENCY_MAX)
	assert.False(t, env.CRON_ENABLED)
}

func TestGetRejectsInvertedLatency(t *testing.T) {
	t.Setenv("CHAT_LATENCY_MIN_MS", "3000")
	t.Setenv("CHAT_LATENCY_MAX_MS", "1000")
	_, err := Get()
	assert.Error(t, err)
}

func TestGetRejectsTimeoutBelowLatency(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("CHAT_LATENCY_MIN_MS", "1000")
	t.Setenv("CHAT_LATENCY_MAX_MS", "2000")

	t.Setenv("CHAT_RESOLVE_TIMEOUT_MS", "1500")
	_, err := Get()
	assert.ErrorContains(t, err, "CHAT_RESOLVE_TIMEOUT_MS")

	t.Setenv("CHAT_RESOLVE_TIMEOUT_MS", "2000")
	_, err = Get()
	assert.Error(t, err)

	t.Setenv("CHAT_RESOLVE_TIMEOUT_MS", "0")
	env, err := Get()
	require.NoError(t, err)
	assert.Zero(t, env.CHAT_RESOLVE_TIMEOUT)
}

func TestGetRequiresSecretInProduction(t *testing.T) {
	t.Setenv("GO_ENV", "production")
	t.Setenv("JWT_SECRET", "")
	_, err := Get()
	assert.Error(t, err)
}
