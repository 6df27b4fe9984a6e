package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
	assert.Equal(t, "development", cfg.Environment)
	assert.True(t, cfg.AuditEnabled)
	assert.Equal(t, 5*time.Second, cfg.OpTimeout)
	assert.Equal(t, 3, cfg.RetryAttempts)
	assert.Equal(t, 200*time.Millisecond, cfg.RetryBackoff)
	assert.True(t, cfg.Events.Enabled)
	assert.Equal(t, "safety-events", cfg.Events.SafetyTopic)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("AUDIT_ENABLED", "false")
	t.Setenv("OP_TIMEOUT", "2s")
	t.Setenv("RETRY_ATTEMPTS", "5")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "production", cfg.Environment)
	assert.False(t, cfg.AuditEnabled)
	assert.Equal(t, 2*time.Second, cfg.OpTimeout)
	assert.Equal(t, 5, cfg.RetryAttempts)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Events.GetKafkaBrokers())
}

func TestLoadConfig_BadValuesFallBack(t *testing.T) {
	t.Setenv("AUDIT_ENABLED", "not-a-bool")
	t.Setenv("RETRY_ATTEMPTS", "many")
	t.Setenv("OP_TIMEOUT", "soon")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.AuditEnabled)
	assert.Equal(t, 3, cfg.RetryAttempts)
	assert.Equal(t, 5*time.Second, cfg.OpTimeout)
}
