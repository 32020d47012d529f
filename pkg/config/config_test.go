package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAppliesDefaults(t *testing.T) {
	c, err := Parse([]byte("environment: test\n"))
	require.NoError(t, err)

	assert.Equal(t, "test", c.Environment)
	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, 10*time.Second, c.Server.ReadTimeout)
	assert.Equal(t, BackendNone, c.Backend.Type)
	assert.Equal(t, "replica-forecasts", c.Kafka.Topic)
	assert.Equal(t, -1, c.Kafka.RequiredAcks)
	assert.Equal(t, 5*time.Minute, c.Cache.TTL)
	assert.Equal(t, 0.9, c.HoltWinters.Alpha)
	assert.Equal(t, "info", c.Log.Level)
}

func TestParseOverridesDefaults(t *testing.T) {
	c, err := Parse([]byte(`
environment: production
server:
  port: 9090
backend:
  type: kafka
kafka:
  brokers: ["kafka:9092"]
holt_winters:
  alpha: 0.2
`))
	require.NoError(t, err)

	assert.Equal(t, 9090, c.Server.Port)
	assert.Equal(t, BackendKafka, c.Backend.Type)
	assert.Equal(t, []string{"kafka:9092"}, c.Kafka.Brokers)
	assert.Equal(t, 0.2, c.HoltWinters.Alpha)
	assert.Equal(t, 0.9, c.HoltWinters.Beta)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "unknown backend",
			yaml:    "backend:\n  type: postgres\n",
			wantErr: "backend.type must be 'none', 'kafka' or 'clickhouse', got 'postgres'",
		},
		{
			name:    "kafka without brokers",
			yaml:    "backend:\n  type: kafka\n",
			wantErr: "kafka.brokers cannot be empty",
		},
		{
			name:    "smoothing constant out of range",
			yaml:    "holt_winters:\n  gamma: 1.5\n",
			wantErr: "holt_winters.gamma must be within [0, 1]",
		},
		{
			name:    "bad port",
			yaml:    "server:\n  port: 70000\n",
			wantErr: "server.port must be between 1 and 65535",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	env := map[string]string{
		"FORECAST_BACKEND":          "kafka",
		"KAFKA_BROKERS":             "a:9092,b:9092",
		"KAFKA_TOPIC":               "forecasts",
		"REDIS_ADDR":                "redis:6380",
		"RATE_LIMIT_CAPACITY":       "5",
		"RATE_LIMIT_REFILL_PER_SEC": "bad",
	}
	c.applyEnv(func(k string) string { return env[k] })

	assert.Equal(t, BackendKafka, c.Backend.Type)
	assert.Equal(t, []string{"a:9092", "b:9092"}, c.Kafka.Brokers)
	assert.Equal(t, "forecasts", c.Kafka.Topic)
	assert.True(t, c.Cache.Redis.Enabled)
	assert.Equal(t, "redis", c.Cache.Redis.Host)
	assert.Equal(t, 6380, c.Cache.Redis.Port)
	assert.Equal(t, 5.0, c.RateLimit.Capacity)
	assert.Equal(t, 10.0, c.RateLimit.RefillPerSec)
	assert.NoError(t, c.Validate())
}

func TestLoadShippedConfig(t *testing.T) {
	cfg, err := Load("../../config/config.yaml")
	require.NoError(t, err)

	assert.Equal(t, BackendNone, cfg.Backend.Type)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 0.9, cfg.HoltWinters.Gamma)
	assert.False(t, cfg.Cache.Redis.Enabled)
}
