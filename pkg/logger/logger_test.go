package logger

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestLoggerWritesFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, zerolog.DebugLevel, "json", "")

	l.Info("fitted", String("algorithm", "Holt-Winters"), Int("prediction", 3), Float64("sse", 0.5), Bool("cached", false))

	out := buf.String()
	assert.Contains(t, out, `"message":"fitted"`)
	assert.Contains(t, out, `"algorithm":"Holt-Winters"`)
	assert.Contains(t, out, `"prediction":3`)
	assert.Contains(t, out, `"sse":0.5`)
	assert.Contains(t, out, `"cached":false`)
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, zerolog.WarnLevel, "json", "")

	l.Debug("hidden")
	l.Info("hidden")
	l.Error("shown", Error(errors.New("boom")))

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"error":"boom"`)
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, zerolog.InfoLevel, "json", "").With(String("component", "server"))

	l.Info("started")

	assert.Contains(t, buf.String(), `"component":"server"`)
}

func TestFromEnvDisabledByDefault(t *testing.T) {
	t.Setenv("TEST_LOG_LEVEL", "")

	l, err := FromEnv("TEST")
	assert.NoError(t, err)
	assert.NotNil(t, l)
}

func TestFromEnvInvalidLevel(t *testing.T) {
	t.Setenv("TEST_LOG_LEVEL", "loud")

	_, err := FromEnv("TEST")
	assert.Error(t, err)
}
