package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerWritesFieldsAndContextIDs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, WithLevel(zerolog.DebugLevel))

	ctx := WithRunID(context.Background(), "run-1")
	ctx = WithRequestID(ctx, "req-9")
	logger.Info(ctx, "model resolved", map[string]interface{}{
		"model": "gemini-2.0-flash",
	})

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "model resolved", line["message"])
	assert.Equal(t, "gemini-2.0-flash", line["model"])
	assert.Equal(t, "run-1", line["run_id"])
	assert.Equal(t, "req-9", line["request_id"])
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, WithLevel(zerolog.WarnLevel))

	logger.Debug(context.Background(), "hidden", nil)
	logger.Info(context.Background(), "hidden", nil)
	assert.Zero(t, buf.Len())

	logger.Warn(context.Background(), "shown", nil)
	assert.Contains(t, buf.String(), "shown")
}

func TestLevelFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "DEBUG")
	assert.Equal(t, zerolog.DebugLevel, levelFromEnv())

	t.Setenv("LOG_LEVEL", "bogus")
	assert.Equal(t, zerolog.InfoLevel, levelFromEnv())
}

func TestJSONEnabledFromEnv(t *testing.T) {
	t.Setenv("LOG_FORMAT", "")
	t.Setenv("LOG_JSON", "yes")
	assert.True(t, jsonEnabled())

	t.Setenv("LOG_JSON", "")
	t.Setenv("LOG_FORMAT", "JSON")
	assert.True(t, jsonEnabled())
}
