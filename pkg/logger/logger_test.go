package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_KeyValues(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := FromZap(zap.New(core))

	log.Info("Cache hit", "base", "USD")
	log.With("component", "cache").Warn("Rate provider rejected the API key", "status", 401)

	entries := logs.All()
	assert.Len(t, entries, 2)
	assert.Equal(t, "Cache hit", entries[0].Message)
	assert.Equal(t, "USD", entries[0].ContextMap()["base"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "cache", entries[1].ContextMap()["component"])
	assert.Equal(t, int64(401), entries[1].ContextMap()["status"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("ERROR"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel(""))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("chatty"))
}

func TestNewLogger(t *testing.T) {
	assert.NotNil(t, NewLogger("debug"))
	assert.NotNil(t, New("warn", "production"))
	assert.NotPanics(t, func() { NewNop().Error("discarded", "k", "v") })
}
