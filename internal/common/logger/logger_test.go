package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in       string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"WARN", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"info", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.in))
		})
	}
}

func TestZapWrapper_FieldsAndErrors(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core)).WithFields(map[string]interface{}{"agent": "cart"})

	log.Info("cart updated", map[string]interface{}{"userId": "u-1"})
	log.WithError(errors.New("boom")).Error("cart failed", nil)
	log.Warn("memory write failed", map[string]interface{}{"error": errors.New("redis down")})

	entries := logs.All()
	assert.Len(t, entries, 3)
	assert.Equal(t, "cart", entries[0].ContextMap()["agent"])
	assert.Equal(t, "u-1", entries[0].ContextMap()["userId"])
	assert.Equal(t, "boom", entries[1].ContextMap()["error"])
	assert.Equal(t, "redis down", entries[2].ContextMap()["error"])
}

func TestNewNoOpLogger(t *testing.T) {
	log := NewNoOpLogger()
	assert.NotPanics(t, func() {
		log.With(map[string]interface{}{"k": "v"}).Debug("noop", nil)
	})
}
