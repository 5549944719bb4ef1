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
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("verbose"))
}

func TestZapAdapter_FieldsAndChildren(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core)).WithFields(map[string]interface{}{"taskType": "assess-loan-viability"})

	log.Info("assessment completed", map[string]interface{}{"viabilityScore": 115})
	log.WithError(errors.New("redis down")).Warn("community cache miss", nil)

	entries := logs.All()
	assert.Len(t, entries, 2)

	first := entries[0].ContextMap()
	assert.Equal(t, "assess-loan-viability", first["taskType"])
	assert.EqualValues(t, 115, first["viabilityScore"])

	second := entries[1].ContextMap()
	assert.Equal(t, "redis down", second["error"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
}
