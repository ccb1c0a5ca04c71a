package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestNewLoggerEnvironmentLevels(t *testing.T) {
	dev := NewLogger("development", "timetable-api", "")
	assert.True(t, dev.Core().Enabled(zapcore.DebugLevel))

	prod := NewLogger("production", "timetable-api", "")
	assert.False(t, prod.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, prod.Core().Enabled(zapcore.InfoLevel))
}

func TestNewLoggerLevelOverride(t *testing.T) {
	quiet := NewLogger("development", "rooms-bot", "warn")
	assert.False(t, quiet.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, quiet.Core().Enabled(zapcore.WarnLevel))

	verbose := NewLogger("production", "rooms-bot", "debug")
	assert.True(t, verbose.Core().Enabled(zapcore.DebugLevel))
}

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	assert.Panics(t, func() { NewLogger("development", "rooms-bot", "verbose") })
}
