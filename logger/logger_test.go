package logger

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	assert.True(t, New("development").Core().Enabled(zapcore.DebugLevel))
	assert.False(t, New("production").Core().Enabled(zapcore.DebugLevel))
	assert.True(t, New("production").Core().Enabled(zapcore.InfoLevel))
}

func TestNop(t *testing.T) {
	assert.False(t, Nop().Core().Enabled(zapcore.ErrorLevel))
}
