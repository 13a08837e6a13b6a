package testutil

import (
	"testing"

	"github.com/SaiNageswarS/threads-poster/logger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// PNG is the smallest byte sequence mimetype classifies as image/png.
var PNG = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 64)...)

// ObserveLogs swaps the global logger for an observer at level for the rest
// of the test and returns the recorded entries.
func ObserveLogs(t testing.TB, level zapcore.Level) *observer.ObservedLogs {
	t.Helper()

	core, logs := observer.New(level)
	original := logger.Log
	logger.Log = zap.New(core)
	t.Cleanup(func() { logger.Log = original })

	return logs
}

// WithEnv sets each key for the rest of the test. t.Setenv restores the
// previous values.
func WithEnv(t *testing.T, env map[string]string) {
	t.Helper()
	for key, value := range env {
		t.Setenv(key, value)
	}
}
