package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func capture(t *testing.T, level slog.Level) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log
	log = New(NewJSONHandler(&buf, &slog.HandlerOptions{Level: level}))
	t.Cleanup(func() { log = prev })
	return &buf
}

func TestInit(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	Init()
	assert.NotNil(t, log)
	assert.True(t, log.Enabled(context.Background(), slog.LevelDebug))
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":        slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), in)
	}
}

func TestLeveledHelpers(t *testing.T) {
	buf := capture(t, slog.LevelDebug)

	Info("session finished", "session_id", 12)
	Warn("waitlist empty")
	Error("assignment failed", "client_id", 7)
	Debug("resolving program")

	out := buf.String()
	assert.Contains(t, out, "session finished")
	assert.Contains(t, out, `"session_id":12`)
	assert.Contains(t, out, "waitlist empty")
	assert.Contains(t, out, `"client_id":7`)
	assert.Contains(t, out, "resolving program")
}

func TestFormattedHelpers(t *testing.T) {
	buf := capture(t, slog.LevelDebug)

	Infof("event %d registered", 3)
	Errorf("event %d failed", 4)
	Debugf("event %d debug", 5)

	out := buf.String()
	assert.Contains(t, out, "event 3 registered")
	assert.Contains(t, out, "event 4 failed")
	assert.Contains(t, out, "event 5 debug")
}

func TestDebugSuppressedAtInfo(t *testing.T) {
	buf := capture(t, slog.LevelInfo)

	Debug("hidden")

	assert.Empty(t, buf.String())
}

func TestWithError(t *testing.T) {
	buf := capture(t, slog.LevelInfo)

	WithError(assert.AnError).Info("with error")

	out := buf.String()
	assert.Contains(t, out, "with error")
	assert.Contains(t, out, assert.AnError.Error())
}

func TestWithFields(t *testing.T) {
	buf := capture(t, slog.LevelInfo)

	WithFields(map[string]interface{}{"event_id": 9, "status": "WAITLISTED"}).Info("registration")

	out := buf.String()
	assert.Contains(t, out, `"event_id":9`)
	assert.Contains(t, out, `"status":"WAITLISTED"`)
}
