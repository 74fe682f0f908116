package aqlog

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerFormatsLevelAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(slog.LevelDebug, &buf)

	l.Warn("refresh failed", "status", 400)
	l.Info("signed in", "email", "a@gmail.com")

	assert.Equal(t, "warn: refresh failed status=400\nsigned in email=a@gmail.com\n", buf.String())
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(slog.LevelWarn, &buf)

	l.Debug("hidden")
	l.Info("hidden")
	l.Error("shown")

	assert.Equal(t, "error: shown\n", buf.String())
}

func TestLoggerKeepsWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(slog.LevelInfo, &buf).With("component", "transport").WithGroup("req")

	l.Info("sent", "path", "/me")

	assert.Equal(t, "sent component=transport, req.path=/me\n", buf.String())
}
