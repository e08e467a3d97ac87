package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T, level, format string) *bytes.Buffer {
	t.Helper()
	buf := new(bytes.Buffer)
	prevLevel := CurrentLevel().String()
	prevFormat, _ := currentFormat.Load().(string)
	mu.RLock()
	prevOut, prevColor := output, useColor
	mu.RUnlock()

	InitWithWriter(buf, level, format)
	t.Cleanup(func() {
		mu.Lock()
		output, useColor = prevOut, prevColor
		mu.Unlock()
		SetLevel(prevLevel)
		SetFormat(prevFormat)
	})
	return buf
}

func TestLevelFiltering(t *testing.T) {
	buf := capture(t, "WARN", "text")

	Debug("debug message")
	Info("info message")
	Warn("warn message")
	Error("error message")

	out := buf.String()
	assert.NotContains(t, out, "debug message")
	assert.NotContains(t, out, "info message")
	assert.Contains(t, out, "[WARN] warn message")
	assert.Contains(t, out, "[ERROR] error message")
}

func TestTextAttributes(t *testing.T) {
	buf := capture(t, "DEBUG", "text")

	Info("client connected", KeyConnID, "abc", KeyActive, 3)

	line := buf.String()
	assert.Contains(t, line, "client connected")
	assert.Contains(t, line, "conn_id=abc")
	assert.Contains(t, line, "active=3")
	assert.True(t, strings.HasSuffix(line, "\n"))
}

func TestJSONFormat(t *testing.T) {
	buf := capture(t, "INFO", "json")

	With(KeyWorker, 2).Info("worker started")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "worker started", rec["msg"])
	assert.Equal(t, float64(2), rec["worker"])
}

func TestSetLevelIgnoresUnknown(t *testing.T) {
	capture(t, "ERROR", "text")
	SetLevel("verbose")
	assert.Equal(t, LevelError, CurrentLevel())
}

func TestTextHandlerGroups(t *testing.T) {
	buf := new(bytes.Buffer)
	h := NewColorTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}, false)
	log := slog.New(h).With(KeyConnID, "abc").WithGroup("pool").With("workers", 2)

	log.Info("started", "queued", 0, slog.Group("slots", "max", 4))

	line := buf.String()
	assert.Contains(t, line, " conn_id=abc")
	assert.Contains(t, line, " pool.workers=2")
	assert.Contains(t, line, " pool.queued=0")
	assert.Contains(t, line, " pool.slots.max=4")
	assert.Same(t, h, h.WithGroup(""))
}
