package display

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLogBuffer_Ring(t *testing.T) {
	lb := NewLogBuffer(3)
	assert.Empty(t, lb.Recent(0))

	for _, msg := range []string{"a", "b", "c", "d"} {
		lb.Add(LogEntry{Message: msg})
	}

	assert.Equal(t, 3, lb.Len())

	recent := lb.Recent(0)
	assert.Equal(t, []string{"d", "c", "b"}, messages(recent))
	assert.Equal(t, []string{"d", "c"}, messages(lb.Recent(2)))
}

func messages(entries []LogEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Message
	}
	return out
}

func TestLogBufferHandler(t *testing.T) {
	lb := NewLogBuffer(10)
	logger := slog.New(NewLogBufferHandler(lb, slog.LevelInfo))

	logger.Debug("hidden")
	logger.Info("Note start", "index", 3)
	logger.With("backend", "oto").WithGroup("spec").Info("Opened", "rate", 44100)

	recent := lb.Recent(0)
	assert.Equal(t, []string{
		"Opened backend=oto spec.rate=44100",
		"Note start index=3",
	}, messages(recent))
}

func TestFormatLogEntry(t *testing.T) {
	ts := time.Date(2024, 12, 12, 9, 30, 15, 0, time.UTC)

	assert.Equal(t, "09:30:15 [INF] hello", FormatLogEntry(LogEntry{Time: ts, Level: slog.LevelInfo, Message: "hello"}))
	assert.Equal(t, "09:30:15 [ERR] boom", FormatLogEntry(LogEntry{Time: ts, Level: slog.LevelError, Message: "boom"}))
	assert.Equal(t, "09:30:15 [DBG] trace", FormatLogEntry(LogEntry{Time: ts, Level: slog.LevelDebug, Message: "trace"}))
	assert.Equal(t, "09:30:15 [WRN] careful", FormatLogEntry(LogEntry{Time: ts, Level: slog.LevelWarn, Message: "careful"}))
}
