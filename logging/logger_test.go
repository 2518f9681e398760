package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for line := range strings.SplitSeq(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestTraceHandlerInjectsIDs(t *testing.T) {
	var buf bytes.Buffer
	l := NewFromConfig(Config{Service: "segreplay", Module: "replay", Level: "info", Output: &buf})

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	l.InfoContext(ctx, "scenario finished", "name", "clamp")
	l.With("extra", 1).InfoContext(ctx, "derived")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	for _, m := range lines {
		assert.Equal(t, traceID.String(), m["trace_id"])
		assert.Equal(t, spanID.String(), m["span_id"])
		assert.Equal(t, "segreplay", m["service"])
		assert.Contains(t, m, "timestamp")
	}
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewFromConfig(Config{Service: "s", Module: "m", Level: "warn", Output: &buf})

	l.Info("hidden")
	assert.Empty(t, buf.String())

	SetLevel("debug")
	t.Cleanup(func() { SetLevel("info") })
	l.Debug("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}

func TestFileAndConsole(t *testing.T) {
	var buf bytes.Buffer
	file := filepath.Join(t.TempDir(), "segreplay.log")
	l := NewFromConfig(Config{
		Service: "s", Module: "m", Level: "info",
		Format: "text", File: file, Console: true, MaxSize: 1, Output: &buf,
	})

	l.Info("both targets")

	assert.Contains(t, buf.String(), "msg=\"both targets\"")
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"both targets"`)
}

func TestLogDuration(t *testing.T) {
	var buf bytes.Buffer
	l := NewFromConfig(Config{Service: "s", Module: "m", Level: "info", Output: &buf})

	done := l.LogDuration(context.Background(), "replay", "files", 2)
	done()

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "replay finished", lines[0]["msg"])
	assert.Contains(t, lines[0], "duration")
}
