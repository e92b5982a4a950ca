package tracing_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MacroPower/fspath/pkg/tracing"
)

func TestLoggingTracer(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	span := tracing.NewLoggingTracer(logger).StartSpan(t.Context(), "load_map")
	span.SetAttr(slog.String("file", "paths.yaml"))
	span.SetAttr(slog.Int("entries", 3))
	span.Finish()
	span.Finish()

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "msg=trace"))
	assert.Contains(t, out, "operation=load_map")
	assert.Contains(t, out, "file=paths.yaml")
	assert.Contains(t, out, "entries=3")
	assert.Contains(t, out, "time_ms=")
}

func TestLoggingTracerRespectsLevel(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	tracing.NewLoggingTracer(logger).StartSpan(t.Context(), "quiet").Finish()

	assert.Empty(t, buf.String())
}

func TestLoggingTracerAttrOrder(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	span := tracing.NewLoggingTracer(logger).StartSpan(t.Context(), "glob")
	span.SetAttr(slog.String("pattern", "/home/**"))
	span.Finish()
	span.SetAttr(slog.Int("late", 1))
	span.Finish()

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "msg=trace"))
	assert.Less(t, strings.Index(out, "pattern="), strings.Index(out, "operation=glob"))
	assert.Less(t, strings.Index(out, "operation=glob"), strings.Index(out, "time_ms="))
	assert.NotContains(t, out, "late=")
}
