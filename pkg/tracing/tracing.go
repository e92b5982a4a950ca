// Package tracing records how long operations take through [slog].
package tracing

import (
	"context"
	"log/slog"
	"slices"
	"time"
)

var (
	_ Tracer = (*LoggingTracer)(nil)
	_ Span   = (*loggingSpan)(nil)
)

// Tracer starts spans.
type Tracer interface {
	StartSpan(ctx context.Context, operation string) Span
}

// Span measures a single operation.
type Span interface {
	// SetAttr attaches an attribute that is reported when the span finishes.
	SetAttr(attr slog.Attr)
	// Finish reports the span. Calls after the first are ignored.
	Finish()
}

// LoggingTracer reports finished spans as debug log records.
type LoggingTracer struct {
	logger *slog.Logger
	now    func() time.Time
}

func NewLoggingTracer(logger *slog.Logger) *LoggingTracer {
	return &LoggingTracer{
		logger: logger,
		now:    time.Now,
	}
}

//nolint:ireturn
func (t *LoggingTracer) StartSpan(ctx context.Context, operation string) Span {
	return &loggingSpan{
		ctx:       ctx,
		tracer:    t,
		operation: operation,
		start:     t.now(),
	}
}

type loggingSpan struct {
	ctx       context.Context //nolint:containedctx // Reported with the record.
	start     time.Time
	tracer    *LoggingTracer
	operation string
	attrs     []slog.Attr
	finished  bool
}

func (s *loggingSpan) SetAttr(attr slog.Attr) {
	s.attrs = append(s.attrs, attr)
}

func (s *loggingSpan) Finish() {
	if s.finished {
		return
	}

	s.finished = true

	elapsed := s.tracer.now().Sub(s.start)

	attrs := slices.Concat(s.attrs, []slog.Attr{
		slog.String("operation", s.operation),
		slog.Float64("time_ms", float64(elapsed.Microseconds())/1e3),
	})
	s.tracer.logger.LogAttrs(s.ctx, slog.LevelDebug, "trace", attrs...)
}
