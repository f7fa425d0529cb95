// Package trace tags each unit of work with a correlation id and logs how
// it went.
package trace

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync/atomic"
	"time"

	applog "slasher/internal/log"
)

// ContextKey type for context keys
type ContextKey string

const (
	// TraceIDKey is the context key for the trace ID
	TraceIDKey ContextKey = "trace_id"
)

const FieldTraceID = "trace_id"

// Metrics counts handled units of work.
type Metrics struct {
	Handled             int64
	Failed              int64
	AverageDurationUsec int64
}

// Tracer wraps handlers with tracing and logging.
type Tracer struct {
	name    string
	handled atomic.Int64
	failed  atomic.Int64
	totalUs atomic.Int64
}

func NewTracer(name string) *Tracer {
	return &Tracer{name: name}
}

// Wrap returns h with a fresh trace id in its context, along with a logger
// carrying that id (see applog.FromContext). Each call is logged at debug on
// start and at info or error on completion.
func Wrap[T any](t *Tracer, h func(context.Context, T) error) func(context.Context, T) error {
	return func(ctx context.Context, v T) error {
		start := time.Now()
		id := GenerateTraceID()
		logger := applog.FromContext(ctx).With(FieldTraceID, id)
		ctx = applog.WithContext(WithTraceID(ctx, id), logger)

		logger.DebugContext(ctx, "Handling "+t.name)

		err := h(ctx, v)
		d := time.Since(start)
		t.handled.Add(1)
		t.totalUs.Add(d.Microseconds())

		if err != nil {
			t.failed.Add(1)
			logger.ErrorContext(ctx, "Failed "+t.name,
				"duration_ms", d.Milliseconds(),
				applog.FieldError, err)
			return err
		}
		logger.InfoContext(ctx, "Handled "+t.name,
			"duration_ms", d.Milliseconds())
		return nil
	}
}

// GenerateTraceID creates a unique trace ID
func GenerateTraceID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp if random fails
		return fmt.Sprintf("tr_%d", time.Now().UnixNano())
	}
	return "tr_" + hex.EncodeToString(bytes)
}

func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, TraceIDKey, id)
}

// GetTraceID extracts the trace ID from context
func GetTraceID(ctx context.Context) string {
	if id, ok := ctx.Value(TraceIDKey).(string); ok {
		return id
	}
	return ""
}

// GetMetrics returns current metrics
func (t *Tracer) GetMetrics() Metrics {
	m := Metrics{
		Handled: t.handled.Load(),
		Failed:  t.failed.Load(),
	}
	if m.Handled > 0 {
		m.AverageDurationUsec = t.totalUs.Load() / m.Handled
	}
	return m
}
