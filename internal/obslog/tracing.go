package obslog

import (
	"context"
	"sync"
	"time"
)

// Tracer observes encrypt/decrypt/fan-out latency and outcome without
// coupling the engine to any particular backend.
type Tracer interface {
	// StartSpan starts a new span with the given name and returns a context
	// carrying it plus a function that ends the span.
	StartSpan(ctx context.Context, name string, attrs map[string]interface{}) (context.Context, SpanEnder)
}

// SpanEnder ends a span. Call with nil for success, or an error to mark the
// span as failed. SimpleTracer keeps the error value itself; the OTel
// adapter records the error and uses its message as the span status.
type SpanEnder func(err error)

// NoOpTracer discards every span. It is the default.
type NoOpTracer struct{}

// StartSpan implements Tracer.
func (NoOpTracer) StartSpan(ctx context.Context, name string, attrs map[string]interface{}) (context.Context, SpanEnder) {
	return ctx, func(error) {}
}

// RecordedSpan is one span captured by SimpleTracer.
type RecordedSpan struct {
	Name       string
	Start      time.Time
	Duration   time.Duration
	Attributes map[string]interface{}
	Err        error
}

// SimpleTracer records spans in memory. Useful in tests that assert on
// which operations ran without pulling in a real tracing backend.
type SimpleTracer struct {
	mu    sync.Mutex
	spans []RecordedSpan
}

// NewSimpleTracer creates an empty in-memory tracer.
func NewSimpleTracer() *SimpleTracer {
	return &SimpleTracer{}
}

// StartSpan implements Tracer.
func (t *SimpleTracer) StartSpan(ctx context.Context, name string, attrs map[string]interface{}) (context.Context, SpanEnder) {
	start := time.Now()
	return ctx, func(err error) {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.spans = append(t.spans, RecordedSpan{
			Name:       name,
			Start:      start,
			Duration:   time.Since(start),
			Attributes: attrs,
			Err:        err,
		})
	}
}

// Spans returns a copy of every span recorded so far.
func (t *SimpleTracer) Spans() []RecordedSpan {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]RecordedSpan, len(t.spans))
	copy(out, t.spans)
	return out
}

var (
	globalTracer   Tracer = NoOpTracer{}
	globalTracerMu sync.RWMutex
)

// SetTracer installs the process-wide tracer on which pkg/cipher and
// pkg/fanout open their spans.
func SetTracer(t Tracer) {
	globalTracerMu.Lock()
	defer globalTracerMu.Unlock()
	globalTracer = t
}

// GetTracer returns the process-wide tracer.
func GetTracer() Tracer {
	globalTracerMu.RLock()
	defer globalTracerMu.RUnlock()
	return globalTracer
}
