package tracing

import (
	"context"

	"github.com/tagus/physai-agent/pkg/interfaces"
)

type contextKey string

const runIDKey contextKey = "tracing_run_id"

// WithRunID stores the run ID so spans can be tagged with it
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// RunIDFromContext returns the run ID stored by WithRunID
func RunIDFromContext(ctx context.Context) string {
	runID, _ := ctx.Value(runIDKey).(string)
	return runID
}

// StartRunTracing tags ctx with runID and starts a trace session named sessionID.
// An empty sessionID falls back to runID.
func StartRunTracing(ctx context.Context, tracer interfaces.Tracer, runID, sessionID string) (context.Context, interfaces.Span) {
	ctx = WithRunID(ctx, runID)
	if sessionID == "" {
		sessionID = runID
	}
	if tracer == nil {
		return ctx, &NoOpSpan{}
	}
	return tracer.StartTraceSession(ctx, sessionID)
}

// NoOpTracer never records anything; it backs runs with tracing disabled
type NoOpTracer struct{}

func (NoOpTracer) StartSpan(ctx context.Context, name string) (context.Context, interfaces.Span) {
	return ctx, &NoOpSpan{}
}

func (NoOpTracer) StartTraceSession(ctx context.Context, sessionID string) (context.Context, interfaces.Span) {
	return ctx, &NoOpSpan{}
}

// NoOpSpan is a no-operation span implementation for when tracing is disabled
type NoOpSpan struct{}

func (s *NoOpSpan) End()                                                    {}
func (s *NoOpSpan) AddEvent(name string, attributes map[string]interface{}) {}
func (s *NoOpSpan) SetAttribute(key string, value interface{})              {}
func (s *NoOpSpan) RecordError(err error)                                   {}
