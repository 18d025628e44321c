package interfaces

import "context"

// Tracer starts spans around agent and model calls
type Tracer interface {
	// StartSpan starts a new span as a child of the span in ctx
	StartSpan(ctx context.Context, name string) (context.Context, Span)

	// StartTraceSession starts a root span grouping one run
	StartTraceSession(ctx context.Context, sessionID string) (context.Context, Span)
}

// Span represents a unit of traced work
type Span interface {
	End()
	AddEvent(name string, attributes map[string]interface{})
	SetAttribute(key string, value interface{})
	RecordError(err error)
}
