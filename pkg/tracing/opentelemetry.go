package tracing

import (
	"context"
	"fmt"

	"github.com/tagus/physai-agent/pkg/interfaces"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.opentelemetry.io/otel/trace"
)

const spanPrefix = "physai/"

// OTelTracer implements interfaces.Tracer using OpenTelemetry
type OTelTracer struct {
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider
	enabled  bool
}

// OTelSpan wraps an OpenTelemetry span to implement interfaces.Span
type OTelSpan struct {
	span trace.Span
}

// End implements interfaces.Span
func (s *OTelSpan) End() {
	s.span.End()
}

// AddEvent implements interfaces.Span
func (s *OTelSpan) AddEvent(name string, attributes map[string]interface{}) {
	s.span.AddEvent(name, trace.WithAttributes(toAttributes(attributes)...))
}

// SetAttribute implements interfaces.Span
func (s *OTelSpan) SetAttribute(key string, value interface{}) {
	s.span.SetAttributes(toAttribute(key, value))
}

// RecordError implements interfaces.Span
func (s *OTelSpan) RecordError(err error) {
	s.span.RecordError(err)
}

// OTelConfig contains configuration for OpenTelemetry
type OTelConfig struct {
	// Enabled determines whether spans are recorded
	Enabled bool

	// ServiceName is reported as the service.name resource attribute
	ServiceName string

	// CollectorEndpoint is the OTLP/gRPC collector address
	CollectorEndpoint string

	// Tracer allows passing a pre-built tracer instead of creating an exporter
	Tracer trace.Tracer
}

// NewOTelTracer creates a tracer. A disabled config yields a tracer whose spans are no-ops.
func NewOTelTracer(ctx context.Context, config OTelConfig) (*OTelTracer, error) {
	if !config.Enabled {
		return &OTelTracer{enabled: false}, nil
	}

	if config.Tracer != nil {
		return &OTelTracer{tracer: config.Tracer, enabled: true}, nil
	}

	exporter, err := otlptrace.New(
		ctx,
		otlptracegrpc.NewClient(
			otlptracegrpc.WithEndpoint(config.CollectorEndpoint),
			otlptracegrpc.WithInsecure(),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(config.ServiceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return &OTelTracer{
		tracer:   tp.Tracer(config.ServiceName),
		provider: tp,
		enabled:  true,
	}, nil
}

// Enabled reports whether spans are recorded
func (t *OTelTracer) Enabled() bool {
	return t.enabled
}

// Shutdown flushes and stops the tracer provider created by NewOTelTracer
func (t *OTelTracer) Shutdown(ctx context.Context) error {
	if t.provider == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}

// StartSpan implements interfaces.Tracer
func (t *OTelTracer) StartSpan(ctx context.Context, name string) (context.Context, interfaces.Span) {
	if !t.enabled {
		return ctx, &OTelSpan{span: trace.SpanFromContext(ctx)}
	}

	attrs := []attribute.KeyValue{}
	if runID := RunIDFromContext(ctx); runID != "" {
		attrs = append(attrs, attribute.String("run_id", runID))
	}

	ctx, span := t.tracer.Start(ctx, spanPrefix+name, trace.WithAttributes(attrs...))
	return ctx, &OTelSpan{span: span}
}

// StartTraceSession implements interfaces.Tracer
func (t *OTelTracer) StartTraceSession(ctx context.Context, sessionID string) (context.Context, interfaces.Span) {
	if !t.enabled {
		return ctx, &OTelSpan{span: trace.SpanFromContext(ctx)}
	}

	attrs := []attribute.KeyValue{attribute.String("trace.session_id", sessionID)}
	if runID := RunIDFromContext(ctx); runID != "" {
		attrs = append(attrs, attribute.String("run_id", runID))
	}
	ctx, span := t.tracer.Start(ctx, spanPrefix+"trace-session", trace.WithAttributes(attrs...))
	return ctx, &OTelSpan{span: span}
}

func toAttributes(values map[string]interface{}) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(values))
	for k, v := range values {
		attrs = append(attrs, toAttribute(k, v))
	}
	return attrs
}

func toAttribute(key string, value interface{}) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case bool:
		return attribute.Bool(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	default:
		return attribute.String(key, fmt.Sprintf("%v", v))
	}
}
