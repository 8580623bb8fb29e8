package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OpenTelemetryTracer is a thin wrapper around an otel tracer with map-based
// attribute helpers.
type OpenTelemetryTracer struct {
	tracer trace.Tracer
	name   string
}

// NewOpenTelemetryTracer creates a new OpenTelemetry tracer
func NewOpenTelemetryTracer(name string) *OpenTelemetryTracer {
	return &OpenTelemetryTracer{
		tracer: otel.Tracer(name),
		name:   name,
	}
}

// StartSpan starts a new span with the given name
func (t *OpenTelemetryTracer) StartSpan(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, spanName, opts...)
}

// StartSpanWithAttributes starts a new span with attributes
func (t *OpenTelemetryTracer) StartSpanWithAttributes(ctx context.Context, spanName string, attrs map[string]interface{}, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	spanAttrs := t.convertAttributes(attrs)
	allOpts := append(opts, trace.WithAttributes(spanAttrs...))
	return t.tracer.Start(ctx, spanName, allOpts...)
}

// convertAttributes converts a map to OpenTelemetry attributes
func (t *OpenTelemetryTracer) convertAttributes(attrs map[string]interface{}) []attribute.KeyValue {
	var result []attribute.KeyValue
	for k, v := range attrs {
		switch val := v.(type) {
		case string:
			result = append(result, attribute.String(k, val))
		case int:
			result = append(result, attribute.Int(k, val))
		case int64:
			result = append(result, attribute.Int64(k, val))
		case float64:
			result = append(result, attribute.Float64(k, val))
		case bool:
			result = append(result, attribute.Bool(k, val))
		case []string:
			result = append(result, attribute.StringSlice(k, val))
		default:
			result = append(result, attribute.String(k, fmt.Sprintf("%v", val)))
		}
	}
	return result
}

// StartHTTPSpan starts a span for an inbound HTTP request
func StartHTTPSpan(ctx context.Context, tracer *OpenTelemetryTracer, method, path string) (context.Context, trace.Span) {
	return tracer.StartSpanWithAttributes(ctx, fmt.Sprintf("%s %s", method, path), map[string]interface{}{
		"http.method": method,
		"http.target": path,
		"span.kind":   "server",
		"component":   "http",
	})
}

// StartScoringSpan starts a span covering one model invocation
func StartScoringSpan(ctx context.Context, tracer *OpenTelemetryTracer, transactionID string) (context.Context, trace.Span) {
	return tracer.StartSpanWithAttributes(ctx, "scoring.score", map[string]interface{}{
		"transaction.id": transactionID,
		"span.kind":      "internal",
		"component":      "scoring",
	})
}

// WithSpanError is a helper to record errors and set span status
func WithSpanError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
