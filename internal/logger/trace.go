package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

// SpanTraceID is a TraceIDFn reading the active OpenTelemetry span.
func SpanTraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}
