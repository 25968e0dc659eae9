// Package tracing wraps protocol operations in OpenTelemetry spans. Without an
// SDK provider installed the global tracer is a no-op.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	dErrors "vouch/pkg/domain-errors"
)

const instrumentationName = "vouch"

// Start opens a span named op.
func Start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(instrumentationName).Start(ctx, op, trace.WithAttributes(attrs...))
}

// End records err on span and ends it. Domain rejections are tagged with
// their reason; only internal failures mark the span as errored.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		if reason := dErrors.ReasonOf(err); reason != "" {
			span.SetAttributes(attribute.String("vouch.reason", reason))
		}
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			span.SetStatus(codes.Error, err.Error())
		}
	}
	span.End()
}
