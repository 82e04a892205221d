package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation name of the print service's spans
const TracerName = "github.com/dashprint/backend"

// Span attribute keys
const (
	AttrDashboardID = "dashboard.id"
	AttrPageCount   = "dashboard.pages"
	AttrWidgetCount = "dashboard.widgets"
	AttrCacheHit    = "print.cache_hit"
	AttrPDFBytes    = "print.pdf_bytes"
)

// StartSpan starts an internal span named {component}.{operation}. The
// caller must End it.
//
//	ctx, span := telemetry.StartSpan(ctx, "dashboard_print", "prepare",
//	    attribute.Int64(telemetry.AttrDashboardID, 42))
//	defer span.End()
func StartSpan(ctx context.Context, component, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, fmt.Sprintf("%s.%s", component, operation),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// RecordError records err on the span and marks it failed
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
