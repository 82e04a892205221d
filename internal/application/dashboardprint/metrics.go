package dashboardprint

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/dashprint/backend/internal/infrastructure/telemetry"
)

// Render cache lookup results
const (
	cacheHit   = "hit"
	cacheMiss  = "miss"
	cacheError = "error"
)

// printMetrics holds the PDF pipeline instruments
type printMetrics struct {
	renderDuration *telemetry.Histogram
	cacheLookups   *telemetry.Counter
}

func newPrintMetrics(meter metric.Meter) (*printMetrics, error) {
	if meter == nil {
		meter = otel.GetMeterProvider().Meter(telemetry.MeterName)
	}

	renderDuration, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "dashprint_pdf_render_duration_seconds",
		Description: "Time spent printing a dashboard to PDF in the browser",
		Unit:        "s",
		Boundaries:  telemetry.PDFRenderBuckets,
	})
	if err != nil {
		return nil, err
	}

	cacheLookups, err := telemetry.NewCounter(meter,
		"dashprint_render_cache_lookups_total",
		"Render cache lookups by result",
		"{lookup}",
	)
	if err != nil {
		return nil, err
	}

	return &printMetrics{renderDuration: renderDuration, cacheLookups: cacheLookups}, nil
}

func noopPrintMetrics() *printMetrics {
	m, _ := newPrintMetrics(noop.NewMeterProvider().Meter(telemetry.MeterName))
	return m
}

func (m *printMetrics) cacheLookup(ctx context.Context, result string) {
	m.cacheLookups.Inc(ctx, telemetry.AttrCacheResult.String(result))
}

func (m *printMetrics) rendered(ctx context.Context, d time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.renderDuration.RecordDuration(ctx, d, telemetry.AttrOutcome.String(outcome))
}
