// Package dashboardprint turns a stored dashboard into a paged print view
// and, on demand, into an archived PDF.
package dashboardprint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/dashprint/backend/internal/application/timeselector"
	"github.com/dashprint/backend/internal/domain/dashboard"
	"github.com/dashprint/backend/internal/domain/printing"
	"github.com/dashprint/backend/internal/domain/shared"
	"github.com/dashprint/backend/internal/domain/timeperiod"
	"github.com/dashprint/backend/internal/infrastructure/cache"
	"github.com/dashprint/backend/internal/infrastructure/i18n"
	infra "github.com/dashprint/backend/internal/infrastructure/printing"
	"github.com/dashprint/backend/internal/infrastructure/storage"
	"github.com/dashprint/backend/internal/infrastructure/telemetry"
	"github.com/dashprint/backend/internal/infrastructure/widgetdefaults"
)

const spanComponent = "dashboard_print"

// Defaults for the PDF pipeline
const (
	DefaultCacheTTL          = 5 * time.Minute
	DefaultPresignExpiration = 15 * time.Minute
)

// PeriodResolver resolves the effective time window of a request
type PeriodResolver interface {
	Resolve(ctx context.Context, opts timeselector.Options) (timeperiod.Period, error)
}

// WidgetCatalog provides the per-type widget defaults
type WidgetCatalog interface {
	Registry() widgetdefaults.Registry
}

// ViewRenderer renders print pages
type ViewRenderer interface {
	Render(ctx context.Context, data *infra.ViewData) (string, error)
	RenderError(ctx context.Context, message string) (string, error)
}

// Dependencies groups the collaborators of PrintService. Renderer, Cache and
// Archive are optional.
type Dependencies struct {
	Dashboards dashboard.Repository
	Periods    PeriodResolver
	Widgets    WidgetCatalog
	Views      ViewRenderer
	Renderer   infra.PDFRenderer
	Cache      cache.RenderCache
	Archive    storage.ArchiveStorage
}

// Options tunes PrintService
type Options struct {
	Constants         printing.Constants
	CacheTTL          time.Duration
	PresignExpiration time.Duration
	// AssetBaseURL is handed to the PDF renderer to resolve the view's
	// script and stylesheet links
	AssetBaseURL string
	// Meter records render and cache metrics; the global meter provider is
	// used when nil
	Meter metric.Meter
}

// PrintService prepares dashboard print views
type PrintService struct {
	deps      Dependencies
	constants printing.Constants
	cacheTTL  time.Duration
	presign   time.Duration
	assetBase string
	metrics   *printMetrics
	logger    *zap.Logger
}

// NewPrintService creates a new PrintService
func NewPrintService(deps Dependencies, opts Options, logger *zap.Logger) *PrintService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Renderer == nil {
		deps.Renderer = infra.DisabledRenderer{}
	}
	if deps.Archive == nil {
		deps.Archive = storage.NewStubArchiveStorage()
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	if opts.PresignExpiration <= 0 {
		opts.PresignExpiration = DefaultPresignExpiration
	}
	if opts.Constants == (printing.Constants{}) {
		opts.Constants = printing.DefaultConstants()
	}
	metrics, err := newPrintMetrics(opts.Meter)
	if err != nil {
		logger.Warn("print metrics unavailable, recording nothing", zap.Error(err))
		metrics = noopPrintMetrics()
	}
	return &PrintService{
		deps:      deps,
		constants: opts.Constants,
		cacheTTL:  opts.CacheTTL,
		presign:   opts.PresignExpiration,
		assetBase: opts.AssetBaseURL,
		metrics:   metrics,
		logger:    logger,
	}
}

// Prepare retrieves the dashboard, lays it out in print pages and builds the
// client bootstrap. An unavailable dashboard yields dashboard.ErrUnavailable
// and nothing else is computed.
func (s *PrintService) Prepare(ctx context.Context, req PrintRequest) (*PrintView, error) {
	ctx, span := telemetry.StartSpan(ctx, spanComponent, "prepare",
		attribute.Int64(telemetry.AttrDashboardID, int64(req.DashboardID)))
	defer span.End()

	start := time.Now()

	stored, err := s.deps.Dashboards.FindByID(ctx, req.DashboardID)
	if err != nil {
		if errors.Is(err, dashboard.ErrUnavailable) {
			s.logger.Info("dashboard unavailable for printing", zap.Uint64("dashboard_id", req.DashboardID))
			return nil, dashboard.ErrUnavailable
		}
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to retrieve dashboard: %w", err)
	}
	if stored == nil {
		return nil, dashboard.ErrUnavailable
	}

	registry := s.deps.Widgets.Registry()
	snapshot, replaced := prepareSnapshot(stored, registry)
	if replaced > 0 {
		s.logger.Debug("replaced unrenderable widgets with placeholders",
			zap.Uint64("dashboard_id", snapshot.ID),
			zap.Int("widgets", replaced))
	}

	tag := i18n.Match(req.Language)
	layout := printing.Compose(snapshot, s.constants, i18n.Titler(tag))

	period, err := s.deps.Periods.Resolve(ctx, timeselector.Options{
		ProfileIdx:  timeselector.DashboardProfileIdx,
		ProfileIdx2: snapshot.ID,
		From:        req.From,
		To:          req.To,
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int(telemetry.AttrPageCount, snapshot.PageCount()),
		attribute.Int(telemetry.AttrWidgetCount, snapshot.WidgetCount()),
	)
	s.logger.Debug("dashboard print view prepared",
		zap.Uint64("dashboard_id", snapshot.ID),
		zap.Int("pages", snapshot.PageCount()),
		zap.Duration("duration", time.Since(start)))

	return &PrintView{
		Layout: layout,
		Bootstrap: &Bootstrap{
			Dashboard:      snapshot,
			WidgetDefaults: registry,
			TimePeriod:     period,
		},
		Language: tag.String(),
	}, nil
}

// RenderHTML renders a prepared view as a print page
func (s *PrintService) RenderHTML(ctx context.Context, view *PrintView) (string, error) {
	if view == nil {
		return "", shared.NewDomainError(shared.ErrInvalidState.Code, "Print view is not prepared")
	}
	return s.deps.Views.Render(ctx, &infra.ViewData{
		Language:  view.Language,
		Layout:    view.Layout,
		Bootstrap: view.Bootstrap,
	})
}

// RenderError renders the page shown instead of the dashboard when err
// prevents printing. Only domain errors expose their message.
func (s *PrintService) RenderError(ctx context.Context, err error) (string, error) {
	message := "An unexpected error occurred"
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		message = domainErr.Message
	}
	return s.deps.Views.RenderError(ctx, message)
}

// RenderPDF prepares the dashboard and prints it through the browser,
// reusing a cached document while the dashboard and the period
// expressions are unchanged.
func (s *PrintService) RenderPDF(ctx context.Context, req PrintRequest) (*PDFDocument, error) {
	view, err := s.Prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	html, err := s.RenderHTML(ctx, view)
	if err != nil {
		return nil, err
	}
	return s.renderPDF(ctx, view, html)
}

func (s *PrintService) renderPDF(ctx context.Context, view *PrintView, html string) (*PDFDocument, error) {
	d := view.Bootstrap.Dashboard
	ctx, span := telemetry.StartSpan(ctx, spanComponent, "render_pdf",
		attribute.Int64(telemetry.AttrDashboardID, int64(d.ID)))
	defer span.End()

	doc := &PDFDocument{
		Filename: fmt.Sprintf("dashboard-%d.pdf", d.ID),
		Period:   view.Bootstrap.TimePeriod,
	}

	key := s.cacheKey(view)
	if s.deps.Cache != nil && key != "" {
		data, err := s.deps.Cache.Get(ctx, key)
		switch {
		case err == nil:
			s.metrics.cacheLookup(ctx, cacheHit)
			span.SetAttributes(attribute.Bool(telemetry.AttrCacheHit, true))
			doc.Data = data
			doc.Cached = true
			return doc, nil
		case errors.Is(err, cache.ErrCacheMiss):
			s.metrics.cacheLookup(ctx, cacheMiss)
		default:
			s.metrics.cacheLookup(ctx, cacheError)
			s.logger.Warn("render cache lookup failed", zap.Error(err))
		}
	}
	span.SetAttributes(attribute.Bool(telemetry.AttrCacheHit, false))

	start := time.Now()
	result, err := s.deps.Renderer.Render(ctx, &infra.RenderRequest{
		HTML:    html,
		BaseURL: s.assetBase,
		Title:   d.Name,
	})
	s.metrics.rendered(ctx, time.Since(start), err)
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("failed to render dashboard PDF",
			zap.Uint64("dashboard_id", d.ID),
			zap.Error(err))
		return nil, err
	}
	doc.Data = result.PDFData
	span.SetAttributes(attribute.Int(telemetry.AttrPDFBytes, len(doc.Data)))

	s.logger.Info("dashboard PDF rendered",
		zap.Uint64("dashboard_id", d.ID),
		zap.Int("pages", result.PageCount),
		zap.Int("size", len(doc.Data)),
		zap.Duration("duration", result.RenderDuration))

	if s.deps.Cache != nil && key != "" {
		if err := s.deps.Cache.Set(ctx, key, doc.Data, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache rendered PDF", zap.Error(err))
		}
	}
	return doc, nil
}

// cacheKey identifies a rendered document by the dashboard snapshot and the
// period expressions. The resolved timestamps are left out so a relative
// window such as now-1h keeps hitting until the entry expires.
func (s *PrintService) cacheKey(view *PrintView) string {
	snapshot, err := json.Marshal(view.Bootstrap.Dashboard)
	if err != nil {
		s.logger.Warn("cannot derive render cache key", zap.Error(err))
		return ""
	}
	period := view.Bootstrap.TimePeriod
	return cache.Key(string(snapshot), period.From, period.To, view.Language)
}

// Export renders the dashboard to PDF, archives it and returns a
// time-limited download link.
func (s *PrintService) Export(ctx context.Context, req PrintRequest) (*ExportResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, spanComponent, "export",
		attribute.Int64(telemetry.AttrDashboardID, int64(req.DashboardID)))
	defer span.End()

	doc, err := s.RenderPDF(ctx, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	key := storage.ArchiveKey(req.DashboardID, doc.Period.FromTS, doc.Period.ToTS)
	if err := s.deps.Archive.Upload(ctx, key, doc.Data, storage.ContentTypePDF); err != nil {
		if errors.Is(err, storage.ErrStorageDisabled) {
			return nil, infra.NewRenderError(infra.ErrCodeStorageOff, "PDF archiving is not enabled", err)
		}
		telemetry.RecordError(span, err)
		return nil, infra.NewRenderError(infra.ErrCodeStorageFailed, "failed to archive PDF", err)
	}

	url, expiresAt, err := s.deps.Archive.GenerateDownloadURL(ctx, key, s.presign)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, infra.NewRenderError(infra.ErrCodeStorageFailed, "failed to generate download URL", err)
	}

	s.logger.Info("dashboard PDF archived",
		zap.Uint64("dashboard_id", req.DashboardID),
		zap.String("key", key),
		zap.Int("size", len(doc.Data)))

	return &ExportResponse{
		Key:       key,
		URL:       url,
		ExpiresAt: expiresAt,
		Size:      len(doc.Data),
	}, nil
}
