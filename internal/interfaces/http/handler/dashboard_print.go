package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dashprint/backend/internal/application/dashboardprint"
	"github.com/dashprint/backend/internal/domain/dashboard"
	"github.com/dashprint/backend/internal/infrastructure/logger"
	"github.com/dashprint/backend/internal/interfaces/http/dto"
)

// Response headers set by the print endpoints
const (
	HeaderPrintError = "X-Print-Error"
	HeaderPrintCache = "X-Print-Cache"
)

// DashboardPrinter is the print pipeline behind the handler
type DashboardPrinter interface {
	Prepare(ctx context.Context, req dashboardprint.PrintRequest) (*dashboardprint.PrintView, error)
	RenderHTML(ctx context.Context, view *dashboardprint.PrintView) (string, error)
	RenderError(ctx context.Context, err error) (string, error)
	RenderPDF(ctx context.Context, req dashboardprint.PrintRequest) (*dashboardprint.PDFDocument, error)
	Export(ctx context.Context, req dashboardprint.PrintRequest) (*dashboardprint.ExportResponse, error)
}

// DashboardPrintHandler serves the printable views of dashboards
type DashboardPrintHandler struct {
	BaseHandler
	printer DashboardPrinter
}

// NewDashboardPrintHandler creates a new DashboardPrintHandler
func NewDashboardPrintHandler(printer DashboardPrinter) *DashboardPrintHandler {
	return &DashboardPrintHandler{printer: printer}
}

// bindPrintRequest validates the dashboard ID and time window and reads the
// language from Accept-Language. It answers the request itself on failure.
func (h *DashboardPrintHandler) bindPrintRequest(c *gin.Context) (dashboardprint.PrintRequest, bool) {
	var id dto.DashboardIDRequest
	if err := c.ShouldBindUri(&id); err != nil {
		h.HandleBindError(c, err)
		return dashboardprint.PrintRequest{}, false
	}
	var period dto.TimePeriodRequest
	if err := c.ShouldBindQuery(&period); err != nil {
		h.HandleBindError(c, err)
		return dashboardprint.PrintRequest{}, false
	}
	return dashboardprint.PrintRequest{
		DashboardID: id.ID,
		From:        period.From,
		To:          period.To,
		Language:    c.GetHeader("Accept-Language"),
	}, true
}

// PrintPage renders the dashboard as a paged HTML document.
// An unavailable dashboard still answers 200, with the error block as page.
//
// GET /dashboards/:id/print?from=&to=
func (h *DashboardPrintHandler) PrintPage(c *gin.Context) {
	req, ok := h.bindPrintRequest(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	view, err := h.printer.Prepare(ctx, req)
	if errors.Is(err, dashboard.ErrUnavailable) {
		h.renderErrorPage(c, err)
		return
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}

	html, err := h.printer.RenderHTML(ctx, view)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

func (h *DashboardPrintHandler) renderErrorPage(c *gin.Context, cause error) {
	html, err := h.printer.RenderError(c.Request.Context(), cause)
	if err != nil {
		logger.GetGinLogger(c).Error("failed to render error page", zap.Error(err))
		h.InternalError(c, "An unexpected error occurred")
		return
	}
	c.Header(HeaderPrintError, "unavailable")
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// Layout returns the computed page layout and the client bootstrap.
//
// GET /dashboards/:id/print/layout?from=&to=
func (h *DashboardPrintHandler) Layout(c *gin.Context) {
	req, ok := h.bindPrintRequest(c)
	if !ok {
		return
	}

	view, err := h.printer.Prepare(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// PDF prints the dashboard through the headless browser.
//
// GET /dashboards/:id/print/pdf?from=&to=
func (h *DashboardPrintHandler) PDF(c *gin.Context) {
	req, ok := h.bindPrintRequest(c)
	if !ok {
		return
	}

	doc, err := h.printer.RenderPDF(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	cacheState := "miss"
	if doc.Cached {
		cacheState = "hit"
	}
	c.Header(HeaderPrintCache, cacheState)
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", doc.Filename))
	c.Header("Content-Length", strconv.Itoa(len(doc.Data)))
	c.Data(http.StatusOK, "application/pdf", doc.Data)
}

// Export archives the printed PDF and returns a time-limited download link.
//
// POST /dashboards/:id/print/export?from=&to=
func (h *DashboardPrintHandler) Export(c *gin.Context) {
	req, ok := h.bindPrintRequest(c)
	if !ok {
		return
	}

	resp, err := h.printer.Export(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
