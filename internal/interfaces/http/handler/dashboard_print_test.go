package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dashprint/backend/internal/application/dashboardprint"
	"github.com/dashprint/backend/internal/domain/dashboard"
	"github.com/dashprint/backend/internal/domain/printing"
	"github.com/dashprint/backend/internal/domain/shared"
	"github.com/dashprint/backend/internal/domain/timeperiod"
	infra "github.com/dashprint/backend/internal/infrastructure/printing"
	"github.com/dashprint/backend/internal/interfaces/http/dto"
	"github.com/dashprint/backend/internal/interfaces/http/middleware"
)

type MockDashboardPrinter struct {
	mock.Mock
}

func (m *MockDashboardPrinter) Prepare(ctx context.Context, req dashboardprint.PrintRequest) (*dashboardprint.PrintView, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dashboardprint.PrintView), args.Error(1)
}

func (m *MockDashboardPrinter) RenderHTML(ctx context.Context, view *dashboardprint.PrintView) (string, error) {
	args := m.Called(ctx, view)
	return args.String(0), args.Error(1)
}

func (m *MockDashboardPrinter) RenderError(ctx context.Context, err error) (string, error) {
	args := m.Called(ctx, err)
	return args.String(0), args.Error(1)
}

func (m *MockDashboardPrinter) RenderPDF(ctx context.Context, req dashboardprint.PrintRequest) (*dashboardprint.PDFDocument, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dashboardprint.PDFDocument), args.Error(1)
}

func (m *MockDashboardPrinter) Export(ctx context.Context, req dashboardprint.PrintRequest) (*dashboardprint.ExportResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dashboardprint.ExportResponse), args.Error(1)
}

func newPrintEngine(t *testing.T, printer DashboardPrinter, guard gin.HandlerFunc) *gin.Engine {
	t.Helper()
	require.NoError(t, middleware.SetupValidator())

	engine := gin.New()
	engine.Use(middleware.RequestID())
	DashboardPrintRoutes(NewDashboardPrintHandler(printer), guard).RegisterRoutes(engine.Group("/api/v1"))
	return engine
}

func doRequest(engine *gin.Engine, method, target string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func strPtr(s string) *string {
	return &s
}

func sampleView() *dashboardprint.PrintView {
	d := &dashboard.Dashboard{
		ID:   7,
		Name: "Ops",
		Pages: []dashboard.Page{{
			ID:      1,
			Widgets: []dashboard.Widget{{ID: 1, Type: "clock", Pos: dashboard.Position{Width: 4, Height: 3}, Fields: json.RawMessage(`{}`)}},
		}},
	}
	return &dashboardprint.PrintView{
		Layout: printing.Compose(d, printing.DefaultConstants(), printing.DefaultPageTitler),
		Bootstrap: &dashboardprint.Bootstrap{
			Dashboard:  d,
			TimePeriod: timeperiod.Period{ProfileIdx: "web.dashboard.filter", ProfileIdx2: 7, From: "now-1h", To: "now"},
		},
		Language: "en",
	}
}

func TestDashboardPrintHandler_PrintPage(t *testing.T) {
	printer := new(MockDashboardPrinter)
	engine := newPrintEngine(t, printer, nil)
	view := sampleView()

	printer.On("Prepare", mock.Anything, dashboardprint.PrintRequest{
		DashboardID: 7,
		From:        strPtr("now-1d"),
		To:          strPtr("now"),
		Language:    "de-DE,de;q=0.9",
	}).Return(view, nil)
	printer.On("RenderHTML", mock.Anything, view).Return("<html>ok</html>", nil)

	w := doRequest(engine, http.MethodGet, "/api/v1/dashboards/7/print?from=now-1d&to=now",
		http.Header{"Accept-Language": {"de-DE,de;q=0.9"}})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "<html>ok</html>", w.Body.String())
	assert.Empty(t, w.Header().Get(HeaderPrintError))
	printer.AssertExpectations(t)
}

func TestDashboardPrintHandler_PrintPage_Unavailable(t *testing.T) {
	printer := new(MockDashboardPrinter)
	engine := newPrintEngine(t, printer, nil)

	printer.On("Prepare", mock.Anything, mock.Anything).Return(nil, dashboard.ErrUnavailable)
	printer.On("RenderError", mock.Anything, dashboard.ErrUnavailable).
		Return(`<output class="msg-bad">No permissions to referred object or it does not exist!</output>`, nil)

	w := doRequest(engine, http.MethodGet, "/api/v1/dashboards/404/print", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "unavailable", w.Header().Get(HeaderPrintError))
	assert.Contains(t, w.Body.String(), "No permissions to referred object or it does not exist!")
	printer.AssertNotCalled(t, "RenderHTML", mock.Anything, mock.Anything)
}

func TestDashboardPrintHandler_PrintPage_ErrorPageFails(t *testing.T) {
	printer := new(MockDashboardPrinter)
	engine := newPrintEngine(t, printer, nil)

	printer.On("Prepare", mock.Anything, mock.Anything).Return(nil, dashboard.ErrUnavailable)
	printer.On("RenderError", mock.Anything, mock.Anything).Return("", errors.New("template broken"))

	w := doRequest(engine, http.MethodGet, "/api/v1/dashboards/1/print", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, w.Header().Get(HeaderPrintError))
}

func TestDashboardPrintHandler_InputValidation(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{"zero id", "/api/v1/dashboards/0/print"},
		{"non numeric id", "/api/v1/dashboards/abc/print"},
		{"negative id", "/api/v1/dashboards/-3/print"},
		{"bad from", "/api/v1/dashboards/1/print?from=yesterday"},
		{"bad to", "/api/v1/dashboards/1/print/layout?to=now-"},
		{"bad pdf window", "/api/v1/dashboards/1/print/pdf?from=2024-13"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			printer := new(MockDashboardPrinter)
			engine := newPrintEngine(t, printer, nil)

			w := doRequest(engine, http.MethodGet, tt.target, nil)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := decodeResponse(t, w)
			require.NotNil(t, resp.Error)
			assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
			printer.AssertNotCalled(t, "Prepare", mock.Anything, mock.Anything)
			printer.AssertNotCalled(t, "RenderPDF", mock.Anything, mock.Anything)
		})
	}
}

func TestDashboardPrintHandler_InvalidPeriod(t *testing.T) {
	printer := new(MockDashboardPrinter)
	engine := newPrintEngine(t, printer, nil)

	printer.On("Prepare", mock.Anything, mock.Anything).
		Return(nil, shared.NewDomainError("INVALID_PERIOD", "Minimum time period to display is 1 minutes."))

	w := doRequest(engine, http.MethodGet, "/api/v1/dashboards/1/print?from=now-30s&to=now", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, dto.ErrCodeValidationPeriod, resp.Error.Code)
	assert.Equal(t, "Minimum time period to display is 1 minutes.", resp.Error.Message)
}

func TestDashboardPrintHandler_Layout(t *testing.T) {
	t.Run("returns layout and bootstrap", func(t *testing.T) {
		printer := new(MockDashboardPrinter)
		engine := newPrintEngine(t, printer, nil)
		printer.On("Prepare", mock.Anything, mock.MatchedBy(func(req dashboardprint.PrintRequest) bool {
			return req.DashboardID == 7 && req.From == nil && req.To == nil
		})).Return(sampleView(), nil)

		w := doRequest(engine, http.MethodGet, "/api/v1/dashboards/7/print/layout", nil)

		require.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Success bool `json:"success"`
			Data    struct {
				Layout    printing.Layout          `json:"layout"`
				Bootstrap dashboardprint.Bootstrap `json:"bootstrap"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.True(t, body.Success)
		assert.Equal(t, "Ops", body.Data.Layout.Header.Title)
		require.Len(t, body.Data.Layout.Descriptors, 1)
		assert.Equal(t, "page_1", body.Data.Layout.Descriptors[0].Name)
		assert.Equal(t, uint64(7), body.Data.Bootstrap.Dashboard.ID)
		assert.Equal(t, "web.dashboard.filter", body.Data.Bootstrap.TimePeriod.ProfileIdx)
		assert.NotContains(t, w.Body.String(), `"Language"`)
	})

	t.Run("unavailable is 404", func(t *testing.T) {
		printer := new(MockDashboardPrinter)
		engine := newPrintEngine(t, printer, nil)
		printer.On("Prepare", mock.Anything, mock.Anything).Return(nil, dashboard.ErrUnavailable)

		w := doRequest(engine, http.MethodGet, "/api/v1/dashboards/9/print/layout", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeNotFound, resp.Error.Code)
		assert.NotEmpty(t, resp.Error.RequestID)
	})
}

func TestDashboardPrintHandler_PDF(t *testing.T) {
	t.Run("streams the document", func(t *testing.T) {
		printer := new(MockDashboardPrinter)
		engine := newPrintEngine(t, printer, nil)
		printer.On("RenderPDF", mock.Anything, mock.MatchedBy(func(req dashboardprint.PrintRequest) bool {
			return req.DashboardID == 7
		})).Return(&dashboardprint.PDFDocument{
			Data:     []byte("%PDF-1.7"),
			Filename: "dashboard-7.pdf",
			Cached:   true,
		}, nil)

		w := doRequest(engine, http.MethodGet, "/api/v1/dashboards/7/print/pdf", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Equal(t, `inline; filename="dashboard-7.pdf"`, w.Header().Get("Content-Disposition"))
		assert.Equal(t, "hit", w.Header().Get(HeaderPrintCache))
		assert.Equal(t, "8", w.Header().Get("Content-Length"))
		assert.Equal(t, "%PDF-1.7", w.Body.String())
	})

	t.Run("renderer disabled", func(t *testing.T) {
		printer := new(MockDashboardPrinter)
		engine := newPrintEngine(t, printer, nil)
		printer.On("RenderPDF", mock.Anything, mock.Anything).
			Return(nil, infra.NewRenderError(infra.ErrCodeDisabled, "PDF rendering is not enabled", nil))

		w := doRequest(engine, http.MethodGet, "/api/v1/dashboards/7/print/pdf", nil)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, dto.ErrCodeRendererDisabled, decodeResponse(t, w).Error.Code)
	})

	t.Run("guard runs first", func(t *testing.T) {
		printer := new(MockDashboardPrinter)
		guard := func(c *gin.Context) {
			c.AbortWithStatus(http.StatusTooManyRequests)
		}
		engine := newPrintEngine(t, printer, guard)

		w := doRequest(engine, http.MethodGet, "/api/v1/dashboards/7/print/pdf", nil)

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		printer.AssertNotCalled(t, "RenderPDF", mock.Anything, mock.Anything)
	})
}

func TestDashboardPrintHandler_Export(t *testing.T) {
	expires := time.Date(2024, 3, 1, 12, 15, 0, 0, time.UTC)

	t.Run("returns the download link", func(t *testing.T) {
		printer := new(MockDashboardPrinter)
		engine := newPrintEngine(t, printer, nil)
		printer.On("Export", mock.Anything, mock.MatchedBy(func(req dashboardprint.PrintRequest) bool {
			return req.DashboardID == 7 && req.From != nil && *req.From == "now-7d"
		})).Return(&dashboardprint.ExportResponse{
			Key:       "dashboards/7/1-2-x.pdf",
			URL:       "https://s3.example/dashboards/7/1-2-x.pdf?sig",
			ExpiresAt: expires,
			Size:      1024,
		}, nil)

		w := doRequest(engine, http.MethodPost, "/api/v1/dashboards/7/print/export?from=now-7d", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true,"data":{"key":"dashboards/7/1-2-x.pdf","url":"https://s3.example/dashboards/7/1-2-x.pdf?sig","expires_at":"2024-03-01T12:15:00Z","size":1024}}`, w.Body.String())
	})

	t.Run("storage failure is 502", func(t *testing.T) {
		printer := new(MockDashboardPrinter)
		engine := newPrintEngine(t, printer, nil)
		printer.On("Export", mock.Anything, mock.Anything).
			Return(nil, infra.NewRenderError(infra.ErrCodeStorageFailed, "failed to archive PDF", errors.New("denied")))

		w := doRequest(engine, http.MethodPost, "/api/v1/dashboards/7/print/export", nil)

		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Equal(t, dto.ErrCodeStorageFailed, decodeResponse(t, w).Error.Code)
	})

	t.Run("GET is not routed", func(t *testing.T) {
		engine := newPrintEngine(t, new(MockDashboardPrinter), nil)
		w := doRequest(engine, http.MethodGet, "/api/v1/dashboards/7/print/export", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
