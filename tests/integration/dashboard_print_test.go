package integration

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/dashprint/backend/internal/application/dashboardprint"
	"github.com/dashprint/backend/internal/application/timeselector"
	"github.com/dashprint/backend/internal/domain/dashboard"
	"github.com/dashprint/backend/internal/infrastructure/persistence"
	"github.com/dashprint/backend/internal/infrastructure/persistence/models"
	"github.com/dashprint/backend/internal/infrastructure/printing"
	"github.com/dashprint/backend/internal/infrastructure/widgetdefaults"
	"github.com/dashprint/backend/internal/interfaces/http/handler"
	"github.com/dashprint/backend/internal/interfaces/http/middleware"
	"github.com/dashprint/backend/internal/interfaces/http/router"
)

// seedDashboard stores a two page dashboard. The pages are inserted in
// reverse display order.
func seedDashboard(t *testing.T, tdb *TestDB) uint64 {
	t.Helper()

	d := models.DashboardModel{Name: "Operations", DisplayPeriod: 30}
	require.NoError(t, tdb.DB.Create(&d).Error)

	second := models.DashboardPageModel{
		DashboardID: d.ID,
		Name:        "Network",
		SortOrder:   1,
		Widgets: []models.WidgetModel{
			{Type: "clock", X: 0, Y: 2, Width: 12, Height: 3, Fields: `{}`},
		},
	}
	first := models.DashboardPageModel{
		DashboardID: d.ID,
		Name:        "Overview",
		SortOrder:   0,
		Widgets: []models.WidgetModel{
			{Type: "clock", Name: "Local time", X: 0, Y: 0, Width: 6, Height: 4, Fields: `{"time_type":"0"}`},
			{Type: "legacy_map", Name: "Secret map", X: 6, Y: 0, Width: 6, Height: 2, Fields: `{}`},
		},
	}
	require.NoError(t, tdb.DB.Create(&second).Error)
	require.NoError(t, tdb.DB.Create(&first).Error)
	return d.ID
}

func seedProfile(t *testing.T, tdb *TestDB, idx string, idx2 uint64, value string) {
	t.Helper()
	require.NoError(t, tdb.DB.Create(&models.ProfileModel{Idx: idx, Idx2: idx2, ValueStr: value}).Error)
}

func newPrintService(t *testing.T, tdb *TestDB) *dashboardprint.PrintService {
	t.Helper()
	log := zaptest.NewLogger(t)

	widgets, err := widgetdefaults.NewStore(&widgetdefaults.StoreConfig{Logger: log})
	require.NoError(t, err)
	views, err := printing.NewViewRenderer(&printing.ViewConfig{Logger: log})
	require.NoError(t, err)

	return dashboardprint.NewPrintService(dashboardprint.Dependencies{
		Dashboards: persistence.NewGormDashboardRepository(tdb.DB),
		Periods:    timeselector.NewService(persistence.NewGormProfileRepository(tdb.DB), log),
		Widgets:    widgets,
		Views:      views,
	}, dashboardprint.Options{}, log)
}

func TestDashboardRepository_FindByID(t *testing.T) {
	tdb := NewSharedTestDB(t)
	tdb.CleanTables()
	id := seedDashboard(t, tdb)

	repo := persistence.NewGormDashboardRepository(tdb.DB)

	t.Run("pages in display order", func(t *testing.T) {
		d, err := repo.FindByID(context.Background(), id)
		require.NoError(t, err)

		assert.Equal(t, "Operations", d.Name)
		require.Len(t, d.Pages, 2)
		assert.Equal(t, "Overview", d.Pages[0].Name)
		assert.Equal(t, "Network", d.Pages[1].Name)
		require.Len(t, d.Pages[0].Widgets, 2)
		assert.Equal(t, "clock", d.Pages[0].Widgets[0].Type)
		assert.Equal(t, dashboard.Position{X: 0, Y: 0, Width: 6, Height: 4}, d.Pages[0].Widgets[0].Pos)
		assert.JSONEq(t, `{"time_type":"0"}`, string(d.Pages[0].Widgets[0].Fields))
	})

	t.Run("missing dashboard is unavailable", func(t *testing.T) {
		_, err := repo.FindByID(context.Background(), id+100)
		assert.ErrorIs(t, err, dashboard.ErrUnavailable)
	})
}

func TestProfileRepository_GetString(t *testing.T) {
	tdb := NewSharedTestDB(t)
	tdb.CleanTables()

	seedProfile(t, tdb, "web.dashboard.filter.from", 7, "now-1d")
	seedProfile(t, tdb, "web.dashboard.filter.from", 7, "now-2h")
	seedProfile(t, tdb, "web.dashboard.filter.from", 8, "now-7d")

	repo := persistence.NewGormProfileRepository(tdb.DB)

	value, err := repo.GetString(context.Background(), "web.dashboard.filter.from", 7)
	require.NoError(t, err)
	assert.Equal(t, "now-2h", value)

	value, err = repo.GetString(context.Background(), "web.dashboard.filter.to", 7)
	require.NoError(t, err)
	assert.Empty(t, value)
}

func TestPrintService_Prepare(t *testing.T) {
	tdb := NewSharedTestDB(t)
	tdb.CleanTables()
	id := seedDashboard(t, tdb)
	seedProfile(t, tdb, timeselector.DashboardProfileIdx+".from", id, "now-2h")

	svc := newPrintService(t, tdb)

	view, err := svc.Prepare(context.Background(), dashboardprint.PrintRequest{DashboardID: id})
	require.NoError(t, err)

	layout := view.Layout
	assert.Equal(t, "Operations", layout.Header.Title)
	require.Len(t, layout.Descriptors, 2)
	// first page: 4 rows plus padding, page title, margin and header
	assert.Equal(t, 1940, layout.Descriptors[0].Width)
	assert.Equal(t, 4*70+12+50+10+60, layout.Descriptors[0].Height)
	assert.Equal(t, 5*70+12+50+10, layout.Descriptors[1].Height)
	require.Len(t, layout.Containers, 2)
	assert.Equal(t, "Overview", layout.Containers[0].Title)

	widgets := view.Bootstrap.Dashboard.Pages[0].Widgets
	assert.Equal(t, "clock", widgets[0].Type)
	assert.Equal(t, dashboard.WidgetTypeInaccessible, widgets[1].Type)
	assert.Empty(t, widgets[1].Name)

	period := view.Bootstrap.TimePeriod
	assert.Equal(t, "now-2h", period.From)
	assert.Equal(t, "now", period.To)
	assert.Equal(t, timeselector.DashboardProfileIdx, period.ProfileIdx)
	assert.Equal(t, id, period.ProfileIdx2)

	t.Run("explicit range wins over stored one", func(t *testing.T) {
		from := "now-6h"
		view, err := svc.Prepare(context.Background(), dashboardprint.PrintRequest{DashboardID: id, From: &from})
		require.NoError(t, err)
		assert.Equal(t, "now-6h", view.Bootstrap.TimePeriod.From)
	})
}

func TestDashboardPrint_HTTP(t *testing.T) {
	tdb := NewSharedTestDB(t)
	tdb.CleanTables()
	id := seedDashboard(t, tdb)

	gin.SetMode(gin.TestMode)
	require.NoError(t, middleware.SetupValidator())

	engine := gin.New()
	engine.Use(middleware.RequestID())
	router.NewRouter(engine).
		Register(handler.DashboardPrintRoutes(handler.NewDashboardPrintHandler(newPrintService(t, tdb)), nil)).
		Setup()

	t.Run("print page", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboards/"+uintString(id)+"/print", nil)
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, w.Body.String(), "@page page_1 { size: 1940px 412px; }")
		assert.Contains(t, w.Body.String(), "Operations")
	})

	t.Run("unknown dashboard renders error page", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboards/"+uintString(id+100)+"/print", nil)
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "unavailable", w.Header().Get(handler.HeaderPrintError))
		assert.Contains(t, w.Body.String(), "No permissions to referred object or it does not exist!")
	})

	t.Run("layout as json", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboards/"+uintString(id)+"/print/layout?from=now-1d", nil)
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"from":"now-1d"`)
	})
}

func uintString(v uint64) string {
	return strconv.FormatUint(v, 10)
}
