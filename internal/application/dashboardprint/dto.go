package dashboardprint

import (
	"time"

	"github.com/dashprint/backend/internal/domain/dashboard"
	"github.com/dashprint/backend/internal/domain/printing"
	"github.com/dashprint/backend/internal/domain/timeperiod"
	"github.com/dashprint/backend/internal/infrastructure/widgetdefaults"
)

// PrintRequest identifies the dashboard to print and optionally overrides
// the time window. Language is the raw Accept-Language value.
type PrintRequest struct {
	DashboardID uint64
	From        *string
	To          *string
	Language    string
}

// Bootstrap is the payload handed to the client view on page load
type Bootstrap struct {
	Dashboard      *dashboard.Dashboard    `json:"dashboard"`
	WidgetDefaults widgetdefaults.Registry `json:"widget_defaults"`
	TimePeriod     timeperiod.Period       `json:"dashboard_time_period"`
}

// PrintView is everything needed to render a print page
type PrintView struct {
	Layout    *printing.Layout `json:"layout"`
	Bootstrap *Bootstrap       `json:"bootstrap"`
	Language  string           `json:"-"`
}

// PDFDocument is a rendered dashboard PDF
type PDFDocument struct {
	Data     []byte
	Filename string
	Cached   bool
	Period   timeperiod.Period
}

// ExportResponse describes an archived PDF
type ExportResponse struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
	Size      int       `json:"size"`
}
