package printing

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"strings"

	"github.com/dashprint/backend/internal/domain/printing"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var viewTemplates embed.FS

// DefaultTitle is the document title of the print view
const DefaultTitle = "Dashboard"

// Client assets loaded by the print view, relative to the asset base URL
var (
	DefaultScripts = []string{
		"js/flickerfreescreen.js",
		"js/gtlc.js",
		"js/leaflet.js",
		"js/leaflet.markercluster.js",
		"js/class.dashboard.js",
		"js/class.dashboard.page.js",
		"js/class.dashboard.widget.placeholder.js",
		"js/class.geomaps.js",
		"js/class.widget-base.js",
		"js/class.widget.js",
		"js/class.widget.inaccessible.js",
		"js/class.widget.iterator.js",
		"js/class.widget.misconfigured.js",
		"js/class.widget.paste-placeholder.js",
		"js/class.csvggraph.js",
		"js/class.svg.canvas.js",
		"js/class.svg.map.js",
		"js/class.csvggauge.js",
		"js/class.sortable.js",
		"js/monitoring.dashboard.print.js",
	}
	DefaultStylesheets = []string{
		"assets/styles/vendors/Leaflet/Leaflet/leaflet.css",
	}
)

// ViewConfig configures the view renderer
type ViewConfig struct {
	// AssetBaseURL prefixes every script and stylesheet path
	AssetBaseURL string
	// Scripts overrides DefaultScripts
	Scripts []string
	// Stylesheets overrides DefaultStylesheets
	Stylesheets []string
	Logger      *zap.Logger
}

// ViewData is what a print page is rendered from. Bootstrap is serialized
// as the argument of the client's view.init call.
type ViewData struct {
	Title     string
	Language  string
	Layout    *printing.Layout
	Bootstrap any
}

type viewModel struct {
	*ViewData
	Scripts     []string
	Stylesheets []string
}

type errorModel struct {
	Title    string
	Language string
	Message  string
}

// ViewRenderer renders print views from embedded templates
type ViewRenderer struct {
	page        *template.Template
	errorPage   *template.Template
	scripts     []string
	stylesheets []string
	logger      *zap.Logger
}

// NewViewRenderer parses the embedded templates
func NewViewRenderer(config *ViewConfig) (*ViewRenderer, error) {
	if config == nil {
		config = &ViewConfig{}
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	base := strings.TrimSuffix(config.AssetBaseURL, "/")
	funcMap := template.FuncMap{
		"asset": func(path string) string {
			if base == "" {
				return path
			}
			return base + "/" + strings.TrimPrefix(path, "/")
		},
		// the rules are built from integers and generated page names only
		"styles": func(l *printing.Layout) template.CSS {
			if l == nil {
				return ""
			}
			return template.CSS(l.Styles())
		},
	}

	page, err := template.New("dashboard.print.html").Funcs(funcMap).ParseFS(viewTemplates, "templates/dashboard.print.html")
	if err != nil {
		return nil, NewRenderError(ErrCodeInvalidHTML, "failed to parse print view template", err)
	}
	errorPage, err := template.New("error.html").ParseFS(viewTemplates, "templates/error.html")
	if err != nil {
		return nil, NewRenderError(ErrCodeInvalidHTML, "failed to parse error template", err)
	}

	scripts := config.Scripts
	if scripts == nil {
		scripts = DefaultScripts
	}
	stylesheets := config.Stylesheets
	if stylesheets == nil {
		stylesheets = DefaultStylesheets
	}

	return &ViewRenderer{
		page:        page,
		errorPage:   errorPage,
		scripts:     scripts,
		stylesheets: stylesheets,
		logger:      logger,
	}, nil
}

// Render renders the print page
func (r *ViewRenderer) Render(ctx context.Context, data *ViewData) (string, error) {
	if data == nil || data.Layout == nil {
		return "", NewRenderError(ErrCodeInvalidHTML, "view data has no layout", nil)
	}

	model := viewModel{
		ViewData:    withViewDefaults(*data),
		Scripts:     r.scripts,
		Stylesheets: r.stylesheets,
	}

	var buf bytes.Buffer
	if err := r.page.Execute(&buf, model); err != nil {
		r.logger.Error("failed to render print view", zap.Error(err))
		return "", NewRenderError(ErrCodeRenderFailed, "failed to execute print view template", err)
	}
	return buf.String(), nil
}

// RenderError renders a page holding nothing but the error message
func (r *ViewRenderer) RenderError(ctx context.Context, message string) (string, error) {
	model := errorModel{Title: DefaultTitle, Language: "en", Message: message}

	var buf bytes.Buffer
	if err := r.errorPage.Execute(&buf, model); err != nil {
		return "", NewRenderError(ErrCodeRenderFailed, "failed to execute error template", err)
	}
	return buf.String(), nil
}

func withViewDefaults(data ViewData) *ViewData {
	if data.Title == "" {
		data.Title = DefaultTitle
	}
	if data.Language == "" {
		data.Language = "en"
	}
	return &data
}
