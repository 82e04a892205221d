package printing

import (
	"context"
	"strings"
	"testing"

	"github.com/dashprint/backend/internal/domain/dashboard"
	"github.com/dashprint/backend/internal/domain/printing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func composeTestLayout(pages ...dashboard.Page) *printing.Layout {
	d := &dashboard.Dashboard{ID: 1, Name: "Ops <overview>", Pages: pages}
	return printing.Compose(d, printing.DefaultConstants(), nil)
}

func TestViewRenderer_MultiPage(t *testing.T) {
	r, err := NewViewRenderer(&ViewConfig{AssetBaseURL: "https://monitor.example.com/"})
	require.NoError(t, err)

	layout := composeTestLayout(
		dashboard.Page{Name: "Overview", Widgets: []dashboard.Widget{{Pos: dashboard.Position{Height: 5}}}},
		dashboard.Page{},
		dashboard.Page{Name: "Network"},
	)
	html, err := r.Render(context.Background(), &ViewData{
		Layout:    layout,
		Bootstrap: map[string]any{"dashboard": map[string]any{"dashboardid": 1}},
	})
	require.NoError(t, err)

	assert.Contains(t, html, `<header class="header-title page_1"><h1>Ops &lt;overview&gt;</h1></header>`)
	assert.Equal(t, 3, strings.Count(html, `<div class="dashboard-grid"></div>`))
	assert.Contains(t, html, `<div class="dashboard-page page_1"><h1>Overview</h1>`)
	assert.Contains(t, html, `<div class="dashboard-page page_2"><h1>Page 2</h1>`)
	assert.Contains(t, html, `<div class="dashboard-page page_3"><h1>Network</h1>`)

	assert.Equal(t, 1, strings.Count(html, "<style>"))
	assert.Equal(t, 3, strings.Count(html, "@page page_"))
	assert.Contains(t, html, "@page page_1 { size: 1940px 482px; }")
	assert.Contains(t, html, "@page page_2 { size: 1940px 72px; }")

	assert.Equal(t, 1, strings.Count(html, "view.init("))
	assert.Contains(t, html, `"dashboardid":1`)
	assert.Contains(t, html, `src="https://monitor.example.com/js/class.dashboard.js"`)
	assert.Contains(t, html, "<title>Dashboard</title>")
}

func TestViewRenderer_SinglePageHasNoPageTitle(t *testing.T) {
	r, err := NewViewRenderer(nil)
	require.NoError(t, err)

	layout := composeTestLayout(dashboard.Page{Name: "Ignored"})
	html, err := r.Render(context.Background(), &ViewData{Layout: layout, Bootstrap: struct{}{}})
	require.NoError(t, err)

	assert.Contains(t, html, `<div class="dashboard-page page_1"><div class="dashboard-grid"></div></div>`)
	assert.NotContains(t, html, "<h1>Ignored</h1>")
	assert.Contains(t, html, `src="js/gtlc.js"`)
	assert.Contains(t, html, "@page page_1 { size: 1940px 82px; }")
}

func TestViewRenderer_NoLayout(t *testing.T) {
	r, err := NewViewRenderer(nil)
	require.NoError(t, err)

	_, err = r.Render(context.Background(), &ViewData{})
	require.Error(t, err)

	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, ErrCodeInvalidHTML, renderErr.Code)
}

func TestViewRenderer_RenderError(t *testing.T) {
	r, err := NewViewRenderer(nil)
	require.NoError(t, err)

	html, err := r.RenderError(context.Background(), dashboard.ErrUnavailable.Error())
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(html, `class="msg-bad"`))
	assert.Contains(t, html, "No permissions to referred object or it does not exist!")
	assert.NotContains(t, html, "dashboard-page")
	assert.NotContains(t, html, "<style>")
	assert.NotContains(t, html, "view.init")
}

func TestViewRenderer_CustomAssets(t *testing.T) {
	r, err := NewViewRenderer(&ViewConfig{Scripts: []string{"js/only.js"}, Stylesheets: []string{}})
	require.NoError(t, err)

	html, err := r.Render(context.Background(), &ViewData{Layout: composeTestLayout(dashboard.Page{})})
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(html, "<script src="))
	assert.NotContains(t, html, "leaflet.css")
}

// attrValues returns every value of attr in document
func attrValues(document, attr string) []string {
	var values []string
	marker := attr + `="`
	for rest := document; ; {
		i := strings.Index(rest, marker)
		if i < 0 {
			return values
		}
		rest = rest[i+len(marker):]
		end := strings.IndexByte(rest, '"')
		if end < 0 {
			return values
		}
		values = append(values, rest[:end])
		rest = rest[end:]
	}
}

func TestViewRenderer_ChromeAssetsResolve(t *testing.T) {
	const base = "https://monitor.example.com/zabbix"
	r, err := NewViewRenderer(&ViewConfig{AssetBaseURL: base})
	require.NoError(t, err)

	html, err := r.Render(context.Background(), &ViewData{Layout: composeTestLayout(dashboard.Page{})})
	require.NoError(t, err)
	document := withBaseHref(html, base)

	srcs := attrValues(document, "src")
	require.Len(t, srcs, len(DefaultScripts))
	for _, src := range srcs {
		assert.True(t, IsAbsoluteHTTPURL(src), "script %q does not resolve outside the page origin", src)
		assert.True(t, strings.HasPrefix(src, base+"/js/"), src)
	}
	assert.NotContains(t, document, `src="js/`)

	hrefs := attrValues(document, "href")
	require.Len(t, hrefs, len(DefaultStylesheets)+1)
	assert.Equal(t, base+"/", hrefs[0])
	for _, href := range hrefs {
		assert.True(t, IsAbsoluteHTTPURL(href), href)
	}
}
