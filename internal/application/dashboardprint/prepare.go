package dashboardprint

import (
	"bytes"
	"encoding/json"

	"github.com/dashprint/backend/internal/domain/dashboard"
	"github.com/dashprint/backend/internal/infrastructure/widgetdefaults"
)

var emptyFields = json.RawMessage(`{}`)

// prepareSnapshot returns a copy of d in which widgets the client cannot
// render are replaced by placeholders. Positions are kept so a placeholder
// occupies the space of the widget it replaces.
func prepareSnapshot(d *dashboard.Dashboard, registry widgetdefaults.Registry) (*dashboard.Dashboard, int) {
	prepared := &dashboard.Dashboard{
		ID:            d.ID,
		Name:          d.Name,
		DisplayPeriod: d.DisplayPeriod,
		Pages:         make([]dashboard.Page, len(d.Pages)),
	}

	replaced := 0
	for i, page := range d.Pages {
		widgets := make([]dashboard.Widget, len(page.Widgets))
		for j, w := range page.Widgets {
			widgets[j] = prepareWidget(w, registry)
			if widgets[j].Type != w.Type {
				replaced++
			}
		}
		page.Widgets = widgets
		prepared.Pages[i] = page
	}
	return prepared, replaced
}

func prepareWidget(w dashboard.Widget, registry widgetdefaults.Registry) dashboard.Widget {
	if w.IsPlaceholder() {
		return w
	}
	if !registry.Has(w.Type) {
		return dashboard.Widget{
			ID:       w.ID,
			Type:     dashboard.WidgetTypeInaccessible,
			ViewMode: w.ViewMode,
			Pos:      w.Pos,
			Fields:   emptyFields,
		}
	}

	fields, ok := normalizeFields(w.Fields)
	if !ok {
		return dashboard.Widget{
			ID:       w.ID,
			Type:     dashboard.WidgetTypeMisconfigured,
			Name:     w.Name,
			ViewMode: w.ViewMode,
			Pos:      w.Pos,
			Fields:   emptyFields,
		}
	}
	w.Fields = fields
	return w
}

// normalizeFields accepts a JSON object, treating absent and null as empty
func normalizeFields(raw json.RawMessage) (json.RawMessage, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return emptyFields, true
	}
	if trimmed[0] != '{' || !json.Valid(trimmed) {
		return nil, false
	}
	return raw, true
}
