// Package dashboard contains the dashboard snapshot model consumed by the
// print subsystem. A Dashboard is retrieved once per print request and is
// never mutated afterwards.
package dashboard

import (
	"encoding/json"

	"github.com/dashprint/backend/internal/domain/shared"
)

// Placeholder widget types injected during snapshot preparation.
const (
	WidgetTypeInaccessible  = "inaccessible"
	WidgetTypeMisconfigured = "misconfigured"
)

// ErrUnavailable is returned when a dashboard does not exist or the caller
// may not view it. The two cases are deliberately indistinguishable.
var ErrUnavailable = shared.NewDomainError(shared.ErrNotFound.Code, "No permissions to referred object or it does not exist!")

// Position is a widget's placement in grid units
type Position struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Extent returns the lowest grid row the widget occupies
func (p Position) Extent() int {
	return p.Y + p.Height
}

// Widget is a single dashboard widget. Fields is the type-specific
// configuration and is passed through untouched.
type Widget struct {
	ID       uint64          `json:"widgetid"`
	Type     string          `json:"type"`
	Name     string          `json:"name"`
	ViewMode int             `json:"view_mode"`
	Pos      Position        `json:"pos"`
	Fields   json.RawMessage `json:"fields"`
}

// IsPlaceholder reports whether the widget stands in for one that could not
// be rendered.
func (w Widget) IsPlaceholder() bool {
	return w.Type == WidgetTypeInaccessible || w.Type == WidgetTypeMisconfigured
}

// Page is one logical partition of a dashboard
type Page struct {
	ID            uint64   `json:"dashboard_pageid"`
	Name          string   `json:"name"`
	DisplayPeriod int      `json:"display_period"`
	Widgets       []Widget `json:"widgets"`
}

// ContentRows returns the maximum widget extent on the page, or 0 for an
// empty page.
func (p Page) ContentRows() int {
	rows := 0
	for _, w := range p.Widgets {
		rows = max(rows, w.Pos.Extent())
	}
	return rows
}

// Dashboard is an immutable snapshot of a dashboard and its pages
type Dashboard struct {
	ID            uint64 `json:"dashboardid"`
	Name          string `json:"name"`
	DisplayPeriod int    `json:"display_period"`
	Pages         []Page `json:"pages"`
}

// PageCount returns the number of pages
func (d *Dashboard) PageCount() int {
	if d == nil {
		return 0
	}
	return len(d.Pages)
}

// WidgetCount returns the number of widgets across all pages
func (d *Dashboard) WidgetCount() int {
	if d == nil {
		return 0
	}
	n := 0
	for _, p := range d.Pages {
		n += len(p.Widgets)
	}
	return n
}
