package models

import (
	"encoding/json"
	"time"

	"github.com/dashprint/backend/internal/domain/dashboard"
)

// DashboardModel is the GORM model for the dashboards table
type DashboardModel struct {
	ID            uint64               `gorm:"column:dashboardid;primaryKey;autoIncrement"`
	Name          string               `gorm:"type:varchar(255);not null"`
	DisplayPeriod int                  `gorm:"column:display_period;not null;default:30"`
	Pages         []DashboardPageModel `gorm:"foreignKey:DashboardID;references:ID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time            `gorm:"not null"`
	UpdatedAt     time.Time            `gorm:"not null"`
}

// TableName returns the table name for DashboardModel
func (DashboardModel) TableName() string {
	return "dashboards"
}

// ToDomain converts DashboardModel to a dashboard snapshot. Pages and
// widgets keep the order they were loaded in.
func (m *DashboardModel) ToDomain() *dashboard.Dashboard {
	d := &dashboard.Dashboard{
		ID:            m.ID,
		Name:          m.Name,
		DisplayPeriod: m.DisplayPeriod,
		Pages:         make([]dashboard.Page, len(m.Pages)),
	}
	for i := range m.Pages {
		d.Pages[i] = m.Pages[i].ToDomain()
	}
	return d
}

// DashboardPageModel is the GORM model for the dashboard_pages table
type DashboardPageModel struct {
	ID            uint64        `gorm:"column:dashboard_pageid;primaryKey;autoIncrement"`
	DashboardID   uint64        `gorm:"column:dashboardid;not null;index"`
	Name          string        `gorm:"type:varchar(255);not null;default:''"`
	DisplayPeriod int           `gorm:"column:display_period;not null;default:0"`
	SortOrder     int           `gorm:"column:sortorder;not null;default:0"`
	Widgets       []WidgetModel `gorm:"foreignKey:DashboardPageID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for DashboardPageModel
func (DashboardPageModel) TableName() string {
	return "dashboard_pages"
}

// ToDomain converts DashboardPageModel to a dashboard page
func (m *DashboardPageModel) ToDomain() dashboard.Page {
	p := dashboard.Page{
		ID:            m.ID,
		Name:          m.Name,
		DisplayPeriod: m.DisplayPeriod,
		Widgets:       make([]dashboard.Widget, len(m.Widgets)),
	}
	for i := range m.Widgets {
		p.Widgets[i] = m.Widgets[i].ToDomain()
	}
	return p
}

// WidgetModel is the GORM model for the widgets table. Fields holds the
// type specific configuration as JSON.
type WidgetModel struct {
	ID              uint64 `gorm:"column:widgetid;primaryKey;autoIncrement"`
	DashboardPageID uint64 `gorm:"column:dashboard_pageid;not null;index"`
	Type            string `gorm:"type:varchar(255);not null"`
	Name            string `gorm:"type:varchar(255);not null;default:''"`
	X               int    `gorm:"not null;default:0"`
	Y               int    `gorm:"not null;default:0"`
	Width           int    `gorm:"not null;default:1"`
	Height          int    `gorm:"not null;default:2"`
	ViewMode        int    `gorm:"column:view_mode;not null;default:0"`
	Fields          string `gorm:"type:jsonb;not null;default:'{}'"`
}

// TableName returns the table name for WidgetModel
func (WidgetModel) TableName() string {
	return "widgets"
}

// ToDomain converts WidgetModel to a dashboard widget. Fields are passed
// through unparsed.
func (m *WidgetModel) ToDomain() dashboard.Widget {
	return dashboard.Widget{
		ID:       m.ID,
		Type:     m.Type,
		Name:     m.Name,
		ViewMode: m.ViewMode,
		Pos: dashboard.Position{
			X:      m.X,
			Y:      m.Y,
			Width:  m.Width,
			Height: m.Height,
		},
		Fields: json.RawMessage(m.Fields),
	}
}
