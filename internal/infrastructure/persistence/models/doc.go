// Package models contains GORM persistence models that map to database tables.
// They are kept separate from the domain snapshot types so the domain layer
// stays free of ORM tags; each model converts itself with ToDomain.
//
// Structure:
// - dashboard.go: dashboards, dashboard_pages and widgets
// - profile.go: stored user profile values (time selector state)
package models
