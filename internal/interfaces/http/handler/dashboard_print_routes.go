package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dashprint/backend/internal/interfaces/http/router"
)

// DashboardPrintRoutes creates the route group of the print endpoints.
// renderGuard, when set, wraps the routes that drive the browser.
func DashboardPrintRoutes(handler *DashboardPrintHandler, renderGuard gin.HandlerFunc) *router.DomainGroup {
	group := router.NewDomainGroup("dashboards", "/dashboards")

	group.Handle(http.MethodGet, "/:id/print", "Printable dashboard page", handler.PrintPage)
	group.Handle(http.MethodGet, "/:id/print/layout", "Page layout and client bootstrap", handler.Layout)

	pdf := []gin.HandlerFunc{handler.PDF}
	export := []gin.HandlerFunc{handler.Export}
	if renderGuard != nil {
		pdf = append([]gin.HandlerFunc{renderGuard}, pdf...)
		export = append([]gin.HandlerFunc{renderGuard}, export...)
	}
	group.Handle(http.MethodGet, "/:id/print/pdf", "Dashboard PDF", pdf...)
	group.Handle(http.MethodPost, "/:id/print/export", "Archive dashboard PDF", export...)

	return group
}
