package handler

import (
	"context"
	"net/http"
	"runtime"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dashprint/backend/internal/interfaces/http/dto"
	"github.com/dashprint/backend/internal/interfaces/http/router"
)

// HealthCheck probes one dependency
type HealthCheck func(ctx context.Context) error

// healthCheckTimeout bounds the probes of a single readiness request
const healthCheckTimeout = 3 * time.Second

// SystemHandler serves service information and health probes
type SystemHandler struct {
	BaseHandler
	name      string
	version   string
	features  map[string]bool
	checks    map[string]HealthCheck
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler. features lists optional
// components (pdf, cache, archive) and whether they are enabled.
func NewSystemHandler(name, version string, features map[string]bool) *SystemHandler {
	return &SystemHandler{
		name:      name,
		version:   version,
		features:  features,
		checks:    make(map[string]HealthCheck),
		startTime: time.Now(),
	}
}

// AddCheck registers a readiness probe
func (h *SystemHandler) AddCheck(name string, check HealthCheck) *SystemHandler {
	h.checks[name] = check
	return h
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string          `json:"name"`
	Version   string          `json:"version"`
	GoVersion string          `json:"go_version"`
	Uptime    string          `json:"uptime"`
	Features  map[string]bool `json:"features"`
}

// GetSystemInfo returns version, uptime and the enabled features
//
// GET /system/info
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	h.Success(c, SystemInfoResponse{
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Features:  h.features,
	})
}

// PingResponse represents the ping response
type PingResponse struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Ping answers as long as the process serves requests
//
// GET /system/ping
func (h *SystemHandler) Ping(c *gin.Context) {
	h.Success(c, PingResponse{
		Message:   "pong",
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// ReadinessResponse lists the result of every probe
type ReadinessResponse struct {
	Ready  bool              `json:"ready"`
	Checks map[string]string `json:"checks"`
}

// Ready runs all probes and answers 503 when one of them fails
//
// GET /system/ready
func (h *SystemHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := ReadinessResponse{Ready: true, Checks: make(map[string]string, len(names))}
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			resp.Ready = false
			resp.Checks[name] = err.Error()
			continue
		}
		resp.Checks[name] = "ok"
	}

	status := http.StatusOK
	if !resp.Ready {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, dto.Response{Success: resp.Ready, Data: resp})
}

// SystemRoutes creates the route group of the system endpoints
func SystemRoutes(handler *SystemHandler) *router.DomainGroup {
	group := router.NewDomainGroup("system", "/system")
	group.Handle(http.MethodGet, "/info", "Service information", handler.GetSystemInfo)
	group.Handle(http.MethodGet, "/ping", "Liveness probe", handler.Ping)
	group.Handle(http.MethodGet, "/ready", "Readiness probe", handler.Ready)
	return group
}
