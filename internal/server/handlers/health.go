package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ReadinessCheck returns a non-empty reason when the service cannot serve
// searches.
type ReadinessCheck func() string

type HealthHandler struct {
	logger    *zap.Logger
	version   string
	startTime time.Time
	checks    map[string]ReadinessCheck
}

func NewHealthHandler(logger *zap.Logger, version string, checks map[string]ReadinessCheck) *HealthHandler {
	return &HealthHandler{
		logger:    logger,
		version:   version,
		startTime: time.Now(),
		checks:    checks,
	}
}

func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "ok",
		Uptime: time.Since(h.startTime).String(),
	})
}

func (h *HealthHandler) Readiness(c *gin.Context) {
	failures := make(map[string]string)
	for name, check := range h.checks {
		if reason := check(); reason != "" {
			failures[name] = reason
		}
	}

	if len(failures) > 0 {
		h.logger.Warn("Readiness check failed", zap.Any("failures", failures))
		c.JSON(http.StatusServiceUnavailable, HealthResponse{
			Status: "unavailable",
			Uptime: time.Since(h.startTime).String(),
			Checks: failures,
		})
		return
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status: "ok",
		Uptime: time.Since(h.startTime).String(),
	})
}

func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Version:   h.version,
		Uptime:    time.Since(h.startTime).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
