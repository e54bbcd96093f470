package handlers

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/vzahanych/weather-lookup/internal/server/middlewares"
	"go.uber.org/zap"
)

// HTTPMetricsProvider exposes request metrics collected by middleware.
type HTTPMetricsProvider interface {
	Snapshot() middlewares.HTTPMetricsSnapshot
}

// AppMetrics holds per-stage lookup counters.
type AppMetrics struct {
	mutex       sync.RWMutex
	stageCalls  map[string]int64
	stageErrors map[string]int64
}

type MetricsHandler struct {
	logger     *zap.Logger
	appMetrics *AppMetrics
	http       HTTPMetricsProvider
}

func NewMetricsHandler(logger *zap.Logger, httpMetrics HTTPMetricsProvider) *MetricsHandler {
	return &MetricsHandler{
		logger: logger,
		http:   httpMetrics,
		appMetrics: &AppMetrics{
			stageCalls:  make(map[string]int64),
			stageErrors: make(map[string]int64),
		},
	}
}

// RecordStageCall counts one attempt of a lookup stage; errKind is empty on
// success.
func (h *MetricsHandler) RecordStageCall(ctx context.Context, stage string, errKind string) {
	h.appMetrics.mutex.Lock()
	defer h.appMetrics.mutex.Unlock()

	h.appMetrics.stageCalls[stage]++
	if errKind != "" {
		h.appMetrics.stageErrors[stage+"|"+errKind]++
	}
}

// ServeMetrics exposes metrics in Prometheus text format.
func (h *MetricsHandler) ServeMetrics(c *gin.Context) {
	var b strings.Builder

	if h.http != nil {
		snap := h.http.Snapshot()

		b.WriteString("# HELP http_requests_total Total number of HTTP requests\n")
		b.WriteString("# TYPE http_requests_total counter\n")
		for _, key := range sortedKeys(snap.RequestsTotal) {
			fmt.Fprintf(&b, "http_requests_total{route_status=%q} %d\n", key, snap.RequestsTotal[key])
		}

		b.WriteString("\n# HELP http_request_duration_seconds_avg Average duration of HTTP requests\n")
		b.WriteString("# TYPE http_request_duration_seconds_avg gauge\n")
		fmt.Fprintf(&b, "http_request_duration_seconds_avg %.6f\n", snap.AvgDurationSeconds)

		b.WriteString("\n# HELP http_active_requests Number of active HTTP requests\n")
		b.WriteString("# TYPE http_active_requests gauge\n")
		fmt.Fprintf(&b, "http_active_requests %d\n", snap.ActiveRequests)
		b.WriteString("\n")
	}

	h.appMetrics.mutex.RLock()
	defer h.appMetrics.mutex.RUnlock()

	b.WriteString("# HELP lookup_stage_calls_total Total lookup stage calls\n")
	b.WriteString("# TYPE lookup_stage_calls_total counter\n")
	for _, stage := range sortedKeys(h.appMetrics.stageCalls) {
		fmt.Fprintf(&b, "lookup_stage_calls_total{stage=%q} %d\n", stage, h.appMetrics.stageCalls[stage])
	}

	b.WriteString("\n# HELP lookup_stage_errors_total Total lookup stage errors by kind\n")
	b.WriteString("# TYPE lookup_stage_errors_total counter\n")
	for _, key := range sortedKeys(h.appMetrics.stageErrors) {
		stage, kind, _ := strings.Cut(key, "|")
		fmt.Fprintf(&b, "lookup_stage_errors_total{stage=%q,kind=%q} %d\n", stage, kind, h.appMetrics.stageErrors[key])
	}

	c.Header("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	c.String(http.StatusOK, b.String())
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
