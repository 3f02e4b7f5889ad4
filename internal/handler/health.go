package handler

import (
	"database/sql"
	"net/http"
	"runtime"
	"time"

	"github.com/cleberrangel/diane-api/internal/metrics"
	"github.com/cleberrangel/diane-api/internal/websocket"
	"github.com/gin-gonic/gin"
)

// Limites usados pelas verificações de saúde
const (
	maxHeapMB            = 512
	maxWSConnections     = 500
	captureFailureDegrad = 50.0 // percentual
)

// HealthHandler handles health check and metrics endpoints
type HealthHandler struct {
	db        *sql.DB
	wsHub     *websocket.Hub
	version   string
	startTime time.Time
}

// NewHealthHandler creates a new health handler. wsHub may be nil.
func NewHealthHandler(db *sql.DB, wsHub *websocket.Hub, version string) *HealthHandler {
	return &HealthHandler{
		db:        db,
		wsHub:     wsHub,
		version:   version,
		startTime: time.Now(),
	}
}

// LivenessCheck returns basic liveness status
// @Summary Liveness check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health/live [get]
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// ReadinessCheck returns readiness status including the database
// @Summary Readiness check
// @Tags health
// @Produce json
// @Success 200 {object} metrics.HealthCheck
// @Failure 503 {object} metrics.HealthCheck
// @Router /health/ready [get]
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	components := map[string]metrics.HealthStatus{
		"database": metrics.CheckDatabaseHealth(h.db),
		"memory":   metrics.CheckMemoryHealth(maxHeapMB),
	}
	h.respond(c, components)
}

// DetailedHealthCheck returns every component
// @Summary Detailed health check
// @Tags health
// @Produce json
// @Success 200 {object} metrics.HealthCheck
// @Failure 503 {object} metrics.HealthCheck
// @Router /health [get]
func (h *HealthHandler) DetailedHealthCheck(c *gin.Context) {
	components := map[string]metrics.HealthStatus{
		"database": metrics.CheckDatabaseHealth(h.db),
		"memory":   metrics.CheckMemoryHealth(maxHeapMB),
		"capture":  checkCaptureHealth(metrics.Get().Snapshot()),
	}
	if h.wsHub != nil {
		components["websocket"] = h.checkWebSocketHealth()
	}
	h.respond(c, components)
}

func (h *HealthHandler) respond(c *gin.Context, components map[string]metrics.HealthStatus) {
	overallStatus := metrics.DetermineOverallStatus(components)

	healthCheck := metrics.HealthCheck{
		Status:     overallStatus,
		Version:    h.version,
		Uptime:     time.Since(h.startTime).String(),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Components: components,
	}

	statusCode := http.StatusOK
	if overallStatus == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, healthCheck)
}

// checkWebSocketHealth checks WebSocket hub health
func (h *HealthHandler) checkWebSocketHealth() metrics.HealthStatus {
	if h.wsHub.GetConnectionCount() > maxWSConnections {
		return metrics.HealthStatus{
			Status:  "degraded",
			Message: "WebSocket connections near limit",
		}
	}
	return metrics.HealthStatus{Status: "healthy"}
}

// checkCaptureHealth degrades when most round trips are failing
func checkCaptureHealth(snapshot metrics.MetricsSnapshot) metrics.HealthStatus {
	total := snapshot.Captures.Submitted
	if total > 0 {
		failureRate := float64(snapshot.Captures.Failed) / float64(total) * 100
		if failureRate > captureFailureDegrad {
			return metrics.HealthStatus{
				Status:  "degraded",
				Message: "High capture failure rate",
			}
		}
	}
	return metrics.HealthStatus{Status: "healthy"}
}

// GetMetrics returns application metrics
// @Summary Get application metrics
// @Tags metrics
// @Produce json
// @Success 200 {object} metrics.MetricsSnapshot
// @Router /metrics [get]
func (h *HealthHandler) GetMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, metrics.Get().Snapshot())
}

// GetMetricsSummary returns a summary of key metrics
// @Summary Get metrics summary
// @Tags metrics
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /metrics/summary [get]
func (h *HealthHandler) GetMetricsSummary(c *gin.Context) {
	snapshot := metrics.Get().Snapshot()

	c.JSON(http.StatusOK, gin.H{
		"uptime_seconds": snapshot.UptimeSeconds,
		"version":        h.version,
		"requests": gin.H{
			"total":        snapshot.Requests.Total,
			"success_rate": rate(snapshot.Requests.Successful, snapshot.Requests.Total),
			"avg_latency":  snapshot.Requests.AvgLatencyMs,
			"rate_limited": snapshot.Requests.RateLimited,
		},
		"captures": gin.H{
			"submitted":     snapshot.Captures.Submitted,
			"split":         snapshot.Captures.Split,
			"rejected_busy": snapshot.Captures.RejectedBusy,
			"success_rate":  rate(snapshot.Captures.Submitted-snapshot.Captures.Failed, snapshot.Captures.Submitted),
		},
		"auth": gin.H{
			"login_attempts": snapshot.Auth.LoginAttempts,
			"success_rate":   rate(snapshot.Auth.LoginSuccesses, snapshot.Auth.LoginAttempts),
		},
		"websocket": gin.H{
			"connections": snapshot.WebSocket.Connections,
		},
		"system": gin.H{
			"goroutines":  snapshot.System.Goroutines,
			"heap_mb":     snapshot.System.HeapAllocMB,
			"heap_use_mb": snapshot.System.HeapInUseMB,
		},
	})
}

// GetEndpointMetrics returns metrics broken down by endpoint
// @Summary Get endpoint metrics
// @Tags metrics
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /metrics/endpoints [get]
func (h *HealthHandler) GetEndpointMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"endpoints": metrics.Get().Snapshot().Endpoints,
	})
}

// Memory returns runtime memory statistics
func (h *HealthHandler) Memory(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	c.JSON(http.StatusOK, gin.H{
		"alloc_mb":       m.Alloc / 1024 / 1024,
		"total_alloc_mb": m.TotalAlloc / 1024 / 1024,
		"sys_mb":         m.Sys / 1024 / 1024,
		"heap_alloc_mb":  m.HeapAlloc / 1024 / 1024,
		"heap_inuse_mb":  m.HeapInuse / 1024 / 1024,
		"heap_objects":   m.HeapObjects,
		"goroutines":     runtime.NumGoroutine(),
		"gc_runs":        m.NumGC,
		"gc_pause_total": m.PauseTotalNs / 1000000, // ms
	})
}

func rate(part, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
