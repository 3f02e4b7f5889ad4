package metrics

import (
	"context"
	"database/sql"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// EndpointMetrics tracks metrics for a specific endpoint
type EndpointMetrics struct {
	Requests     int64
	Errors       int64
	TotalLatency int64
}

// Metrics holds all application metrics
type Metrics struct {
	mu sync.RWMutex

	// Request metrics
	TotalRequests      int64
	SuccessfulRequests int64
	FailedRequests     int64
	RateLimited        int64

	// Request latency (in milliseconds)
	TotalLatency int64
	RequestCount int64

	// Quick capture metrics
	CapturesSubmitted    int64
	CapturesSplit        int64
	CapturesPlain        int64
	CapturesFailed       int64
	CapturesRejectedBusy int64
	CaptureLatency       int64

	// Resource metrics
	TasksCreated         int64
	TasksCompleted       int64
	ShoppingItemsCreated int64
	EventsCreated        int64
	BrainDumpsSaved      int64

	// Export metrics
	ExportsGenerated int64
	ExportErrors     int64

	// WebSocket metrics
	WSConnections int64
	WSMessagesIn  int64
	WSMessagesOut int64

	// Authentication metrics
	LoginAttempts  int64
	LoginSuccesses int64
	LoginFailures  int64
	Signups        int64

	// Notification delivery
	WebhooksSent  int64
	WebhookErrors int64

	// Endpoint-specific metrics
	EndpointMetrics map[string]*EndpointMetrics

	// Start time for uptime calculation
	StartTime time.Time
}

// global metrics instance
var globalMetrics *Metrics
var once sync.Once

// Init initializes the global metrics instance
func Init() {
	once.Do(func() {
		globalMetrics = &Metrics{
			StartTime:       time.Now(),
			EndpointMetrics: make(map[string]*EndpointMetrics),
		}
	})
}

// Get returns the global metrics instance
func Get() *Metrics {
	if globalMetrics == nil {
		Init()
	}
	return globalMetrics
}

// IncrementRequests increments request counters
func (m *Metrics) IncrementRequests(success bool, latencyMs int64) {
	atomic.AddInt64(&m.TotalRequests, 1)
	atomic.AddInt64(&m.TotalLatency, latencyMs)
	atomic.AddInt64(&m.RequestCount, 1)

	if success {
		atomic.AddInt64(&m.SuccessfulRequests, 1)
	} else {
		atomic.AddInt64(&m.FailedRequests, 1)
	}
}

// IncrementRateLimited counts a request rejected by the rate limiter
func (m *Metrics) IncrementRateLimited() {
	atomic.AddInt64(&m.RateLimited, 1)
}

// RecordCapture records the result of an accepted capture submission
func (m *Metrics) RecordCapture(split, success bool, latencyMs int64) {
	atomic.AddInt64(&m.CapturesSubmitted, 1)
	atomic.AddInt64(&m.CaptureLatency, latencyMs)
	switch {
	case !success:
		atomic.AddInt64(&m.CapturesFailed, 1)
	case split:
		atomic.AddInt64(&m.CapturesSplit, 1)
	default:
		atomic.AddInt64(&m.CapturesPlain, 1)
	}
}

// IncrementCaptureBusy counts a submission rejected because one was in flight
func (m *Metrics) IncrementCaptureBusy() {
	atomic.AddInt64(&m.CapturesRejectedBusy, 1)
}

// IncrementTaskCreated increments task creation counter
func (m *Metrics) IncrementTaskCreated() {
	atomic.AddInt64(&m.TasksCreated, 1)
}

// IncrementTaskCompleted increments the completed task counter
func (m *Metrics) IncrementTaskCompleted() {
	atomic.AddInt64(&m.TasksCompleted, 1)
}

// IncrementShoppingItemCreated increments shopping item counter
func (m *Metrics) IncrementShoppingItemCreated() {
	atomic.AddInt64(&m.ShoppingItemsCreated, 1)
}

// IncrementEventCreated increments calendar event counter
func (m *Metrics) IncrementEventCreated() {
	atomic.AddInt64(&m.EventsCreated, 1)
}

// IncrementBrainDumpSaved increments brain dump counter
func (m *Metrics) IncrementBrainDumpSaved() {
	atomic.AddInt64(&m.BrainDumpsSaved, 1)
}

// IncrementExport increments export counters
func (m *Metrics) IncrementExport(success bool) {
	if success {
		atomic.AddInt64(&m.ExportsGenerated, 1)
	} else {
		atomic.AddInt64(&m.ExportErrors, 1)
	}
}

// IncrementWebhook increments webhook delivery counters
func (m *Metrics) IncrementWebhook(success bool) {
	if success {
		atomic.AddInt64(&m.WebhooksSent, 1)
	} else {
		atomic.AddInt64(&m.WebhookErrors, 1)
	}
}

// IncrementWSConnection increments WebSocket connection counter
func (m *Metrics) IncrementWSConnection() {
	atomic.AddInt64(&m.WSConnections, 1)
}

// DecrementWSConnection decrements WebSocket connection counter
func (m *Metrics) DecrementWSConnection() {
	atomic.AddInt64(&m.WSConnections, -1)
}

// IncrementWSMessageIn increments WebSocket incoming message counter
func (m *Metrics) IncrementWSMessageIn() {
	atomic.AddInt64(&m.WSMessagesIn, 1)
}

// IncrementWSMessageOut increments WebSocket outgoing message counter
func (m *Metrics) IncrementWSMessageOut() {
	atomic.AddInt64(&m.WSMessagesOut, 1)
}

// IncrementLogin increments login counters
func (m *Metrics) IncrementLogin(success bool) {
	atomic.AddInt64(&m.LoginAttempts, 1)
	if success {
		atomic.AddInt64(&m.LoginSuccesses, 1)
	} else {
		atomic.AddInt64(&m.LoginFailures, 1)
	}
}

// IncrementSignup increments signup counter
func (m *Metrics) IncrementSignup() {
	atomic.AddInt64(&m.Signups, 1)
}

// TrackEndpoint tracks metrics for a specific endpoint
func (m *Metrics) TrackEndpoint(path, method string, statusCode int, latencyMs int64) {
	key := method + " " + path

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.EndpointMetrics == nil {
		m.EndpointMetrics = make(map[string]*EndpointMetrics)
	}

	em, exists := m.EndpointMetrics[key]
	if !exists {
		em = &EndpointMetrics{}
		m.EndpointMetrics[key] = em
	}

	atomic.AddInt64(&em.Requests, 1)
	atomic.AddInt64(&em.TotalLatency, latencyMs)
	if statusCode >= 400 {
		atomic.AddInt64(&em.Errors, 1)
	}
}

// GetEndpointMetrics returns a copy of endpoint metrics
func (m *Metrics) GetEndpointMetrics() map[string]EndpointMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string]EndpointMetrics)
	for k, v := range m.EndpointMetrics {
		result[k] = EndpointMetrics{
			Requests:     atomic.LoadInt64(&v.Requests),
			Errors:       atomic.LoadInt64(&v.Errors),
			TotalLatency: atomic.LoadInt64(&v.TotalLatency),
		}
	}
	return result
}

// GetAverageLatency returns average request latency in milliseconds
func (m *Metrics) GetAverageLatency() float64 {
	count := atomic.LoadInt64(&m.RequestCount)
	if count == 0 {
		return 0
	}
	total := atomic.LoadInt64(&m.TotalLatency)
	return float64(total) / float64(count)
}

// GetUptime returns the application uptime
func (m *Metrics) GetUptime() time.Duration {
	return time.Since(m.StartTime)
}

// EndpointMetricsSnapshot represents endpoint metrics in a snapshot
type EndpointMetricsSnapshot struct {
	Requests     int64   `json:"requests"`
	Errors       int64   `json:"errors"`
	ErrorRate    float64 `json:"error_rate"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
}

// MetricsSnapshot represents a point-in-time snapshot of all metrics
type MetricsSnapshot struct {
	// Uptime
	UptimeSeconds float64 `json:"uptime_seconds"`
	StartTime     string  `json:"start_time"`

	// Request metrics
	Requests struct {
		Total        int64   `json:"total"`
		Successful   int64   `json:"successful"`
		Failed       int64   `json:"failed"`
		RateLimited  int64   `json:"rate_limited"`
		AvgLatencyMs float64 `json:"avg_latency_ms"`
	} `json:"requests"`

	// Quick capture metrics
	Captures struct {
		Submitted    int64   `json:"submitted"`
		Split        int64   `json:"split"`
		Plain        int64   `json:"plain"`
		Failed       int64   `json:"failed"`
		RejectedBusy int64   `json:"rejected_busy"`
		AvgLatencyMs float64 `json:"avg_latency_ms"`
	} `json:"captures"`

	// Resource metrics
	Resources struct {
		TasksCreated         int64 `json:"tasks_created"`
		TasksCompleted       int64 `json:"tasks_completed"`
		ShoppingItemsCreated int64 `json:"shopping_items_created"`
		EventsCreated        int64 `json:"events_created"`
		BrainDumpsSaved      int64 `json:"brain_dumps_saved"`
	} `json:"resources"`

	// Export metrics
	Exports struct {
		Generated int64 `json:"generated"`
		Errors    int64 `json:"errors"`
	} `json:"exports"`

	// WebSocket metrics
	WebSocket struct {
		Connections int64 `json:"connections"`
		MessagesIn  int64 `json:"messages_in"`
		MessagesOut int64 `json:"messages_out"`
	} `json:"websocket"`

	// Auth metrics
	Auth struct {
		LoginAttempts  int64 `json:"login_attempts"`
		LoginSuccesses int64 `json:"login_successes"`
		LoginFailures  int64 `json:"login_failures"`
		Signups        int64 `json:"signups"`
	} `json:"auth"`

	// Webhook metrics
	Webhooks struct {
		Sent   int64 `json:"sent"`
		Errors int64 `json:"errors"`
	} `json:"webhooks"`

	// System metrics
	System struct {
		Goroutines   int    `json:"goroutines"`
		HeapAllocMB  uint64 `json:"heap_alloc_mb"`
		HeapInUseMB  uint64 `json:"heap_inuse_mb"`
		StackInUseMB uint64 `json:"stack_inuse_mb"`
		NumGC        uint32 `json:"num_gc"`
	} `json:"system"`

	// Endpoint-specific metrics (top endpoints by request count)
	Endpoints map[string]EndpointMetricsSnapshot `json:"endpoints,omitempty"`
}

// Snapshot returns a point-in-time snapshot of all metrics
func (m *Metrics) Snapshot() MetricsSnapshot {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	snapshot := MetricsSnapshot{}

	// Uptime
	snapshot.UptimeSeconds = m.GetUptime().Seconds()
	snapshot.StartTime = m.StartTime.Format(time.RFC3339)

	// Request metrics
	snapshot.Requests.Total = atomic.LoadInt64(&m.TotalRequests)
	snapshot.Requests.Successful = atomic.LoadInt64(&m.SuccessfulRequests)
	snapshot.Requests.Failed = atomic.LoadInt64(&m.FailedRequests)
	snapshot.Requests.RateLimited = atomic.LoadInt64(&m.RateLimited)
	snapshot.Requests.AvgLatencyMs = m.GetAverageLatency()

	// Quick capture metrics
	submitted := atomic.LoadInt64(&m.CapturesSubmitted)
	snapshot.Captures.Submitted = submitted
	snapshot.Captures.Split = atomic.LoadInt64(&m.CapturesSplit)
	snapshot.Captures.Plain = atomic.LoadInt64(&m.CapturesPlain)
	snapshot.Captures.Failed = atomic.LoadInt64(&m.CapturesFailed)
	snapshot.Captures.RejectedBusy = atomic.LoadInt64(&m.CapturesRejectedBusy)
	if submitted > 0 {
		snapshot.Captures.AvgLatencyMs = float64(atomic.LoadInt64(&m.CaptureLatency)) / float64(submitted)
	}

	// Resource metrics
	snapshot.Resources.TasksCreated = atomic.LoadInt64(&m.TasksCreated)
	snapshot.Resources.TasksCompleted = atomic.LoadInt64(&m.TasksCompleted)
	snapshot.Resources.ShoppingItemsCreated = atomic.LoadInt64(&m.ShoppingItemsCreated)
	snapshot.Resources.EventsCreated = atomic.LoadInt64(&m.EventsCreated)
	snapshot.Resources.BrainDumpsSaved = atomic.LoadInt64(&m.BrainDumpsSaved)

	// Export metrics
	snapshot.Exports.Generated = atomic.LoadInt64(&m.ExportsGenerated)
	snapshot.Exports.Errors = atomic.LoadInt64(&m.ExportErrors)

	// WebSocket metrics
	snapshot.WebSocket.Connections = atomic.LoadInt64(&m.WSConnections)
	snapshot.WebSocket.MessagesIn = atomic.LoadInt64(&m.WSMessagesIn)
	snapshot.WebSocket.MessagesOut = atomic.LoadInt64(&m.WSMessagesOut)

	// Auth metrics
	snapshot.Auth.LoginAttempts = atomic.LoadInt64(&m.LoginAttempts)
	snapshot.Auth.LoginSuccesses = atomic.LoadInt64(&m.LoginSuccesses)
	snapshot.Auth.LoginFailures = atomic.LoadInt64(&m.LoginFailures)

	snapshot.Auth.Signups = atomic.LoadInt64(&m.Signups)

	// Webhook metrics
	snapshot.Webhooks.Sent = atomic.LoadInt64(&m.WebhooksSent)
	snapshot.Webhooks.Errors = atomic.LoadInt64(&m.WebhookErrors)

	// System metrics
	snapshot.System.Goroutines = runtime.NumGoroutine()
	snapshot.System.HeapAllocMB = memStats.HeapAlloc / 1024 / 1024
	snapshot.System.HeapInUseMB = memStats.HeapInuse / 1024 / 1024
	snapshot.System.StackInUseMB = memStats.StackInuse / 1024 / 1024
	snapshot.System.NumGC = memStats.NumGC

	// Endpoint metrics
	endpointMetrics := m.GetEndpointMetrics()
	if len(endpointMetrics) > 0 {
		snapshot.Endpoints = make(map[string]EndpointMetricsSnapshot)
		for k, v := range endpointMetrics {
			em := EndpointMetricsSnapshot{
				Requests: v.Requests,
				Errors:   v.Errors,
			}
			if v.Requests > 0 {
				em.ErrorRate = float64(v.Errors) / float64(v.Requests) * 100
				em.AvgLatencyMs = float64(v.TotalLatency) / float64(v.Requests)
			}
			snapshot.Endpoints[k] = em
		}
	}

	return snapshot
}

// HealthStatus represents the health status of a component
type HealthStatus struct {
	Status  string `json:"status"` // "healthy", "degraded", "unhealthy"
	Message string `json:"message,omitempty"`
	Latency int64  `json:"latency_ms,omitempty"`
}

// HealthCheck represents the overall health check response
type HealthCheck struct {
	Status     string                  `json:"status"` // "healthy", "degraded", "unhealthy"
	Version    string                  `json:"version"`
	Uptime     string                  `json:"uptime"`
	Timestamp  string                  `json:"timestamp"`
	Components map[string]HealthStatus `json:"components"`
}

// CheckDatabaseHealth checks database connectivity
func CheckDatabaseHealth(db *sql.DB) HealthStatus {
	start := time.Now()

	if db == nil {
		return HealthStatus{
			Status:  "unhealthy",
			Message: "database connection not initialized",
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := db.PingContext(ctx)
	latency := time.Since(start).Milliseconds()

	if err != nil {
		return HealthStatus{
			Status:  "unhealthy",
			Message: err.Error(),
			Latency: latency,
		}
	}

	// Check if latency is acceptable (< 100ms)
	if latency > 100 {
		return HealthStatus{
			Status:  "degraded",
			Message: "high latency",
			Latency: latency,
		}
	}

	return HealthStatus{
		Status:  "healthy",
		Latency: latency,
	}
}

// CheckMemoryHealth checks memory usage
func CheckMemoryHealth(maxHeapMB uint64) HealthStatus {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	heapMB := memStats.HeapAlloc / 1024 / 1024

	if heapMB > maxHeapMB {
		return HealthStatus{
			Status:  "unhealthy",
			Message: "heap memory exceeds limit",
		}
	}

	// Warn if using more than 80% of limit
	if heapMB > (maxHeapMB * 80 / 100) {
		return HealthStatus{
			Status:  "degraded",
			Message: "heap memory usage high",
		}
	}

	return HealthStatus{
		Status: "healthy",
	}
}

// DetermineOverallStatus determines overall health from component statuses
func DetermineOverallStatus(components map[string]HealthStatus) string {
	hasUnhealthy := false
	hasDegraded := false

	for _, status := range components {
		switch status.Status {
		case "unhealthy":
			hasUnhealthy = true
		case "degraded":
			hasDegraded = true
		}
	}

	if hasUnhealthy {
		return "unhealthy"
	}
	if hasDegraded {
		return "degraded"
	}
	return "healthy"
}
