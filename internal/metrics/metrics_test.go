package metrics

import (
	"testing"
)

func TestRecordCaptureBuckets(t *testing.T) {
	m := &Metrics{EndpointMetrics: make(map[string]*EndpointMetrics)}

	m.RecordCapture(true, true, 10)
	m.RecordCapture(false, true, 20)
	m.RecordCapture(true, false, 30)
	m.IncrementCaptureBusy()

	snap := m.Snapshot()
	if snap.Captures.Submitted != 3 {
		t.Errorf("submitted = %d, want 3", snap.Captures.Submitted)
	}
	if snap.Captures.Split != 1 || snap.Captures.Plain != 1 || snap.Captures.Failed != 1 {
		t.Errorf("unexpected buckets: %+v", snap.Captures)
	}
	if snap.Captures.RejectedBusy != 1 {
		t.Errorf("rejected_busy = %d, want 1", snap.Captures.RejectedBusy)
	}
	if snap.Captures.AvgLatencyMs != 20 {
		t.Errorf("avg latency = %v, want 20", snap.Captures.AvgLatencyMs)
	}
}

func TestTrackEndpoint(t *testing.T) {
	m := &Metrics{}
	m.TrackEndpoint("/api/tasks", "GET", 200, 4)
	m.TrackEndpoint("/api/tasks", "GET", 404, 6)

	em := m.GetEndpointMetrics()["GET /api/tasks"]
	if em.Requests != 2 || em.Errors != 1 || em.TotalLatency != 10 {
		t.Errorf("unexpected endpoint metrics: %+v", em)
	}

	snap := m.Snapshot()
	if snap.Endpoints["GET /api/tasks"].ErrorRate != 50 {
		t.Errorf("unexpected error rate: %v", snap.Endpoints["GET /api/tasks"].ErrorRate)
	}
}

func TestDetermineOverallStatus(t *testing.T) {
	cases := []struct {
		components map[string]HealthStatus
		want       string
	}{
		{map[string]HealthStatus{"db": {Status: "healthy"}}, "healthy"},
		{map[string]HealthStatus{"db": {Status: "healthy"}, "mem": {Status: "degraded"}}, "degraded"},
		{map[string]HealthStatus{"db": {Status: "unhealthy"}, "mem": {Status: "degraded"}}, "unhealthy"},
	}
	for _, tc := range cases {
		if got := DetermineOverallStatus(tc.components); got != tc.want {
			t.Errorf("DetermineOverallStatus(%v) = %q, want %q", tc.components, got, tc.want)
		}
	}
}

func TestCheckDatabaseHealthNil(t *testing.T) {
	if status := CheckDatabaseHealth(nil); status.Status != "unhealthy" {
		t.Errorf("expected unhealthy for nil db, got %q", status.Status)
	}
}
