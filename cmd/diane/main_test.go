package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cleberrangel/diane-api/internal/model"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DIANE_API_URL", "")
	t.Setenv("DIANE_EMAIL", "")
	t.Setenv("DIANE_TOKEN", "")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCaptureMock(t *testing.T) {
	out, err := run(t, "capture", "--mock", "--delay", "0s", "buy milk, eggs and bread")
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if !strings.Contains(out, "Task created with 3 subtasks") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestCaptureBlank(t *testing.T) {
	if _, err := run(t, "capture", "--mock", "--delay", "0s", "   "); err == nil {
		t.Error("expected error for blank text")
	}
}

func TestCaptureRequiresSession(t *testing.T) {
	if _, err := run(t, "capture", "buy milk"); err == nil {
		t.Error("expected error without --email or --token")
	}
}

func TestCaptureFailureExitsNonZero(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(model.ErrorResponse{Error: "bad", Code: "VALIDATION_ERROR"})
	}))
	defer server.Close()

	out, err := run(t, "capture", "--api", server.URL, "--token", "tok", "buy milk")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(out, "Couldn't create task") {
		t.Errorf("failure notification not printed: %q", out)
	}
}

func TestTasksList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		due := "2026-01-02"
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(model.Response{
			Success: true,
			Data: []model.Task{{
				ID:          4,
				Description: "plan trip",
				DueDate:     &due,
				Subtasks:    []model.SubTask{{Order: 1, Description: "book hotel"}},
			}},
		})
	}))
	defer server.Close()

	out, err := run(t, "tasks", "--api", server.URL, "--token", "tok")
	if err != nil {
		t.Fatalf("tasks: %v", err)
	}
	for _, want := range []string{"plan trip", "2026-01-02", "1. book hotel"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %q", want, out)
		}
	}
}

func TestTasksInvalidCompleted(t *testing.T) {
	if _, err := run(t, "tasks", "--token", "tok", "--completed", "maybe"); err == nil {
		t.Error("expected error for invalid --completed")
	}
}

func TestPrintEvent(t *testing.T) {
	var out bytes.Buffer
	printEvent(&out, []byte(`{"type":"capture_state","data":{"state":"submitting","input":"buy milk"}}`))
	printEvent(&out, []byte(`{"type":"notification","data":{"kind":"success","message":"Task created","description":"d","duration_ms":3000}}`))

	got := out.String()
	if !strings.Contains(got, `submitting "buy milk"`) || !strings.Contains(got, "✓ Task created") {
		t.Errorf("unexpected output: %q", got)
	}
}
