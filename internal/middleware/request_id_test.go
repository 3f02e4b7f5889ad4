package middleware

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cleberrangel/diane-api/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func captureLogs(t *testing.T, level zerolog.Level) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	logger.SetOutput(&buf, level)
	t.Cleanup(func() { logger.SetOutput(io.Discard, zerolog.Disabled) })
	return &buf
}

// logLine devolve a primeira linha JSON com a mensagem dada
func logLine(t *testing.T, buf *bytes.Buffer, message string) map[string]interface{} {
	t.Helper()
	scanner := bufio.NewScanner(strings.NewReader(buf.String()))
	for scanner.Scan() {
		var entry map[string]interface{}
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue
		}
		if entry["message"] == message {
			return entry
		}
	}
	t.Fatalf("no log line %q in:\n%s", message, buf.String())
	return nil
}

func TestRequestIDEchoedAndLogged(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogs(t, zerolog.DebugLevel)

	router := gin.New()
	router.Use(RequestID())
	router.GET("/ping", func(c *gin.Context) {
		logger.FromGin(c).Info().Msg("inside handler")
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderRequestID, "abc123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got := w.Header().Get(HeaderRequestID); got != "abc123" {
		t.Errorf("X-Request-ID = %q, want abc123", got)
	}
	if w.Header().Get(HeaderTraceID) == "" {
		t.Error("trace id should be generated")
	}
	if entry := logLine(t, buf, "inside handler"); entry["request_id"] != "abc123" {
		t.Errorf("handler log request_id = %v", entry["request_id"])
	}

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"oversized header", strings.Repeat("x", 100)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			if tt.header != "" {
				req.Header.Set(HeaderRequestID, tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			if got := w.Header().Get(HeaderRequestID); len(got) != 8 {
				t.Errorf("generated request id = %q, want 8 chars", got)
			}
		})
	}
}

func TestRequestCompletedCarriesSessionAndCapture(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogs(t, zerolog.InfoLevel)

	router := gin.New()
	router.Use(RequestID())
	router.Use(func(c *gin.Context) {
		c.Set(sessionContextKey, &Session{ID: "sess-1", UserID: 7, Email: "ana@example.com"})
		c.Next()
	})
	router.POST("/api/capture", func(c *gin.Context) {
		SetCaptureID(c, "cap-9")
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/capture", nil)
	req.Header.Set(HeaderRequestID, "req-1")
	router.ServeHTTP(httptest.NewRecorder(), req)

	entry := logLine(t, buf, "Request completed")
	want := map[string]interface{}{
		"request_id": "req-1",
		"session_id": "sess-1",
		"user_id":    "7",
		"capture_id": "cap-9",
		"route":      "/api/capture",
		"status":     float64(http.StatusOK),
	}
	for key, value := range want {
		if entry[key] != value {
			t.Errorf("%s = %v, want %v", key, entry[key], value)
		}
	}
}

func TestHealthRequestsLoggedAtDebug(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogs(t, zerolog.InfoLevel)

	router := gin.New()
	router.Use(RequestID())
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	if buf.Len() != 0 {
		t.Errorf("health probe should not log at info: %s", buf.String())
	}
}
