package middleware

import (
	"strings"
	"time"

	"github.com/cleberrangel/diane-api/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// HeaderRequestID é o header HTTP para request ID
	HeaderRequestID = "X-Request-ID"
	// HeaderTraceID é o header HTTP para trace ID
	HeaderTraceID = "X-Trace-ID"

	captureIDContextKey = "capture_id"
	maxRequestIDLength  = 64
)

// Sondas de health e coleta de métricas só aparecem em debug
var quietPrefixes = []string{"/health", "/metrics"}

func isQuiet(path string) bool {
	for _, prefix := range quietPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// SetCaptureID marca a requisição com a submissão que ela gerou
func SetCaptureID(c *gin.Context, captureID string) {
	if captureID != "" {
		c.Set(captureIDContextKey, captureID)
	}
}

// RequestID adiciona request_id a cada requisição e registra o início e o fim
// dela. O log de conclusão carrega a sessão e a captura da requisição, que só
// são conhecidas depois dos handlers.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := strings.TrimSpace(c.GetHeader(HeaderRequestID))
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = uuid.New().String()[:8]
		}
		traceID := c.GetHeader(HeaderTraceID)
		if traceID == "" {
			traceID = uuid.New().String()
		}

		ctx := logger.WithRequestID(c.Request.Context(), requestID)
		ctx = logger.WithTraceID(ctx, traceID)
		c.Request = c.Request.WithContext(ctx)
		c.Header(HeaderRequestID, requestID)
		c.Header(HeaderTraceID, traceID)

		quiet := isQuiet(c.Request.URL.Path)
		log := logger.Get(ctx)
		startEvent := log.Info()
		if quiet {
			startEvent = log.Debug()
		}
		startEvent.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("client_ip", c.ClientIP()).
			Str("user_agent", c.Request.UserAgent()).
			Int64("content_length", c.Request.ContentLength).
			Msg("Request started")

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		// RequireSession troca o logger do contexto pelo que já tem o usuário
		log = logger.Get(c.Request.Context())
		var event *zerolog.Event
		switch {
		case statusCode >= 500:
			event = log.Error()
		case statusCode >= 400:
			event = log.Warn()
		case quiet:
			event = log.Debug()
		default:
			event = log.Info()
		}

		if route := c.FullPath(); route != "" {
			event = event.Str("route", route)
		}
		if session := CurrentSession(c); session != nil {
			event = event.Str("session_id", session.ID)
			if logger.GetUserID(c.Request.Context()) == "" {
				event = event.Str("user_id", session.UserKey())
			}
		}
		if captureID := c.GetString(captureIDContextKey); captureID != "" {
			event = event.Str("capture_id", captureID)
		}
		if len(c.Errors) > 0 {
			event = event.Str("errors", c.Errors.String())
		}

		event.
			Int("status", statusCode).
			Int("size", c.Writer.Size()).
			Dur("latency", duration).
			Float64("latency_ms", float64(duration.Microseconds())/1000).
			Msg("Request completed")
	}
}
