package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type ctxKey string

const (
	RequestIDKey ctxKey = "request_id"
	LoggerKey    ctxKey = "logger"
	UserIDKey    ctxKey = "user_id"
	EmailKey     ctxKey = "email"
	CaptureIDKey ctxKey = "capture_id"
	TraceIDKey   ctxKey = "trace_id"
)

var globalLogger zerolog.Logger

// Init inicializa o logger global
func Init(level string, jsonFormat bool) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	var output io.Writer = os.Stdout
	if !jsonFormat {
		output = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	}

	globalLogger = zerolog.New(output).
		Level(lvl).
		With().
		Timestamp().
		Str("service", "diane-api").
		Logger()

	InitAudit()
}

// Global retorna o logger global
func Global() *zerolog.Logger {
	return &globalLogger
}

// SetOutput substitui o destino do logger global (usado em testes e no CLI)
func SetOutput(w io.Writer, level zerolog.Level) {
	globalLogger = zerolog.New(w).Level(level).With().Timestamp().Str("service", "diane-api").Logger()
	InitAudit()
}

// Get retorna logger do contexto ou global
func Get(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return &globalLogger
	}
	if l, ok := ctx.Value(LoggerKey).(*zerolog.Logger); ok {
		return l
	}
	return &globalLogger
}

// FromGin extrai o logger do contexto Gin
func FromGin(c *gin.Context) *zerolog.Logger {
	return Get(c.Request.Context())
}

// WithRequestID adiciona request_id ao logger e contexto
func WithRequestID(ctx context.Context, requestID string) context.Context {
	l := globalLogger.With().Str("request_id", requestID).Logger()
	ctx = context.WithValue(ctx, RequestIDKey, requestID)
	ctx = context.WithValue(ctx, LoggerKey, &l)
	return ctx
}

// WithUserInfo adiciona o usuário da sessão ao contexto e logger
func WithUserInfo(ctx context.Context, userID, email string) context.Context {
	existingLogger := Get(ctx)
	l := existingLogger.With().
		Str("user_id", userID).
		Str("email", email).
		Logger()
	ctx = context.WithValue(ctx, UserIDKey, userID)
	ctx = context.WithValue(ctx, EmailKey, email)
	ctx = context.WithValue(ctx, LoggerKey, &l)
	return ctx
}

// WithCaptureID identifica uma submissão de captura rápida
func WithCaptureID(ctx context.Context, captureID string) context.Context {
	existingLogger := Get(ctx)
	l := existingLogger.With().Str("capture_id", captureID).Logger()
	ctx = context.WithValue(ctx, CaptureIDKey, captureID)
	ctx = context.WithValue(ctx, LoggerKey, &l)
	return ctx
}

// WithTraceID adiciona um trace ID para rastreamento distribuído
func WithTraceID(ctx context.Context, traceID string) context.Context {
	existingLogger := Get(ctx)
	l := existingLogger.With().Str("trace_id", traceID).Logger()
	ctx = context.WithValue(ctx, TraceIDKey, traceID)
	ctx = context.WithValue(ctx, LoggerKey, &l)
	return ctx
}

// GetRequestID extrai request_id do contexto
func GetRequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// GetUserID extrai user_id do contexto
func GetUserID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(UserIDKey).(string); ok {
		return id
	}
	return ""
}

// GetEmail extrai o email do usuário do contexto
func GetEmail(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if email, ok := ctx.Value(EmailKey).(string); ok {
		return email
	}
	return ""
}

// GetCaptureID extrai capture_id do contexto
func GetCaptureID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(CaptureIDKey).(string); ok {
		return id
	}
	return ""
}

// GetTraceID extrai trace_id do contexto
func GetTraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(TraceIDKey).(string); ok {
		return id
	}
	return ""
}
