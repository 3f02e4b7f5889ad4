package logger

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// AuditAction represents the type of action being audited
type AuditAction string

const (
	// Session actions
	AuditActionLogin       AuditAction = "LOGIN"
	AuditActionLoginFailed AuditAction = "LOGIN_FAILED"
	AuditActionSignup      AuditAction = "SIGNUP"
	AuditActionLogout      AuditAction = "LOGOUT"

	// Quick capture
	AuditActionCaptureSubmit AuditAction = "CAPTURE_SUBMIT"
	AuditActionCaptureFailed AuditAction = "CAPTURE_FAILED"

	// Resources
	AuditActionTaskCreate     AuditAction = "TASK_CREATE"
	AuditActionTaskUpdate     AuditAction = "TASK_UPDATE"
	AuditActionTaskDelete     AuditAction = "TASK_DELETE"
	AuditActionSubtaskUpdate  AuditAction = "SUBTASK_UPDATE"
	AuditActionSubtaskDelete  AuditAction = "SUBTASK_DELETE"
	AuditActionShoppingCreate AuditAction = "SHOPPING_CREATE"
	AuditActionShoppingUpdate AuditAction = "SHOPPING_UPDATE"
	AuditActionShoppingDelete AuditAction = "SHOPPING_DELETE"
	AuditActionCalendarCreate AuditAction = "CALENDAR_CREATE"
	AuditActionCalendarUpdate AuditAction = "CALENDAR_UPDATE"
	AuditActionCalendarDelete AuditAction = "CALENDAR_DELETE"
	AuditActionBrainDumpSave  AuditAction = "BRAIN_DUMP_SAVE"
	AuditActionExportDownload AuditAction = "EXPORT_DOWNLOAD"

	// WebSocket
	AuditActionWSConnect    AuditAction = "WS_CONNECT"
	AuditActionWSDisconnect AuditAction = "WS_DISCONNECT"

	// API
	AuditActionAPIRequest AuditAction = "API_REQUEST"
	AuditActionAPIError   AuditAction = "API_ERROR"
)

// AuditEvent represents an audit log entry
type AuditEvent struct {
	Action     AuditAction
	UserID     string
	Email      string
	Resource   string
	ResourceID string
	Details    map[string]interface{}
	ClientIP   string
	RequestID  string
	CaptureID  string
	Success    bool
	Error      string
	Duration   int64 // milliseconds
	Method     string
	Path       string
	StatusCode int
}

var auditLogger zerolog.Logger

// InitAudit initializes the audit logger
func InitAudit() {
	auditLogger = globalLogger.With().Str("log_type", "audit").Logger()
}

// Audit logs an audit event, filling identifiers missing from the event with
// the ones carried by ctx.
func Audit(ctx context.Context, event AuditEvent) {
	if event.RequestID == "" {
		event.RequestID = GetRequestID(ctx)
	}
	if event.CaptureID == "" {
		event.CaptureID = GetCaptureID(ctx)
	}
	if event.UserID == "" {
		event.UserID = GetUserID(ctx)
	}
	if event.Email == "" {
		event.Email = GetEmail(ctx)
	}

	logEvent := auditLogger.Info()
	if !event.Success {
		logEvent = auditLogger.Warn()
	}

	logEvent.
		Str("action", string(event.Action)).
		Str("user_id", event.UserID).
		Str("resource", event.Resource).
		Str("resource_id", event.ResourceID).
		Str("request_id", event.RequestID).
		Bool("success", event.Success).
		Time("timestamp", time.Now().UTC())

	if event.Email != "" {
		logEvent.Str("email", event.Email)
	}
	if event.ClientIP != "" {
		logEvent.Str("client_ip", event.ClientIP)
	}
	if event.CaptureID != "" {
		logEvent.Str("capture_id", event.CaptureID)
	}
	if event.Error != "" {
		logEvent.Str("error", event.Error)
	}
	if event.Duration > 0 {
		logEvent.Int64("duration_ms", event.Duration)
	}
	if event.Method != "" {
		logEvent.Str("method", event.Method)
	}
	if event.Path != "" {
		logEvent.Str("path", event.Path)
	}
	if event.StatusCode > 0 {
		logEvent.Int("status_code", event.StatusCode)
	}
	if len(event.Details) > 0 {
		logEvent.Interface("details", event.Details)
	}

	logEvent.Msg("Audit event")
}

// AuditRequest logs an API request audit event
func AuditRequest(ctx context.Context, method, path string, statusCode int, duration int64, userID, clientIP string) {
	success := statusCode < 400
	action := AuditActionAPIRequest
	if !success {
		action = AuditActionAPIError
	}

	Audit(ctx, AuditEvent{
		Action:     action,
		UserID:     userID,
		Resource:   "api",
		ResourceID: path,
		Method:     method,
		Path:       path,
		StatusCode: statusCode,
		Duration:   duration,
		ClientIP:   clientIP,
		Success:    success,
	})
}

// AuditWebSocket logs WebSocket connection events
func AuditWebSocket(ctx context.Context, action AuditAction, userID, clientIP string, details map[string]interface{}) {
	Audit(ctx, AuditEvent{
		Action:   action,
		UserID:   userID,
		Resource: "websocket",
		ClientIP: clientIP,
		Success:  true,
		Details:  details,
	})
}
