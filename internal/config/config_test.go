package config

import (
	"errors"
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "GIN_MODE", "LOG_LEVEL", "LOG_JSON", "DATABASE_URL", "SESSION_TTL_HOURS",
		"CAPTURE_MODE", "CAPTURE_DELAY_MS", "CAPTURE_FORM_TTL_MINUTES", "RATE_LIMIT_PER_MINUTE",
		"NOTIFY_WEBHOOK_URL", "CORS_ALLOW_ORIGINS", "DB_HOST", "DB_NAME", "METRICS_TOKEN", "COOKIE_SECURE",
	} {
		t.Setenv(key, "")
	}

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv returned error: %v", err)
	}

	if cfg.Port != "8080" || cfg.GinMode != "debug" || cfg.LogLevel != "info" {
		t.Errorf("unexpected server defaults: %+v", cfg)
	}
	if cfg.CaptureMode != CaptureModeMock {
		t.Errorf("expected mock capture mode, got %q", cfg.CaptureMode)
	}
	if cfg.CaptureDelay != 1500*time.Millisecond {
		t.Errorf("expected 1500ms capture delay, got %v", cfg.CaptureDelay)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("expected 24h session TTL, got %v", cfg.SessionTTL)
	}
	if cfg.Database.Host != "127.0.0.1" || cfg.Database.DBName != "diane" {
		t.Errorf("unexpected database defaults: %+v", cfg.Database)
	}
	if len(cfg.CORSAllowOrigins) != 1 || cfg.CORSAllowOrigins[0] != "*" {
		t.Errorf("unexpected CORS origins: %v", cfg.CORSAllowOrigins)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("CAPTURE_MODE", "Persist")
	t.Setenv("CAPTURE_DELAY_MS", "0")
	t.Setenv("LOG_JSON", "true")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/diane?sslmode=disable")
	t.Setenv("CORS_ALLOW_ORIGINS", "http://localhost:3000, https://diane.app")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv returned error: %v", err)
	}
	if cfg.CaptureMode != CaptureModePersist {
		t.Errorf("expected persist mode, got %q", cfg.CaptureMode)
	}
	if cfg.CaptureDelay != 0 {
		t.Errorf("expected zero delay, got %v", cfg.CaptureDelay)
	}
	if !cfg.LogJSON {
		t.Error("expected LOG_JSON to be true")
	}
	if cfg.Database.DSN == "" {
		t.Error("expected DATABASE_URL to be used as DSN")
	}
	if len(cfg.CORSAllowOrigins) != 2 || cfg.CORSAllowOrigins[1] != "https://diane.app" {
		t.Errorf("unexpected CORS origins: %v", cfg.CORSAllowOrigins)
	}
}

func TestFromEnvRejectsInvalidValues(t *testing.T) {
	t.Setenv("CAPTURE_MODE", "ai")
	if _, err := FromEnv(); !errors.Is(err, ErrInvalidCaptureMode) {
		t.Errorf("expected ErrInvalidCaptureMode, got %v", err)
	}

	t.Setenv("CAPTURE_MODE", "")
	t.Setenv("CAPTURE_DELAY_MS", "soon")
	if _, err := FromEnv(); err == nil {
		t.Error("expected error for non-numeric CAPTURE_DELAY_MS")
	}
}
