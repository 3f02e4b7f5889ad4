package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cleberrangel/diane-api/internal/database"
	"github.com/joho/godotenv"
)

// Modos de captura suportados
const (
	CaptureModeMock    = "mock"
	CaptureModePersist = "persist"
)

// Config armazena as configurações da aplicação
type Config struct {
	Port     string
	GinMode  string
	LogLevel string
	LogJSON  bool

	DatabaseURL string
	Database    database.Config

	SessionTTL time.Duration

	CaptureMode    string
	CaptureDelay   time.Duration
	CaptureFormTTL time.Duration

	RateLimitPerMinute int
	NotifyWebhookURL   string
	CORSAllowOrigins   []string
	MetricsToken       string
	CookieSecure       bool
}

// ErrInvalidCaptureMode indica um CAPTURE_MODE desconhecido
var ErrInvalidCaptureMode = errors.New("CAPTURE_MODE inválido (use mock ou persist)")

// Load carrega as configurações do ambiente
func Load() (*Config, error) {
	// Tenta carregar .env de múltiplos locais
	_ = godotenv.Load()
	_ = godotenv.Load("../.env")

	return FromEnv()
}

// FromEnv monta a configuração a partir das variáveis de ambiente já carregadas
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		GinMode:          getEnv("GIN_MODE", "debug"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		CaptureMode:      strings.ToLower(getEnv("CAPTURE_MODE", CaptureModeMock)),
		NotifyWebhookURL: os.Getenv("NOTIFY_WEBHOOK_URL"),
		MetricsToken:     os.Getenv("METRICS_TOKEN"),
		CORSAllowOrigins: splitList(getEnv("CORS_ALLOW_ORIGINS", "*")),
		Database: database.Config{
			Host:     getEnv("DB_HOST", "127.0.0.1"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "diane"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
	}

	var err error
	if cfg.LogJSON, err = getBool("LOG_JSON", false); err != nil {
		return nil, err
	}
	if cfg.CookieSecure, err = getBool("COOKIE_SECURE", false); err != nil {
		return nil, err
	}

	sessionHours, err := getInt("SESSION_TTL_HOURS", 24)
	if err != nil {
		return nil, err
	}
	cfg.SessionTTL = time.Duration(sessionHours) * time.Hour

	delayMs, err := getInt("CAPTURE_DELAY_MS", 1500)
	if err != nil {
		return nil, err
	}
	cfg.CaptureDelay = time.Duration(delayMs) * time.Millisecond

	formMinutes, err := getInt("CAPTURE_FORM_TTL_MINUTES", 30)
	if err != nil {
		return nil, err
	}
	cfg.CaptureFormTTL = time.Duration(formMinutes) * time.Minute

	if cfg.RateLimitPerMinute, err = getInt("RATE_LIMIT_PER_MINUTE", 120); err != nil {
		return nil, err
	}

	if cfg.CaptureMode != CaptureModeMock && cfg.CaptureMode != CaptureModePersist {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCaptureMode, cfg.CaptureMode)
	}
	if cfg.DatabaseURL != "" {
		cfg.Database.DSN = cfg.DatabaseURL
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%s deve ser um inteiro não negativo: %q", key, raw)
	}
	return v, nil
}

func getBool(key string, fallback bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s deve ser booleano: %q", key, raw)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
