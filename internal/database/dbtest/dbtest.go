// Package dbtest cria bancos PostgreSQL descartáveis para testes.
package dbtest

import (
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/cleberrangel/diane-api/internal/database"
)

// New cria um banco vazio exclusivo para o teste e o remove ao final.
// O teste é ignorado quando não há PostgreSQL acessível.
func New(t *testing.T) *sql.DB {
	t.Helper()

	cfg := database.Config{
		Host:     getEnvOrDefault("TEST_DB_HOST", "127.0.0.1"),
		Port:     getEnvOrDefault("TEST_DB_PORT", "5432"),
		User:     getEnvOrDefault("TEST_DB_USER", "postgres"),
		Password: getEnvOrDefault("TEST_DB_PASSWORD", "postgres"),
		DBName:   fmt.Sprintf("diane_test_%d", time.Now().UnixNano()),
		SSLMode:  "disable",
	}

	adminCfg := cfg
	adminCfg.DBName = "postgres"
	adminDB, err := database.Connect(adminCfg)
	if err != nil {
		t.Skipf("Skipping test: could not connect to PostgreSQL: %v", err)
	}

	if _, err := adminDB.Exec(fmt.Sprintf("CREATE DATABASE %s", cfg.DBName)); err != nil {
		adminDB.Close()
		t.Fatalf("Failed to create test database: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		adminDB.Close()
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
		_, _ = adminDB.Exec(fmt.Sprintf("DROP DATABASE IF EXISTS %s", cfg.DBName))
		adminDB.Close()
	})

	return db
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
