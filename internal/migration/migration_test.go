package migration

import (
	"testing"

	"github.com/cleberrangel/diane-api/internal/database/dbtest"
)

func TestMigrationsAreOrderedAndUnique(t *testing.T) {
	seen := make(map[int]bool)
	m := &Migrator{migrations: getAllMigrations()}
	for i, migration := range m.migrations {
		if seen[migration.Version] {
			t.Errorf("duplicate migration version %d", migration.Version)
		}
		seen[migration.Version] = true
		if migration.Up == "" || migration.Down == "" {
			t.Errorf("migration %d (%s) must define Up and Down", migration.Version, migration.Name)
		}
		if i > 0 && migration.Version < m.migrations[i-1].Version {
			t.Errorf("migration %d declared out of order", migration.Version)
		}
	}
}

func TestRunAndRollback(t *testing.T) {
	db := dbtest.New(t)
	m := NewMigrator(db)

	if err := m.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	version, err := m.Version()
	if err != nil {
		t.Fatalf("Version failed: %v", err)
	}
	if version != m.Latest() {
		t.Fatalf("expected version %d, got %d", m.Latest(), version)
	}

	// Segunda execução não deve fazer nada
	if err := m.Run(); err != nil {
		t.Fatalf("second Run failed: %v", err)
	}

	if err := m.Rollback(); err != nil {
		t.Fatalf("Rollback failed: %v", err)
	}
	version, _ = m.Version()
	if version != m.Latest()-1 {
		t.Errorf("expected version %d after rollback, got %d", m.Latest()-1, version)
	}

	if err := m.Run(); err != nil {
		t.Fatalf("Run after rollback failed: %v", err)
	}
}
