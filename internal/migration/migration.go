package migration

import (
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/cleberrangel/diane-api/internal/logger"
	_ "github.com/lib/pq"
)

// Migration representa uma migração de banco de dados
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

// Migrator gerencia as migrações do banco de dados
type Migrator struct {
	db         *sql.DB
	migrations []Migration
}

// NewMigrator cria um novo migrator com as migrações ordenadas por versão
func NewMigrator(db *sql.DB) *Migrator {
	migrations := getAllMigrations()
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return &Migrator{
		db:         db,
		migrations: migrations,
	}
}

// Run executa todas as migrações pendentes
func (m *Migrator) Run() error {
	log := logger.Global()

	if err := m.createMigrationsTable(); err != nil {
		return fmt.Errorf("erro ao criar tabela de migrações: %w", err)
	}

	currentVersion, err := m.Version()
	if err != nil {
		return fmt.Errorf("erro ao obter versão atual: %w", err)
	}

	log.Info().Int("current_version", currentVersion).Msg("Versão atual do banco de dados")

	for _, migration := range m.migrations {
		if migration.Version <= currentVersion {
			continue
		}
		log.Info().
			Int("version", migration.Version).
			Str("name", migration.Name).
			Msg("Executando migração")

		if err := m.apply(migration.Up, func(tx *sql.Tx) error {
			_, err := tx.Exec(
				"INSERT INTO schema_migrations (version, applied_at) VALUES ($1, $2)",
				migration.Version, time.Now(),
			)
			return err
		}); err != nil {
			return fmt.Errorf("erro ao executar migração %d (%s): %w",
				migration.Version, migration.Name, err)
		}
	}

	return nil
}

// Rollback desfaz a última migração aplicada
func (m *Migrator) Rollback() error {
	currentVersion, err := m.Version()
	if err != nil {
		return fmt.Errorf("erro ao obter versão atual: %w", err)
	}
	if currentVersion == 0 {
		return nil
	}

	for i := len(m.migrations) - 1; i >= 0; i-- {
		migration := m.migrations[i]
		if migration.Version != currentVersion {
			continue
		}
		logger.Global().Warn().
			Int("version", migration.Version).
			Str("name", migration.Name).
			Msg("Revertendo migração")

		return m.apply(migration.Down, func(tx *sql.Tx) error {
			_, err := tx.Exec("DELETE FROM schema_migrations WHERE version = $1", migration.Version)
			return err
		})
	}

	return fmt.Errorf("migração %d não encontrada", currentVersion)
}

// Version retorna a maior versão aplicada (0 quando nenhuma)
func (m *Migrator) Version() (int, error) {
	if err := m.createMigrationsTable(); err != nil {
		return 0, err
	}
	var version int
	err := m.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}

// Latest retorna a versão da migração mais recente conhecida
func (m *Migrator) Latest() int {
	if len(m.migrations) == 0 {
		return 0
	}
	return m.migrations[len(m.migrations)-1].Version
}

func (m *Migrator) createMigrationsTable() error {
	_, err := m.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT NOW()
		)
	`)
	return err
}

// apply executa o script e o registro de controle na mesma transação
func (m *Migrator) apply(script string, record func(tx *sql.Tx) error) error {
	tx, err := m.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(script); err != nil {
		return err
	}
	if err := record(tx); err != nil {
		return err
	}
	return tx.Commit()
}
