package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/cleberrangel/diane-api/internal/model"
)

// DBTX é satisfeito por *sql.DB e *sql.Tx
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// updateBuilder monta cláusulas SET para atualizações parciais
type updateBuilder struct {
	sets []string
	args []interface{}
}

func (b *updateBuilder) set(column string, value interface{}) {
	b.args = append(b.args, value)
	b.sets = append(b.sets, fmt.Sprintf("%s = $%d", column, len(b.args)))
}

func (b *updateBuilder) empty() bool {
	return len(b.sets) == 0
}

// build devolve "UPDATE table SET ... WHERE <where>" com os argumentos de where
// numerados após os do SET
func (b *updateBuilder) build(table string, where string, whereArgs ...interface{}) (string, []interface{}) {
	args := append([]interface{}{}, b.args...)
	placeholders := make([]interface{}, len(whereArgs))
	for i, a := range whereArgs {
		args = append(args, a)
		placeholders[i] = len(args)
	}
	return fmt.Sprintf("UPDATE %s SET %s WHERE %s",
		table, strings.Join(b.sets, ", "), fmt.Sprintf(where, placeholders...)), args
}

// nullableDate converte "" em NULL para colunas DATE/TIME
func nullableDate(v *string) interface{} {
	if v == nil || *v == "" {
		return nil
	}
	return *v
}

func nullableInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func dateString(t sql.NullTime) *string {
	if !t.Valid {
		return nil
	}
	s := t.Time.Format(model.DateLayout)
	return &s
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

// timeString normaliza o valor de uma coluna TIME para HH:MM:SS
func timeString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	if t, err := time.Parse(model.TimeLayout, s); err == nil {
		s = t.Format(model.TimeLayout)
	}
	return &s
}
