package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cleberrangel/diane-api/internal/model"
)

// CaptureRepository guarda o histórico de capturas rápidas
type CaptureRepository struct {
	db DBTX
}

// NewCaptureRepository cria um novo repositório de capturas
func NewCaptureRepository(db DBTX) *CaptureRepository {
	return &CaptureRepository{db: db}
}

// Record insere uma entrada no histórico
func (r *CaptureRepository) Record(ctx context.Context, rec model.CaptureRecord) error {
	var taskID interface{}
	if rec.TaskID != nil {
		taskID = *rec.TaskID
	}
	var errText interface{}
	if rec.Error != "" {
		errText = rec.Error
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO capture_log (id, user_id, raw_input, should_split, subtask_count, status, task_id, error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
	`, rec.ID, rec.UserID, rec.RawInput, rec.ShouldSplit, rec.SubtaskCount, rec.Status, taskID, errText)
	if err != nil {
		return fmt.Errorf("erro ao registrar captura: %w", err)
	}
	return nil
}

// ListRecent retorna as últimas capturas do usuário
func (r *CaptureRepository) ListRecent(ctx context.Context, userID, limit int) ([]model.CaptureRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, raw_input, should_split, subtask_count, status, task_id, error, created_at
		FROM capture_log
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar capturas: %w", err)
	}
	defer rows.Close()

	records := []model.CaptureRecord{}
	for rows.Next() {
		var (
			rec     model.CaptureRecord
			taskID  sql.NullInt64
			errText sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.RawInput, &rec.ShouldSplit, &rec.SubtaskCount,
			&rec.Status, &taskID, &errText, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("erro ao ler captura: %w", err)
		}
		rec.TaskID = intPtr(taskID)
		rec.Error = errText.String
		records = append(records, rec)
	}
	return records, rows.Err()
}
