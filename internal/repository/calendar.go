package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cleberrangel/diane-api/internal/model"
)

// CalendarRepository gerencia eventos de calendário
type CalendarRepository struct {
	db DBTX
}

// NewCalendarRepository cria um novo repositório de eventos
func NewCalendarRepository(db DBTX) *CalendarRepository {
	return &CalendarRepository{db: db}
}

// WithTx devolve uma cópia do repositório que opera dentro de tx
func (r *CalendarRepository) WithTx(tx *sql.Tx) *CalendarRepository {
	return &CalendarRepository{db: tx}
}

// event_time é lido como texto para não ser convertido em timestamp pelo driver
const calendarColumns = `id, user_id, description, event_date, event_time::text, raw_input, created_at`

func scanCalendarEvent(row rowScanner) (model.CalendarEvent, error) {
	var (
		ev        model.CalendarEvent
		eventDate sql.NullTime
		eventTime sql.NullString
	)
	err := row.Scan(&ev.ID, &ev.UserID, &ev.Description, &eventDate, &eventTime, &ev.RawInput, &ev.CreatedAt)
	if d := dateString(eventDate); d != nil {
		ev.EventDate = *d
	}
	ev.EventTime = timeString(eventTime)
	return ev, err
}

// NewCalendarEvent são os campos de um novo evento
type NewCalendarEvent struct {
	Description string
	EventDate   string
	EventTime   *string
	RawInput    string
}

// Create insere um evento
func (r *CalendarRepository) Create(ctx context.Context, userID int, ev NewCalendarEvent) (*model.CalendarEvent, error) {
	query := `
		INSERT INTO calendar_events (user_id, description, event_date, event_time, raw_input, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING ` + calendarColumns
	created, err := scanCalendarEvent(r.db.QueryRowContext(ctx, query,
		userID, ev.Description, ev.EventDate, nullableDate(ev.EventTime), ev.RawInput))
	if err != nil {
		return nil, fmt.Errorf("erro ao criar evento: %w", err)
	}
	return &created, nil
}

// List retorna os eventos do usuário ordenados por data e horário
func (r *CalendarRepository) List(ctx context.Context, userID int, filter model.CalendarFilter) ([]model.CalendarEvent, error) {
	query := `SELECT ` + calendarColumns + ` FROM calendar_events WHERE user_id = $1`
	args := []interface{}{userID}
	if filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		query += fmt.Sprintf(" AND event_date >= $%d", len(args))
	}
	if filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		query += fmt.Sprintf(" AND event_date <= $%d", len(args))
	}
	query += " ORDER BY event_date ASC, event_time ASC, id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar eventos: %w", err)
	}
	defer rows.Close()

	events := []model.CalendarEvent{}
	for rows.Next() {
		ev, err := scanCalendarEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao ler evento: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// Update aplica uma atualização parcial; retorna nil se não existir
func (r *CalendarRepository) Update(ctx context.Context, userID, eventID int, req model.CalendarEventUpdateRequest) (*model.CalendarEvent, error) {
	b := &updateBuilder{}
	if req.Description != nil {
		b.set("description", *req.Description)
	}
	if req.EventDate != nil {
		b.set("event_date", *req.EventDate)
	}
	if req.EventTime != nil {
		b.set("event_time", nullableDate(req.EventTime))
	}
	if b.empty() {
		b.set("id", eventID)
	}

	query, args := b.build("calendar_events", "id = $%d AND user_id = $%d", eventID, userID)
	ev, err := scanCalendarEvent(r.db.QueryRowContext(ctx, query+" RETURNING "+calendarColumns, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao atualizar evento: %w", err)
	}
	return &ev, nil
}

// Delete remove um evento do usuário
func (r *CalendarRepository) Delete(ctx context.Context, userID, eventID int) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM calendar_events WHERE id = $1 AND user_id = $2`, eventID, userID)
	if err != nil {
		return false, fmt.Errorf("erro ao remover evento: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
