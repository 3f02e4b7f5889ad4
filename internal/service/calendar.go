package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cleberrangel/diane-api/internal/logger"
	"github.com/cleberrangel/diane-api/internal/metrics"
	"github.com/cleberrangel/diane-api/internal/middleware"
	"github.com/cleberrangel/diane-api/internal/model"
	"github.com/cleberrangel/diane-api/internal/repository"
)

// CalendarService contém as regras de eventos
type CalendarService struct {
	events *repository.CalendarRepository
}

// NewCalendarService cria um novo serviço de calendário
func NewCalendarService(db *sql.DB) *CalendarService {
	return &CalendarService{events: repository.NewCalendarRepository(db)}
}

// List retorna os eventos do usuário no intervalo inclusivo do filtro
func (s *CalendarService) List(ctx context.Context, userID int, filter model.CalendarFilter) ([]model.CalendarEvent, error) {
	start, err := normalizeDate(filter.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := normalizeDate(filter.EndDate)
	if err != nil {
		return nil, err
	}
	filter.StartDate, filter.EndDate = emptyToNil(start), emptyToNil(end)

	// Datas YYYY-MM-DD comparam corretamente como texto
	if filter.StartDate != nil && filter.EndDate != nil && *filter.StartDate > *filter.EndDate {
		return nil, ErrInvalidRange
	}
	return s.events.List(ctx, userID, filter)
}

// prepareEvent valida e normaliza os campos de um novo evento
func prepareEvent(description, eventDate string, eventTime *string, rawInput string) (repository.NewCalendarEvent, error) {
	description, err := requireText(middleware.SanitizeDescription(description))
	if err != nil {
		return repository.NewCalendarEvent{}, err
	}
	date, err := requireDate(eventDate)
	if err != nil {
		return repository.NewCalendarEvent{}, err
	}
	t, err := normalizeTime(eventTime)
	if err != nil {
		return repository.NewCalendarEvent{}, err
	}
	return repository.NewCalendarEvent{
		Description: description,
		EventDate:   date,
		EventTime:   emptyToNil(t),
		RawInput:    middleware.SanitizeText(rawInput, middleware.DefaultSanitizeConfig()),
	}, nil
}

// Create cria um evento
func (s *CalendarService) Create(ctx context.Context, userID int, req model.CalendarEventCreateRequest) (*model.CalendarEvent, error) {
	ev, err := prepareEvent(req.Description, req.EventDate, req.EventTime, req.RawInput)
	if err != nil {
		return nil, err
	}

	created, err := s.events.Create(ctx, userID, ev)
	if err != nil {
		return nil, err
	}

	metrics.Get().IncrementEventCreated()
	logger.Audit(ctx, logger.AuditEvent{
		Action:     logger.AuditActionCalendarCreate,
		Resource:   "calendar_event",
		ResourceID: fmt.Sprint(created.ID),
		Success:    true,
	})
	return created, nil
}

// Update aplica uma atualização parcial; event_time vazio remove o horário
func (s *CalendarService) Update(ctx context.Context, userID, eventID int, req model.CalendarEventUpdateRequest) (*model.CalendarEvent, error) {
	if req.Description != nil {
		d, err := requireText(middleware.SanitizeDescription(*req.Description))
		if err != nil {
			return nil, err
		}
		req.Description = &d
	}
	if req.EventDate != nil {
		d, err := requireDate(*req.EventDate)
		if err != nil {
			return nil, err
		}
		req.EventDate = &d
	}
	t, err := normalizeTime(req.EventTime)
	if err != nil {
		return nil, err
	}
	req.EventTime = t

	ev, err := s.events.Update(ctx, userID, eventID, req)
	if err != nil {
		return nil, err
	}
	if ev == nil {
		return nil, model.ErrNotFound
	}
	logger.Audit(ctx, logger.AuditEvent{
		Action:     logger.AuditActionCalendarUpdate,
		Resource:   "calendar_event",
		ResourceID: fmt.Sprint(eventID),
		Success:    true,
	})
	return ev, nil
}

// Delete remove um evento
func (s *CalendarService) Delete(ctx context.Context, userID, eventID int) error {
	ok, err := s.events.Delete(ctx, userID, eventID)
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrNotFound
	}
	logger.Audit(ctx, logger.AuditEvent{
		Action:     logger.AuditActionCalendarDelete,
		Resource:   "calendar_event",
		ResourceID: fmt.Sprint(eventID),
		Success:    true,
	})
	return nil
}
