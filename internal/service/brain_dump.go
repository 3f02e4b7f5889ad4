package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cleberrangel/diane-api/internal/database"
	"github.com/cleberrangel/diane-api/internal/logger"
	"github.com/cleberrangel/diane-api/internal/metrics"
	"github.com/cleberrangel/diane-api/internal/middleware"
	"github.com/cleberrangel/diane-api/internal/model"
	"github.com/cleberrangel/diane-api/internal/repository"
)

// BrainDumpService grava um brain dump já estruturado
type BrainDumpService struct {
	db       *sql.DB
	tasks    *repository.TaskRepository
	shopping *repository.ShoppingRepository
	calendar *repository.CalendarRepository
}

// NewBrainDumpService cria um novo serviço de brain dump
func NewBrainDumpService(db *sql.DB) *BrainDumpService {
	return &BrainDumpService{
		db:       db,
		tasks:    repository.NewTaskRepository(db),
		shopping: repository.NewShoppingRepository(db),
		calendar: repository.NewCalendarRepository(db),
	}
}

type preparedTask struct {
	task     repository.NewTask
	subtasks []model.SubTaskCreateRequest
}

// Save valida tudo antes de abrir a transação; qualquer falha desfaz o brain dump inteiro
func (s *BrainDumpService) Save(ctx context.Context, userID int, req model.BrainDumpRequest) (*model.BrainDumpResponse, error) {
	raw := middleware.SanitizeText(req.Text, middleware.DefaultSanitizeConfig())

	tasks := make([]preparedTask, 0, len(req.Tasks))
	for i, t := range req.Tasks {
		var subtasks []model.SubTaskCreateRequest
		if t.ShouldDecompose {
			subtasks = t.Subtasks
		}
		nt, subs, err := prepareTask(t.Description, t.DueDate, t.EstimatedTimeMinutes, raw, subtasks)
		if err != nil {
			return nil, fmt.Errorf("tarefa %d: %w", i+1, err)
		}
		tasks = append(tasks, preparedTask{task: nt, subtasks: subs})
	}

	items := make([]string, 0, len(req.ShoppingItems))
	for i, item := range req.ShoppingItems {
		d, err := requireText(middleware.SanitizeDescription(item.Description))
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}
		items = append(items, d)
	}

	events := make([]repository.NewCalendarEvent, 0, len(req.CalendarEvents))
	for i, ev := range req.CalendarEvents {
		ne, err := prepareEvent(ev.Description, ev.EventDate, ev.EventTime, raw)
		if err != nil {
			return nil, fmt.Errorf("evento %d: %w", i+1, err)
		}
		events = append(events, ne)
	}

	resp := &model.BrainDumpResponse{
		Tasks:          []model.Task{},
		ShoppingItems:  []model.ShoppingItem{},
		CalendarEvents: []model.CalendarEvent{},
	}

	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		taskRepo := s.tasks.WithTx(tx)
		for _, t := range tasks {
			created, err := createTask(ctx, taskRepo, userID, t.task, t.subtasks)
			if err != nil {
				return err
			}
			resp.Tasks = append(resp.Tasks, *created)
		}

		shoppingRepo := s.shopping.WithTx(tx)
		for _, d := range items {
			created, err := shoppingRepo.Create(ctx, userID, d, raw)
			if err != nil {
				return err
			}
			resp.ShoppingItems = append(resp.ShoppingItems, *created)
		}

		calendarRepo := s.calendar.WithTx(tx)
		for _, ev := range events {
			created, err := calendarRepo.Create(ctx, userID, ev)
			if err != nil {
				return err
			}
			resp.CalendarEvents = append(resp.CalendarEvents, *created)
		}
		return nil
	})
	if err != nil {
		logger.Get(ctx).Error().Err(err).Int("user_id", userID).Msg("Erro ao salvar brain dump")
		return nil, err
	}

	metrics.Get().IncrementBrainDumpSaved()
	logger.Audit(ctx, logger.AuditEvent{
		Action:   logger.AuditActionBrainDumpSave,
		Resource: "brain_dump",
		Success:  true,
		Details: map[string]interface{}{
			"tasks":           len(resp.Tasks),
			"shopping_items":  len(resp.ShoppingItems),
			"calendar_events": len(resp.CalendarEvents),
		},
	})
	return resp, nil
}
