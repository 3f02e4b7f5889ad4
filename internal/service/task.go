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

// TaskService contém as regras de tarefas e subtarefas
type TaskService struct {
	db    *sql.DB
	tasks *repository.TaskRepository
}

// NewTaskService cria um novo serviço de tarefas
func NewTaskService(db *sql.DB) *TaskService {
	return &TaskService{
		db:    db,
		tasks: repository.NewTaskRepository(db),
	}
}

// List retorna as tarefas do usuário
func (s *TaskService) List(ctx context.Context, userID int, filter model.TaskFilter) ([]model.Task, error) {
	if filter.SortBy == "" {
		filter.SortBy = model.SortByCreatedAt
	}
	if filter.SortBy != model.SortByCreatedAt && filter.SortBy != model.SortByDueDate {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSort, filter.SortBy)
	}
	return s.tasks.List(ctx, userID, filter)
}

// Get retorna uma tarefa do usuário ou model.ErrNotFound
func (s *TaskService) Get(ctx context.Context, userID, taskID int) (*model.Task, error) {
	task, err := s.tasks.Get(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, model.ErrNotFound
	}
	return task, nil
}

// Create cria a tarefa e suas subtarefas em uma única transação
func (s *TaskService) Create(ctx context.Context, userID int, req model.TaskCreateRequest) (*model.Task, error) {
	newTask, subtasks, err := prepareTask(req.Description, req.DueDate, req.EstimatedTimeMinutes, req.RawInput, req.Subtasks)
	if err != nil {
		return nil, err
	}

	var created *model.Task
	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		created, err = createTask(ctx, s.tasks.WithTx(tx), userID, newTask, subtasks)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.Get().IncrementTaskCreated()
	logger.Audit(ctx, logger.AuditEvent{
		Action:     logger.AuditActionTaskCreate,
		Resource:   "task",
		ResourceID: fmt.Sprint(created.ID),
		Success:    true,
		Details:    map[string]interface{}{"subtasks": len(created.Subtasks)},
	})
	return created, nil
}

// prepareTask valida e normaliza os campos de uma nova tarefa
func prepareTask(description string, dueDate *string, minutes *int, rawInput string, subtasks []model.SubTaskCreateRequest) (repository.NewTask, []model.SubTaskCreateRequest, error) {
	description, err := requireText(middleware.SanitizeDescription(description))
	if err != nil {
		return repository.NewTask{}, nil, err
	}
	due, err := normalizeDate(dueDate)
	if err != nil {
		return repository.NewTask{}, nil, err
	}

	prepared := make([]model.SubTaskCreateRequest, 0, len(subtasks))
	for i, st := range subtasks {
		st.Description, err = requireText(middleware.SanitizeDescription(st.Description))
		if err != nil {
			return repository.NewTask{}, nil, fmt.Errorf("subtarefa %d: %w", i+1, err)
		}
		if st.DueDate, err = normalizeDate(st.DueDate); err != nil {
			return repository.NewTask{}, nil, fmt.Errorf("subtarefa %d: %w", i+1, err)
		}
		st.DueDate = emptyToNil(st.DueDate)
		if st.Order == 0 {
			st.Order = i + 1
		}
		prepared = append(prepared, st)
	}

	return repository.NewTask{
		Description:          description,
		DueDate:              emptyToNil(due),
		EstimatedTimeMinutes: minutes,
		RawInput:             middleware.SanitizeText(rawInput, middleware.DefaultSanitizeConfig()),
	}, prepared, nil
}

// createTask grava a tarefa e as subtarefas usando repo, que pode estar em uma transação
func createTask(ctx context.Context, repo *repository.TaskRepository, userID int, task repository.NewTask, subtasks []model.SubTaskCreateRequest) (*model.Task, error) {
	created, err := repo.Create(ctx, userID, task)
	if err != nil {
		return nil, err
	}
	if len(subtasks) > 0 {
		subs, err := repo.CreateSubtasks(ctx, created.ID, subtasks)
		if err != nil {
			return nil, err
		}
		created.Subtasks = subs
	}
	return created, nil
}

// Update aplica uma atualização parcial
func (s *TaskService) Update(ctx context.Context, userID, taskID int, req model.TaskUpdateRequest) (*model.Task, error) {
	if req.Description != nil {
		d, err := requireText(middleware.SanitizeDescription(*req.Description))
		if err != nil {
			return nil, err
		}
		req.Description = &d
	}
	due, err := normalizeDate(req.DueDate)
	if err != nil {
		return nil, err
	}
	req.DueDate = due

	task, err := s.tasks.Update(ctx, userID, taskID, req)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, model.ErrNotFound
	}

	if req.Completed != nil && *req.Completed {
		metrics.Get().IncrementTaskCompleted()
	}
	logger.Audit(ctx, logger.AuditEvent{
		Action:     logger.AuditActionTaskUpdate,
		Resource:   "task",
		ResourceID: fmt.Sprint(taskID),
		Success:    true,
	})
	return task, nil
}

// Delete remove a tarefa e suas subtarefas
func (s *TaskService) Delete(ctx context.Context, userID, taskID int) error {
	ok, err := s.tasks.Delete(ctx, userID, taskID)
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrNotFound
	}
	logger.Audit(ctx, logger.AuditEvent{
		Action:     logger.AuditActionTaskDelete,
		Resource:   "task",
		ResourceID: fmt.Sprint(taskID),
		Success:    true,
	})
	return nil
}

// UpdateSubtask aplica uma atualização parcial a uma subtarefa
func (s *TaskService) UpdateSubtask(ctx context.Context, userID, taskID, subtaskID int, req model.SubTaskUpdateRequest) (*model.SubTask, error) {
	if req.Description != nil {
		d, err := requireText(middleware.SanitizeDescription(*req.Description))
		if err != nil {
			return nil, err
		}
		req.Description = &d
	}
	due, err := normalizeDate(req.DueDate)
	if err != nil {
		return nil, err
	}
	req.DueDate = due

	st, err := s.tasks.UpdateSubtask(ctx, userID, taskID, subtaskID, req)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, model.ErrNotFound
	}
	logger.Audit(ctx, logger.AuditEvent{
		Action:     logger.AuditActionSubtaskUpdate,
		Resource:   "subtask",
		ResourceID: fmt.Sprint(subtaskID),
		Success:    true,
	})
	return st, nil
}

// DeleteSubtask remove uma subtarefa
func (s *TaskService) DeleteSubtask(ctx context.Context, userID, taskID, subtaskID int) error {
	ok, err := s.tasks.DeleteSubtask(ctx, userID, taskID, subtaskID)
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrNotFound
	}
	logger.Audit(ctx, logger.AuditEvent{
		Action:     logger.AuditActionSubtaskDelete,
		Resource:   "subtask",
		ResourceID: fmt.Sprint(subtaskID),
		Success:    true,
	})
	return nil
}
