package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cleberrangel/diane-api/internal/logger"
	"github.com/cleberrangel/diane-api/internal/model"
	"github.com/lib/pq"
)

// TaskRepository gerencia tarefas e subtarefas no banco
type TaskRepository struct {
	db DBTX
}

// NewTaskRepository cria um novo repositório de tarefas
func NewTaskRepository(db DBTX) *TaskRepository {
	return &TaskRepository{db: db}
}

// WithTx devolve uma cópia do repositório que opera dentro de tx
func (r *TaskRepository) WithTx(tx *sql.Tx) *TaskRepository {
	return &TaskRepository{db: tx}
}

// NewTask são os campos de uma nova tarefa
type NewTask struct {
	Description          string
	DueDate              *string
	EstimatedTimeMinutes *int
	RawInput             string
}

const taskColumns = `id, user_id, description, due_date, estimated_time_minutes, completed, raw_input, created_at`

const subtaskColumns = `id, parent_task_id, description, "order", estimated_time_minutes, due_date, completed, created_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row rowScanner) (model.Task, error) {
	var (
		t       model.Task
		dueDate sql.NullTime
		minutes sql.NullInt64
	)
	err := row.Scan(&t.ID, &t.UserID, &t.Description, &dueDate, &minutes, &t.Completed, &t.RawInput, &t.CreatedAt)
	t.DueDate = dateString(dueDate)
	t.EstimatedTimeMinutes = intPtr(minutes)
	t.Subtasks = []model.SubTask{}
	return t, err
}

func scanSubtask(row rowScanner) (model.SubTask, error) {
	var (
		st      model.SubTask
		dueDate sql.NullTime
		minutes sql.NullInt64
	)
	err := row.Scan(&st.ID, &st.ParentTaskID, &st.Description, &st.Order, &minutes, &dueDate, &st.Completed, &st.CreatedAt)
	st.DueDate = dateString(dueDate)
	st.EstimatedTimeMinutes = intPtr(minutes)
	return st, err
}

// Create insere uma tarefa sem subtarefas
func (r *TaskRepository) Create(ctx context.Context, userID int, task NewTask) (*model.Task, error) {
	query := `
		INSERT INTO tasks (user_id, description, due_date, estimated_time_minutes, raw_input, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING ` + taskColumns

	created, err := scanTask(r.db.QueryRowContext(ctx, query,
		userID, task.Description, nullableDate(task.DueDate), nullableInt(task.EstimatedTimeMinutes), task.RawInput))
	if err != nil {
		logger.Get(ctx).Error().Err(err).Int("user_id", userID).Msg("Erro ao criar tarefa")
		return nil, fmt.Errorf("erro ao criar tarefa: %w", err)
	}
	return &created, nil
}

// CreateSubtasks insere as subtarefas de uma tarefa na ordem recebida
func (r *TaskRepository) CreateSubtasks(ctx context.Context, taskID int, subtasks []model.SubTaskCreateRequest) ([]model.SubTask, error) {
	query := `
		INSERT INTO subtasks (parent_task_id, description, "order", estimated_time_minutes, due_date, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING ` + subtaskColumns

	created := make([]model.SubTask, 0, len(subtasks))
	for _, st := range subtasks {
		sub, err := scanSubtask(r.db.QueryRowContext(ctx, query,
			taskID, st.Description, st.Order, nullableInt(st.EstimatedTimeMinutes), nullableDate(st.DueDate)))
		if err != nil {
			return nil, fmt.Errorf("erro ao criar subtarefa: %w", err)
		}
		created = append(created, sub)
	}
	return created, nil
}

// List retorna as tarefas do usuário com subtarefas
func (r *TaskRepository) List(ctx context.Context, userID int, filter model.TaskFilter) ([]model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1`
	args := []interface{}{userID}

	if filter.Completed != nil {
		args = append(args, *filter.Completed)
		query += fmt.Sprintf(" AND completed = $%d", len(args))
	}

	switch filter.SortBy {
	case model.SortByDueDate:
		query += " ORDER BY due_date ASC, id ASC"
	default:
		query += " ORDER BY created_at DESC, id DESC"
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar tarefas: %w", err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao ler tarefa: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachSubtasks(ctx, tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// Get retorna a tarefa do usuário ou nil se não existir
func (r *TaskRepository) Get(ctx context.Context, userID, taskID int) (*model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND user_id = $2`
	t, err := scanTask(r.db.QueryRowContext(ctx, query, taskID, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao buscar tarefa: %w", err)
	}

	tasks := []model.Task{t}
	if err := r.attachSubtasks(ctx, tasks); err != nil {
		return nil, err
	}
	return &tasks[0], nil
}

// attachSubtasks carrega as subtarefas de todas as tarefas em uma consulta
func (r *TaskRepository) attachSubtasks(ctx context.Context, tasks []model.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	ids := make([]int64, len(tasks))
	index := make(map[int]int, len(tasks))
	for i, t := range tasks {
		ids[i] = int64(t.ID)
		index[t.ID] = i
	}

	query := `SELECT ` + subtaskColumns + ` FROM subtasks WHERE parent_task_id = ANY($1) ORDER BY "order" ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("erro ao listar subtarefas: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		st, err := scanSubtask(rows)
		if err != nil {
			return fmt.Errorf("erro ao ler subtarefa: %w", err)
		}
		i := index[st.ParentTaskID]
		tasks[i].Subtasks = append(tasks[i].Subtasks, st)
	}
	return rows.Err()
}

// Update aplica uma atualização parcial; retorna nil se a tarefa não existir
func (r *TaskRepository) Update(ctx context.Context, userID, taskID int, req model.TaskUpdateRequest) (*model.Task, error) {
	b := &updateBuilder{}
	if req.Description != nil {
		b.set("description", *req.Description)
	}
	if req.DueDate != nil {
		b.set("due_date", nullableDate(req.DueDate))
	}
	if req.EstimatedTimeMinutes != nil {
		b.set("estimated_time_minutes", *req.EstimatedTimeMinutes)
	}
	if req.Completed != nil {
		b.set("completed", *req.Completed)
	}

	if !b.empty() {
		query, args := b.build("tasks", "id = $%d AND user_id = $%d", taskID, userID)
		res, err := r.db.ExecContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("erro ao atualizar tarefa: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil, nil
		}
	}

	return r.Get(ctx, userID, taskID)
}

// Delete remove a tarefa e, em cascata, suas subtarefas
func (r *TaskRepository) Delete(ctx context.Context, userID, taskID int) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, taskID, userID)
	if err != nil {
		return false, fmt.Errorf("erro ao remover tarefa: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// subtaskOwnership restringe a subtarefa à tarefa e ao usuário informados
const subtaskOwnership = `id = $%d AND parent_task_id = $%d AND parent_task_id IN (SELECT id FROM tasks WHERE user_id = $%d)`

// UpdateSubtask aplica uma atualização parcial; retorna nil se não existir
func (r *TaskRepository) UpdateSubtask(ctx context.Context, userID, taskID, subtaskID int, req model.SubTaskUpdateRequest) (*model.SubTask, error) {
	b := &updateBuilder{}
	if req.Description != nil {
		b.set("description", *req.Description)
	}
	if req.DueDate != nil {
		b.set("due_date", nullableDate(req.DueDate))
	}
	if req.EstimatedTimeMinutes != nil {
		b.set("estimated_time_minutes", *req.EstimatedTimeMinutes)
	}
	if req.Completed != nil {
		b.set("completed", *req.Completed)
	}
	if b.empty() {
		// Nada a alterar: apenas confirma a existência
		b.set("id", subtaskID)
	}

	query, args := b.build("subtasks", subtaskOwnership, subtaskID, taskID, userID)
	query += " RETURNING " + subtaskColumns

	st, err := scanSubtask(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao atualizar subtarefa: %w", err)
	}
	return &st, nil
}

// DeleteSubtask remove uma subtarefa da tarefa do usuário
func (r *TaskRepository) DeleteSubtask(ctx context.Context, userID, taskID, subtaskID int) (bool, error) {
	query := fmt.Sprintf(`DELETE FROM subtasks WHERE `+subtaskOwnership, 1, 2, 3)
	res, err := r.db.ExecContext(ctx, query, subtaskID, taskID, userID)
	if err != nil {
		return false, fmt.Errorf("erro ao remover subtarefa: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
