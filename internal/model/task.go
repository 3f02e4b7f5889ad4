package model

import "time"

// Formatos aceitos para datas e horários
const (
	DateLayout      = "2006-01-02"
	TimeLayout      = "15:04:05"
	ShortTimeLayout = "15:04"
)

// Task é uma tarefa do usuário com subtarefas opcionais
type Task struct {
	ID                   int       `json:"id"`
	UserID               int       `json:"user_id"`
	Description          string    `json:"description"`
	DueDate              *string   `json:"due_date"`
	EstimatedTimeMinutes *int      `json:"estimated_time_minutes"`
	Completed            bool      `json:"completed"`
	RawInput             string    `json:"raw_input"`
	Subtasks             []SubTask `json:"subtasks"`
	CreatedAt            time.Time `json:"created_at"`
}

// SubTask pertence a uma Task e é removida junto com ela
type SubTask struct {
	ID                   int       `json:"id"`
	ParentTaskID         int       `json:"parent_task_id"`
	Description          string    `json:"description"`
	Order                int       `json:"order"`
	EstimatedTimeMinutes *int      `json:"estimated_time_minutes"`
	DueDate              *string   `json:"due_date"`
	Completed            bool      `json:"completed"`
	CreatedAt            time.Time `json:"created_at"`
}

// TaskSort define a ordenação da listagem de tarefas
type TaskSort string

const (
	SortByCreatedAt TaskSort = "created_at"
	SortByDueDate   TaskSort = "due_date"
)

// TaskFilter filtra a listagem de tarefas
type TaskFilter struct {
	Completed *bool
	SortBy    TaskSort
}

// ShoppingItem é um item da lista de compras
type ShoppingItem struct {
	ID          int       `json:"id"`
	UserID      int       `json:"user_id"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	RawInput    string    `json:"raw_input"`
	CreatedAt   time.Time `json:"created_at"`
}

// CalendarEvent é um evento com data e horário opcional
type CalendarEvent struct {
	ID          int       `json:"id"`
	UserID      int       `json:"user_id"`
	Description string    `json:"description"`
	EventDate   string    `json:"event_date"`
	EventTime   *string   `json:"event_time"`
	RawInput    string    `json:"raw_input"`
	CreatedAt   time.Time `json:"created_at"`
}

// CalendarFilter limita eventos a um intervalo de datas inclusivo
type CalendarFilter struct {
	StartDate *string
	EndDate   *string
}

// CaptureRecord registra uma submissão de captura rápida
type CaptureRecord struct {
	ID           string    `json:"id"`
	UserID       int       `json:"user_id"`
	RawInput     string    `json:"raw_input"`
	ShouldSplit  bool      `json:"should_split"`
	SubtaskCount int       `json:"subtask_count,omitempty"` // zero quando não dividida
	Status       string    `json:"status"`
	TaskID       *int      `json:"task_id,omitempty"`
	Error        string    `json:"error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Status de um CaptureRecord
const (
	CaptureStatusCreated = "created"
	CaptureStatusFailed  = "failed"
)
