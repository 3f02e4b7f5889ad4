package model

// LoginRequest autentica pelo email, criando o usuário se necessário
type LoginRequest struct {
	Email string `json:"email" binding:"required,email,max=255"`
}

// SignupRequest cria o usuário com o primeiro nome
type SignupRequest struct {
	Email     string `json:"email" binding:"required,email,max=255"`
	FirstName string `json:"first_name" binding:"required,max=100"`
}

// TaskCreateRequest cria uma tarefa com subtarefas opcionais
type TaskCreateRequest struct {
	Description          string                 `json:"description" binding:"required,max=2000"`
	DueDate              *string                `json:"due_date"`
	EstimatedTimeMinutes *int                   `json:"estimated_time_minutes" binding:"omitempty,min=0"`
	RawInput             string                 `json:"raw_input"`
	Subtasks             []SubTaskCreateRequest `json:"subtasks" binding:"omitempty,dive"`
}

// SubTaskCreateRequest descreve uma subtarefa a ser criada
type SubTaskCreateRequest struct {
	Description          string  `json:"description" binding:"required,max=2000"`
	Order                int     `json:"order"`
	EstimatedTimeMinutes *int    `json:"estimated_time_minutes" binding:"omitempty,min=0"`
	DueDate              *string `json:"due_date"`
}

// TaskUpdateRequest atualiza parcialmente uma tarefa.
// Campos nil são mantidos; due_date vazio remove a data.
type TaskUpdateRequest struct {
	Description          *string `json:"description" binding:"omitempty,min=1,max=2000"`
	DueDate              *string `json:"due_date"`
	EstimatedTimeMinutes *int    `json:"estimated_time_minutes" binding:"omitempty,min=0"`
	Completed            *bool   `json:"completed"`
}

// SubTaskUpdateRequest atualiza parcialmente uma subtarefa
type SubTaskUpdateRequest struct {
	Description          *string `json:"description" binding:"omitempty,min=1,max=2000"`
	DueDate              *string `json:"due_date"`
	EstimatedTimeMinutes *int    `json:"estimated_time_minutes" binding:"omitempty,min=0"`
	Completed            *bool   `json:"completed"`
}

// ShoppingItemCreateRequest cria um item de compra
type ShoppingItemCreateRequest struct {
	Description string `json:"description" binding:"required,max=500"`
	RawInput    string `json:"raw_input"`
}

// ShoppingItemUpdateRequest atualiza parcialmente um item de compra
type ShoppingItemUpdateRequest struct {
	Description *string `json:"description" binding:"omitempty,min=1,max=500"`
	Completed   *bool   `json:"completed"`
}

// CalendarEventCreateRequest cria um evento
type CalendarEventCreateRequest struct {
	Description string  `json:"description" binding:"required,max=2000"`
	EventDate   string  `json:"event_date" binding:"required"`
	EventTime   *string `json:"event_time"`
	RawInput    string  `json:"raw_input"`
}

// CalendarEventUpdateRequest atualiza parcialmente um evento; event_time vazio remove o horário
type CalendarEventUpdateRequest struct {
	Description *string `json:"description" binding:"omitempty,min=1,max=2000"`
	EventDate   *string `json:"event_date"`
	EventTime   *string `json:"event_time"`
}

// CaptureRequest submete o texto da captura rápida.
// Sem text, o rascunho atual do formulário é submetido.
type CaptureRequest struct {
	Text *string `json:"text"`
}

// DraftRequest substitui o rascunho do formulário de captura
type DraftRequest struct {
	Text string `json:"text" binding:"max=10000"`
}

// BrainDumpRequest traz um brain dump já estruturado para ser salvo
type BrainDumpRequest struct {
	Text           string                   `json:"text" binding:"required,max=10000"`
	Tasks          []ProcessedTask          `json:"tasks" binding:"omitempty,dive"`
	ShoppingItems  []ProcessedShoppingItem  `json:"shopping_items" binding:"omitempty,dive"`
	CalendarEvents []ProcessedCalendarEvent `json:"calendar_events" binding:"omitempty,dive"`
}

// ProcessedTask é uma tarefa extraída de um brain dump
type ProcessedTask struct {
	Description          string                 `json:"description" binding:"required"`
	DueDate              *string                `json:"due_date"`
	EstimatedTimeMinutes *int                   `json:"estimated_time_minutes"`
	ShouldDecompose      bool                   `json:"should_decompose"`
	Reasoning            string                 `json:"reasoning,omitempty"`
	Subtasks             []SubTaskCreateRequest `json:"subtasks" binding:"omitempty,dive"`
}

// ProcessedShoppingItem é um item de compra extraído de um brain dump
type ProcessedShoppingItem struct {
	Description string `json:"description" binding:"required"`
}

// ProcessedCalendarEvent é um evento extraído de um brain dump
type ProcessedCalendarEvent struct {
	Description string  `json:"description" binding:"required"`
	EventDate   string  `json:"event_date" binding:"required"`
	EventTime   *string `json:"event_time"`
}
