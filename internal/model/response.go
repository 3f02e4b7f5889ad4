package model

import "time"

// Response representa a resposta padrão da API
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
	Message string      `json:"message,omitempty"`
}

// Meta contém metadados de listagens
type Meta struct {
	Total int `json:"total"`
}

// ErrorResponse representa uma resposta de erro
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

// SessionResponse é devolvida no login e no signup
type SessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}

// BrainDumpResponse lista os registros criados a partir de um brain dump
type BrainDumpResponse struct {
	Tasks          []Task          `json:"tasks"`
	ShoppingItems  []ShoppingItem  `json:"shopping_items"`
	CalendarEvents []CalendarEvent `json:"calendar_events"`
}

// NotificationPayload é enviado ao webhook de notificações
type NotificationPayload struct {
	Event       string    `json:"event"`
	UserID      string    `json:"user_id"`
	Kind        string    `json:"kind"`
	Message     string    `json:"message"`
	Description string    `json:"description"`
	DurationMs  int64     `json:"duration_ms"`
	SentAt      time.Time `json:"sent_at"`
}
