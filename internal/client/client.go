package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cleberrangel/diane-api/internal/logger"
	"github.com/cleberrangel/diane-api/internal/model"
	"golang.org/x/time/rate"
)

const (
	// RequestsPerMinute limite conservador do lado do cliente
	RequestsPerMinute = 120

	// DefaultTimeout timeout padrão para requisições
	DefaultTimeout = 15 * time.Second

	// RetryMaxAttempts número máximo de tentativas por requisição
	RetryMaxAttempts = 3

	// RetryBackoff tempo de espera entre retries
	RetryBackoff = 2 * time.Second
)

// StatusError é uma resposta HTTP não tratada pelos erros de model
type StatusError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("status %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Message)
}

// retryable indica falha do servidor
func (e *StatusError) retryable() bool {
	return e.StatusCode >= 500
}

// Client é o cliente HTTP para a API da Diane
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	backoff    time.Duration
}

// Option ajusta o cliente
type Option func(*Client)

// WithToken usa um token de sessão já emitido
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient troca o http.Client padrão
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBackoff troca o intervalo entre retries
func WithBackoff(d time.Duration) Option {
	return func(c *Client) { c.backoff = d }
}

// NewClient cria um novo cliente para baseURL (ex: http://localhost:8080)
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     30 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Every(time.Minute/RequestsPerMinute), 10),
		backoff: RetryBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token retorna o token de sessão atual
func (c *Client) Token() string {
	return c.token
}

// BaseURL retorna a URL base da API
func (c *Client) BaseURL() string {
	return c.baseURL
}

// envelope espelha model.Response e model.ErrorResponse
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Meta    *model.Meta     `json:"meta"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
	Details string          `json:"details"`
}

// Login autentica pelo email e guarda o token da sessão
func (c *Client) Login(ctx context.Context, email string) (*model.SessionResponse, error) {
	var session model.SessionResponse
	if err := c.call(ctx, http.MethodPost, "/api/auth/login", model.LoginRequest{Email: email}, &session); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if session.Token == "" {
		return nil, fmt.Errorf("login: %w", model.ErrInvalidResponse)
	}
	c.token = session.Token

	logger.Get(ctx).Debug().
		Int("user_id", session.User.ID).
		Time("expires_at", session.ExpiresAt).
		Msg("Sessão iniciada")
	return &session, nil
}

// CreateTask cria uma tarefa
func (c *Client) CreateTask(ctx context.Context, req model.TaskCreateRequest) (*model.Task, error) {
	var task model.Task
	if err := c.call(ctx, http.MethodPost, "/api/tasks", req, &task); err != nil {
		return nil, fmt.Errorf("criar tarefa: %w", err)
	}
	return &task, nil
}

// ListTasks lista as tarefas do usuário
func (c *Client) ListTasks(ctx context.Context, filter model.TaskFilter) ([]model.Task, error) {
	query := url.Values{}
	if filter.Completed != nil {
		query.Set("completed", fmt.Sprintf("%t", *filter.Completed))
	}
	if filter.SortBy != "" {
		query.Set("sort_by", string(filter.SortBy))
	}
	path := "/api/tasks"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var tasks []model.Task
	if err := c.call(ctx, http.MethodGet, path, nil, &tasks); err != nil {
		return nil, fmt.Errorf("listar tarefas: %w", err)
	}
	return tasks, nil
}

// call aguarda o rate limiter e executa a requisição com retry
func (c *Client) call(ctx context.Context, method, path string, body, result interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
	}

	var lastErr error
	for attempt := 1; attempt <= RetryMaxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		err := c.doRequest(ctx, method, path, payload, result)
		if err == nil {
			return nil
		}
		lastErr = err

		// Se é erro de contexto cancelado, não faz retry
		if ctx.Err() != nil {
			return err
		}
		if !shouldRetry(err) {
			return err
		}

		if attempt < RetryMaxAttempts {
			logger.Get(ctx).Warn().
				Str("method", method).
				Str("path", path).
				Int("attempt", attempt).
				Int("max_attempts", RetryMaxAttempts).
				Err(err).
				Dur("backoff", c.backoff).
				Msg("Tentativa falhou, aguardando retry")

			select {
			case <-time.After(c.backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	return lastErr
}

// shouldRetry aceita apenas falhas transitórias
func shouldRetry(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.retryable()
	}
	switch {
	case errors.Is(err, model.ErrRateLimited),
		errors.Is(err, model.ErrUnauthorized),
		errors.Is(err, model.ErrNotFound),
		errors.Is(err, model.ErrConflict),
		errors.Is(err, model.ErrInvalidResponse):
		return false
	}
	return true
}

// doRequest executa uma requisição HTTP para a API
func (c *Client) doRequest(ctx context.Context, method, path string, payload []byte, result interface{}) error {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("criar request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return model.ErrTimeout
		}
		var netErr interface{ Timeout() bool }
		if errors.As(err, &netErr) && netErr.Timeout() {
			return model.ErrTimeout
		}
		return fmt.Errorf("executar request: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)

	// Tratamento de erros HTTP
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return model.ErrRateLimited
	case resp.StatusCode == http.StatusUnauthorized:
		return model.ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return model.ErrNotFound
	case resp.StatusCode == http.StatusConflict:
		return model.ErrConflict
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		msg := env.Error
		if msg == "" {
			msg = env.Message
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &StatusError{StatusCode: resp.StatusCode, Code: env.Code, Message: msg}
	}

	if decodeErr != nil {
		return fmt.Errorf("%w: %s", model.ErrInvalidResponse, decodeErr.Error())
	}
	if !env.Success {
		return fmt.Errorf("%w: success=false", model.ErrInvalidResponse)
	}
	if result == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, result); err != nil {
		return fmt.Errorf("%w: %s", model.ErrInvalidResponse, err.Error())
	}
	return nil
}
