package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cleberrangel/diane-api/internal/cache"
	"github.com/cleberrangel/diane-api/internal/capture"
	"github.com/cleberrangel/diane-api/internal/logger"
	"github.com/cleberrangel/diane-api/internal/metrics"
	"github.com/cleberrangel/diane-api/internal/middleware"
	"github.com/cleberrangel/diane-api/internal/model"
	"github.com/google/uuid"
)

// ErrCaptureFailed indica que o round trip da captura falhou
var ErrCaptureFailed = errors.New("falha ao criar tarefa da captura")

// Modos de round trip da captura
const (
	CaptureModeMock    = "mock"
	CaptureModePersist = "persist"
)

// DefaultHistoryLimit é o tamanho padrão do histórico de capturas
const DefaultHistoryLimit = 50

// TaskCreator cria a tarefa de uma captura persistida
type TaskCreator interface {
	Create(ctx context.Context, userID int, req model.TaskCreateRequest) (*model.Task, error)
}

// CaptureLog guarda o histórico de submissões
type CaptureLog interface {
	Record(ctx context.Context, rec model.CaptureRecord) error
	ListRecent(ctx context.Context, userID, limit int) ([]model.CaptureRecord, error)
}

// StatePublisher recebe as mudanças de estado dos formulários
type StatePublisher interface {
	PublishCaptureState(userID string, state capture.State, input string)
}

// CaptureConfig configura o serviço de captura
type CaptureConfig struct {
	Mode             string
	Delay            time.Duration // duração do round trip simulado
	FormTTL          time.Duration // formulários ociosos são descartados depois disso
	RoundTripTimeout time.Duration // limite do round trip persistido
}

// CaptureService mantém um formulário de captura por sessão
type CaptureService struct {
	config   CaptureConfig
	forms    *cache.Cache[*capture.Form]
	tasks    TaskCreator
	log      CaptureLog
	notifier capture.Notifier
	states   StatePublisher
}

// CaptureResult é o resultado de uma submissão
type CaptureResult struct {
	CaptureID    string                `json:"capture_id,omitempty"`
	Accepted     bool                  `json:"accepted"`
	ShouldSplit  bool                  `json:"should_split"`
	SubtaskCount int                   `json:"subtask_count,omitempty"`
	Notification *capture.Notification `json:"notification,omitempty"`
	Input        string                `json:"input"`
	State        capture.State         `json:"state"`
	TaskID       *int                  `json:"task_id,omitempty"`
}

// FormSnapshot é o estado atual de um formulário
type FormSnapshot struct {
	State capture.State `json:"state"`
	Input string        `json:"input"`
}

// NewCaptureService cria o serviço. tasks é obrigatório no modo persist;
// log, notifier e states são opcionais.
func NewCaptureService(config CaptureConfig, tasks TaskCreator, log CaptureLog, notifier capture.Notifier, states StatePublisher) (*CaptureService, error) {
	if config.Mode == "" {
		config.Mode = CaptureModeMock
	}
	if config.Mode != CaptureModeMock && config.Mode != CaptureModePersist {
		return nil, fmt.Errorf("modo de captura desconhecido: %q", config.Mode)
	}
	if config.Mode == CaptureModePersist && tasks == nil {
		return nil, errors.New("modo persist requer um TaskCreator")
	}
	if config.Delay == 0 {
		config.Delay = capture.DefaultDelay
	}
	if config.FormTTL == 0 {
		config.FormTTL = 30 * time.Minute
	}
	if config.RoundTripTimeout == 0 {
		config.RoundTripTimeout = 10 * time.Second
	}

	return &CaptureService{
		config:   config,
		forms:    cache.New[*capture.Form](config.FormTTL, time.Minute),
		tasks:    tasks,
		log:      log,
		notifier: notifier,
		states:   states,
	}, nil
}

// Mode returns the configured round-trip mode
func (s *CaptureService) Mode() string {
	return s.config.Mode
}

// roundTrip monta o round trip do modo configurado
func (s *CaptureService) roundTrip() capture.RoundTrip {
	if s.config.Mode == CaptureModeMock {
		return capture.Delay{Duration: s.config.Delay}
	}

	return capture.RoundTripFunc(func(ctx context.Context, req capture.Request) (capture.Receipt, error) {
		ctx, cancel := context.WithTimeout(ctx, s.config.RoundTripTimeout)
		defer cancel()

		userID, err := strconv.Atoi(req.UserID)
		if err != nil {
			return capture.Receipt{}, fmt.Errorf("user id inválido %q: %w", req.UserID, err)
		}
		task, err := s.tasks.Create(ctx, userID, model.TaskCreateRequest{
			Description: strings.TrimSpace(req.Text),
			RawInput:    req.Text,
		})
		if err != nil {
			return capture.Receipt{}, err
		}
		return capture.Receipt{TaskID: task.ID, Subtasks: len(task.Subtasks)}, nil
	})
}

// form devolve o formulário da sessão, criando-o no primeiro uso
func (s *CaptureService) form(session *middleware.Session) *capture.Form {
	f, created := s.forms.GetOrSet(session.ID, func() *capture.Form {
		userKey := session.UserKey()
		var form *capture.Form
		opts := capture.Options{}
		if s.states != nil {
			opts.OnStateChange = func(state capture.State) {
				s.states.PublishCaptureState(userKey, state, form.Input())
			}
		}
		form = capture.NewForm(userKey, s.roundTrip(), s.notifier, opts)
		return form
	})
	if created {
		logger.Global().Debug().
			Str("session_id", session.ID).
			Int("user_id", session.UserID).
			Msg("Formulário de captura criado")
	}
	return f
}

// Snapshot devolve o estado e o rascunho do formulário da sessão
func (s *CaptureService) Snapshot(session *middleware.Session) FormSnapshot {
	f := s.form(session)
	return FormSnapshot{State: f.State(), Input: f.Input()}
}

// SaveDraft substitui o rascunho; falha com capture.ErrSubmitting durante uma
// submissão e com ErrInvalidInput para texto longo demais
func (s *CaptureService) SaveDraft(session *middleware.Session, text string) (FormSnapshot, error) {
	if err := checkCaptureText(text); err != nil {
		return FormSnapshot{}, err
	}
	f := s.form(session)
	if !f.SetInputIfIdle(text) {
		return FormSnapshot{State: f.State(), Input: f.Input()}, capture.ErrSubmitting
	}
	return FormSnapshot{State: f.State(), Input: f.Input()}, nil
}

// Submit submete o formulário da sessão. Quando text não é nil ele substitui
// o rascunho antes. Texto em branco devolve Accepted false sem erro.
// Em falha do round trip o resultado vem preenchido junto com ErrCaptureFailed.
func (s *CaptureService) Submit(ctx context.Context, session *middleware.Session, text *string) (*CaptureResult, error) {
	if text != nil {
		if err := checkCaptureText(*text); err != nil {
			return nil, err
		}
	}
	f := s.form(session)

	if text != nil && !f.SetInputIfIdle(*text) {
		metrics.Get().IncrementCaptureBusy()
		return nil, capture.ErrSubmitting
	}

	captureID := uuid.New().String()
	ctx = logger.WithCaptureID(ctx, captureID)
	start := time.Now()

	outcome, err := f.Submit(ctx)
	if errors.Is(err, capture.ErrSubmitting) {
		metrics.Get().IncrementCaptureBusy()
		return nil, err
	}

	result := &CaptureResult{
		Accepted:     outcome.Accepted,
		ShouldSplit:  outcome.Classification.ShouldSplit,
		SubtaskCount: outcome.Classification.SubtaskCount,
		Input:        f.Input(),
		State:        f.State(),
	}
	if !outcome.Accepted {
		return result, nil
	}

	result.CaptureID = captureID
	notification := outcome.Notification
	result.Notification = &notification
	if outcome.Receipt.TaskID > 0 {
		taskID := outcome.Receipt.TaskID
		result.TaskID = &taskID
	}

	metrics.Get().RecordCapture(outcome.Classification.ShouldSplit, err == nil, time.Since(start).Milliseconds())
	s.record(ctx, session, captureID, outcome, err)

	if err != nil {
		return result, fmt.Errorf("%w: %s", ErrCaptureFailed, err.Error())
	}
	return result, nil
}

// record grava a submissão no histórico e no log de auditoria
func (s *CaptureService) record(ctx context.Context, session *middleware.Session, captureID string, outcome capture.Outcome, submitErr error) {
	rec := model.CaptureRecord{
		ID:           captureID,
		UserID:       session.UserID,
		RawInput:     outcome.Text,
		ShouldSplit:  outcome.Classification.ShouldSplit,
		SubtaskCount: outcome.Classification.SubtaskCount,
		Status:       model.CaptureStatusCreated,
		CreatedAt:    time.Now(),
	}
	if outcome.Receipt.TaskID > 0 {
		taskID := outcome.Receipt.TaskID
		rec.TaskID = &taskID
	}

	action := logger.AuditActionCaptureSubmit
	if submitErr != nil {
		rec.Status = model.CaptureStatusFailed
		rec.Error = submitErr.Error()
		action = logger.AuditActionCaptureFailed
	}

	details := map[string]interface{}{
		"should_split": rec.ShouldSplit,
		"mode":         s.config.Mode,
	}
	if rec.ShouldSplit {
		details["subtask_count"] = rec.SubtaskCount
	}
	logger.Audit(ctx, logger.AuditEvent{
		Action:     action,
		Resource:   "capture",
		ResourceID: captureID,
		Success:    submitErr == nil,
		Error:      rec.Error,
		Details:    details,
	})

	if s.log == nil {
		return
	}
	// O histórico não deve ser cancelado junto com a requisição
	if err := s.log.Record(context.Background(), rec); err != nil {
		logger.Get(ctx).Warn().Err(err).Msg("Erro ao gravar histórico de captura")
	}
}

// History devolve as últimas capturas do usuário
func (s *CaptureService) History(ctx context.Context, userID, limit int) ([]model.CaptureRecord, error) {
	if s.log == nil {
		return []model.CaptureRecord{}, nil
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return s.log.ListRecent(ctx, userID, limit)
}

// Discard descarta o formulário de uma sessão encerrada
func (s *CaptureService) Discard(sessionID string) {
	if _, ok := s.forms.Delete(sessionID); ok {
		logger.Global().Debug().Str("session_id", sessionID).Msg("Formulário de captura descartado")
	}
}

// ActiveForms devolve quantos formulários estão em memória
func (s *CaptureService) ActiveForms() int {
	return s.forms.Size()
}

// Stop para a limpeza periódica dos formulários
func (s *CaptureService) Stop() {
	s.forms.Stop()
}
