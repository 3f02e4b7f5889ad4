package capture

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/cleberrangel/diane-api/internal/logger"
)

// State is the lifecycle state of a Form.
type State int

const (
	StateIdle State = iota
	StateSubmitting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// MarshalText renders the state as its name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ErrSubmitting is returned by Submit while a previous submission is in flight.
var ErrSubmitting = errors.New("capture already submitting")

// Outcome reports what a call to Submit did.
type Outcome struct {
	// Accepted is false when the input was blank and nothing happened.
	Accepted       bool
	Text           string
	Classification Classification
	Notification   Notification
	Receipt        Receipt
}

// Options configures a Form.
type Options struct {
	// OnStateChange is called after every state transition, outside the form lock.
	OnStateChange func(State)
}

// Form is one quick-capture input surface: a single text buffer, a state
// machine idle -> submitting -> idle and the notifications it emits.
// It is safe for concurrent use.
type Form struct {
	owner    string
	trip     RoundTrip
	notifier Notifier
	opts     Options

	mu    sync.Mutex
	state State
	input string
}

// NewForm creates an idle Form with empty input owned by userID.
func NewForm(userID string, trip RoundTrip, notifier Notifier, opts Options) *Form {
	return &Form{
		owner:    userID,
		trip:     trip,
		notifier: notifier,
		opts:     opts,
	}
}

// Owner returns the user the form belongs to.
func (f *Form) Owner() string {
	return f.owner
}

// SetInput replaces the text buffer.
func (f *Form) SetInput(text string) {
	f.mu.Lock()
	f.input = text
	f.mu.Unlock()
}

// SetInputIfIdle replaces the text buffer unless a submission is in flight.
func (f *Form) SetInputIfIdle(text string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateIdle {
		return false
	}
	f.input = text
	return true
}

// Input returns the current text buffer.
func (f *Form) Input() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.input
}

// State returns the current state.
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// CanSubmit reports whether a submission would be accepted right now.
func (f *Form) CanSubmit() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state == StateIdle && strings.TrimSpace(f.input) != ""
}

// Submit runs one submission of the current input.
//
// Blank input is a no-op returning an Outcome with Accepted false. While a
// submission is in flight ErrSubmitting is returned and nothing changes.
// Otherwise the form enters submitting, awaits the round trip, emits exactly
// one notification and returns to idle. The input is cleared on success and
// kept on failure; the round-trip error is returned wrapped.
func (f *Form) Submit(ctx context.Context) (Outcome, error) {
	f.mu.Lock()
	if f.state == StateSubmitting {
		f.mu.Unlock()
		return Outcome{}, ErrSubmitting
	}
	text := f.input
	if strings.TrimSpace(text) == "" {
		f.mu.Unlock()
		return Outcome{}, nil
	}
	f.state = StateSubmitting
	f.mu.Unlock()
	f.stateChanged(StateSubmitting)

	log := logger.Get(ctx)
	outcome := Outcome{
		Accepted:       true,
		Text:           text,
		Classification: Classify(text),
	}

	receipt, err := f.runTrip(ctx, text, outcome.Classification)
	if err != nil {
		outcome.Notification = FailureNotification()
		f.notify(ctx, outcome.Notification)
		f.finish(false)
		log.Warn().Err(err).Str("user_id", f.owner).Msg("Falha na captura rápida")
		return outcome, fmt.Errorf("capture round trip: %w", err)
	}

	outcome.Receipt = receipt
	outcome.Notification = SuccessNotification(outcome.Classification)
	f.notify(ctx, outcome.Notification)
	f.finish(true)

	log.Info().
		Str("user_id", f.owner).
		Bool("should_split", outcome.Classification.ShouldSplit).
		Int("subtask_count", outcome.Classification.SubtaskCount).
		Int("task_id", receipt.TaskID).
		Msg("Captura rápida enviada")
	return outcome, nil
}

// runTrip converts a panicking round trip into an error so the form never
// stays in submitting.
func (f *Form) runTrip(ctx context.Context, text string, c Classification) (receipt Receipt, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("round trip panic: %v", r)
		}
	}()
	return f.trip.Do(ctx, Request{UserID: f.owner, Text: text, Classification: c})
}

func (f *Form) notify(ctx context.Context, n Notification) {
	if f.notifier == nil {
		return
	}
	if err := f.notifier.Notify(ctx, f.owner, n); err != nil {
		logger.Get(ctx).Warn().Err(err).Str("user_id", f.owner).Msg("Falha ao entregar notificação")
	}
}

func (f *Form) finish(clear bool) {
	f.mu.Lock()
	if clear {
		f.input = ""
	}
	f.state = StateIdle
	f.mu.Unlock()
	f.stateChanged(StateIdle)
}

func (f *Form) stateChanged(s State) {
	if f.opts.OnStateChange != nil {
		f.opts.OnStateChange(s)
	}
}
