package capture

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cleberrangel/diane-api/internal/logger"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/rs/zerolog"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []Notification
	err  error
}

func (r *recordingNotifier) Notify(_ context.Context, _ string, n Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	return r.err
}

func (r *recordingNotifier) all() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.sent...)
}

func TestFormSubmitPlainEntry(t *testing.T) {
	notifier := &recordingNotifier{}
	form := NewForm("1", Delay{}, notifier, Options{})
	form.SetInput("buy milk")

	outcome, err := form.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if !outcome.Accepted {
		t.Fatal("expected submission to be accepted")
	}
	if outcome.Classification.ShouldSplit || outcome.Classification.SubtaskCount != 0 {
		t.Errorf("plain entry should carry no subtask count: %+v", outcome.Classification)
	}

	sent := notifier.all()
	if len(sent) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(sent))
	}
	n := sent[0]
	if n.Kind != KindSuccess || n.Message != "Task created" {
		t.Errorf("unexpected notification: %+v", n)
	}
	if n.Description != "Your task has been added to your list." {
		t.Errorf("unexpected description: %q", n.Description)
	}
	if n.Duration != 3000*time.Millisecond || n.DurationMs != 3000 {
		t.Errorf("unexpected duration: %v", n.Duration)
	}
	if form.Input() != "" {
		t.Errorf("expected input to be cleared, got %q", form.Input())
	}
	if form.State() != StateIdle {
		t.Errorf("expected idle state, got %s", form.State())
	}
}

func TestFormSubmitSplitEntry(t *testing.T) {
	notifier := &recordingNotifier{}
	form := NewForm("1", Delay{}, notifier, Options{})
	form.SetInput("buy milk, walk dog, call mom")

	outcome, err := form.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if !outcome.Classification.ShouldSplit || outcome.Classification.SubtaskCount != 3 {
		t.Errorf("unexpected classification: %+v", outcome.Classification)
	}

	sent := notifier.all()
	if len(sent) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(sent))
	}
	n := sent[0]
	if n.Message != "Task created with 3 subtasks" {
		t.Errorf("unexpected message: %q", n.Message)
	}
	if n.Description != "We broke down your big task to make it more manageable. Check your Tasks view to review and edit." {
		t.Errorf("unexpected description: %q", n.Description)
	}
	if n.Duration != 5000*time.Millisecond {
		t.Errorf("unexpected duration: %v", n.Duration)
	}
}

func TestFormSubmitBlankInputIsNoop(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\t  "} {
		notifier := &recordingNotifier{}
		var transitions []State
		form := NewForm("1", RoundTripFunc(func(context.Context, Request) (Receipt, error) {
			t.Error("round trip must not run for blank input")
			return Receipt{}, nil
		}), notifier, Options{OnStateChange: func(s State) { transitions = append(transitions, s) }})
		form.SetInput(input)

		outcome, err := form.Submit(context.Background())
		if err != nil {
			t.Fatalf("Submit(%q) returned error: %v", input, err)
		}
		if outcome.Accepted {
			t.Errorf("Submit(%q) should not be accepted", input)
		}
		if len(notifier.all()) != 0 {
			t.Errorf("Submit(%q) emitted notifications", input)
		}
		if len(transitions) != 0 {
			t.Errorf("Submit(%q) changed state: %v", input, transitions)
		}
		if form.Input() != input {
			t.Errorf("Submit(%q) modified the input", input)
		}
	}
}

func TestFormRejectsReentrantSubmit(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	trip := RoundTripFunc(func(context.Context, Request) (Receipt, error) {
		close(entered)
		<-release
		return Receipt{TaskID: 7}, nil
	})

	notifier := &recordingNotifier{}
	form := NewForm("1", trip, notifier, Options{})
	form.SetInput("call the bank")

	done := make(chan error, 1)
	go func() {
		_, err := form.Submit(context.Background())
		done <- err
	}()

	<-entered
	if form.State() != StateSubmitting {
		t.Fatalf("expected submitting state, got %s", form.State())
	}
	if form.CanSubmit() {
		t.Error("CanSubmit should be false while submitting")
	}
	if _, err := form.Submit(context.Background()); !errors.Is(err, ErrSubmitting) {
		t.Fatalf("expected ErrSubmitting, got %v", err)
	}
	if form.SetInputIfIdle("something else") {
		t.Error("input must not change while submitting")
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first submit failed: %v", err)
	}
	if got := len(notifier.all()); got != 1 {
		t.Errorf("expected exactly 1 notification, got %d", got)
	}
	if form.State() != StateIdle {
		t.Errorf("expected idle state, got %s", form.State())
	}
	if !form.SetInputIfIdle("next") || form.Input() != "next" {
		t.Error("input should be editable again once idle")
	}
}

func TestFormFailureKeepsInput(t *testing.T) {
	boom := errors.New("backend unavailable")
	notifier := &recordingNotifier{}
	form := NewForm("1", RoundTripFunc(func(context.Context, Request) (Receipt, error) {
		return Receipt{}, boom
	}), notifier, Options{})
	form.SetInput("renew passport")

	outcome, err := form.Submit(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped round trip error, got %v", err)
	}
	if outcome.Notification.Kind != KindError {
		t.Errorf("expected error notification, got %+v", outcome.Notification)
	}

	sent := notifier.all()
	if len(sent) != 1 || sent[0].Kind != KindError {
		t.Fatalf("expected one error notification, got %+v", sent)
	}
	if form.Input() != "renew passport" {
		t.Errorf("input should be kept after failure, got %q", form.Input())
	}
	if form.State() != StateIdle {
		t.Errorf("expected idle state, got %s", form.State())
	}
}

func TestFormLogsSubmissionOutcome(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf, zerolog.InfoLevel)
	t.Cleanup(func() { logger.SetOutput(io.Discard, zerolog.Disabled) })

	form := NewForm("9", Delay{}, nil, Options{})
	form.SetInput("buy milk")
	if _, err := form.Submit(context.Background()); err != nil {
		t.Fatal(err)
	}

	failing := NewForm("9", RoundTripFunc(func(context.Context, Request) (Receipt, error) {
		return Receipt{}, errors.New("offline")
	}), nil, Options{})
	failing.SetInput("pay rent")
	_, _ = failing.Submit(context.Background())

	logs := buf.String()
	for _, want := range []string{`"message":"Captura rápida enviada"`, `"message":"Falha na captura rápida"`, `"user_id":"9"`} {
		if !strings.Contains(logs, want) {
			t.Errorf("log output missing %s:\n%s", want, logs)
		}
	}
}

func TestFormRecoversFromPanickingRoundTrip(t *testing.T) {
	form := NewForm("1", RoundTripFunc(func(context.Context, Request) (Receipt, error) {
		panic("bad adapter")
	}), nil, Options{})
	form.SetInput("something")

	if _, err := form.Submit(context.Background()); err == nil {
		t.Fatal("expected error from panicking round trip")
	}
	if form.State() != StateIdle {
		t.Errorf("expected idle state, got %s", form.State())
	}
}

func TestFormStateTransitions(t *testing.T) {
	var mu sync.Mutex
	var transitions []State
	form := NewForm("1", Delay{}, nil, Options{OnStateChange: func(s State) {
		mu.Lock()
		transitions = append(transitions, s)
		mu.Unlock()
	}})
	form.SetInput("water plants")

	if _, err := form.Submit(context.Background()); err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(transitions) != 2 || transitions[0] != StateSubmitting || transitions[1] != StateIdle {
		t.Errorf("unexpected transitions: %v", transitions)
	}
}

func TestFormPassesRequestToRoundTrip(t *testing.T) {
	var got Request
	form := NewForm("42", RoundTripFunc(func(_ context.Context, req Request) (Receipt, error) {
		got = req
		return Receipt{TaskID: 9, Subtasks: 3}, nil
	}), nil, Options{})
	form.SetInput("  pack bags and book taxi  ")

	outcome, err := form.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if got.UserID != "42" || got.Text != "  pack bags and book taxi  " {
		t.Errorf("unexpected request: %+v", got)
	}
	if !got.Classification.ShouldSplit {
		t.Error("expected split classification in request")
	}
	if outcome.Receipt.TaskID != 9 {
		t.Errorf("expected receipt to be returned, got %+v", outcome.Receipt)
	}
}

func TestFormNotifierErrorDoesNotFailSubmission(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("socket closed")}
	form := NewForm("1", Delay{}, notifier, Options{})
	form.SetInput("buy bread")

	if _, err := form.Submit(context.Background()); err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if form.Input() != "" || form.State() != StateIdle {
		t.Error("form should complete normally when a sink fails")
	}
}

func TestDelayIgnoresCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	if _, err := (Delay{Duration: 30 * time.Millisecond}).Do(ctx, Request{}); err != nil {
		t.Fatalf("Delay returned error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Errorf("Delay returned after %v, want at least 30ms", elapsed)
	}
}

func TestNotifiersFanOut(t *testing.T) {
	first := &recordingNotifier{err: errors.New("first failed")}
	second := &recordingNotifier{}
	sinks := Notifiers{first, nil, second}

	err := sinks.Notify(context.Background(), "1", SuccessNotification(Classification{}))
	if err == nil || !strings.Contains(err.Error(), "first failed") {
		t.Errorf("expected first error, got %v", err)
	}
	if len(first.all()) != 1 || len(second.all()) != 1 {
		t.Error("every sink should receive the notification")
	}
}

func TestFormSubmitProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("accepted submissions end idle with one matching notification", prop.ForAll(
		func(text string) bool {
			notifier := &recordingNotifier{}
			form := NewForm("1", Delay{}, notifier, Options{})
			form.SetInput(text)

			outcome, err := form.Submit(context.Background())
			if err != nil || !outcome.Accepted {
				return false
			}
			sent := notifier.all()
			if len(sent) != 1 || sent[0] != SuccessNotification(Classify(text)) {
				return false
			}
			return form.State() == StateIdle && form.Input() == ""
		},
		gen.RegexMatch(`^[a-z][a-z ,]{0,90}$`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
