package capture

import (
	"context"
	"fmt"
	"time"
)

// Kind distinguishes success notifications from error notifications.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Notification is a transient message shown to the user after a submission.
type Notification struct {
	Kind        Kind          `json:"kind"`
	Message     string        `json:"message"`
	Description string        `json:"description"`
	Duration    time.Duration `json:"-"`
	DurationMs  int64         `json:"duration_ms"`
}

const (
	splitDescription = "We broke down your big task to make it more manageable. Check your Tasks view to review and edit."
	plainMessage     = "Task created"
	plainDescription = "Your task has been added to your list."
	failureMessage   = "Couldn't create task"
	failureDesc      = "Something went wrong while saving your task. Your text is still here so you can try again."

	SplitDuration   = 5000 * time.Millisecond
	PlainDuration   = 3000 * time.Millisecond
	FailureDuration = 5000 * time.Millisecond
)

func newNotification(kind Kind, message, description string, d time.Duration) Notification {
	return Notification{
		Kind:        kind,
		Message:     message,
		Description: description,
		Duration:    d,
		DurationMs:  d.Milliseconds(),
	}
}

// SuccessNotification builds the notification for a completed submission.
func SuccessNotification(c Classification) Notification {
	if c.ShouldSplit {
		return newNotification(KindSuccess,
			fmt.Sprintf("Task created with %d subtasks", c.SubtaskCount),
			splitDescription, SplitDuration)
	}
	return newNotification(KindSuccess, plainMessage, plainDescription, PlainDuration)
}

// FailureNotification builds the notification for a failed round trip.
func FailureNotification() Notification {
	return newNotification(KindError, failureMessage, failureDesc, FailureDuration)
}

// Notifier receives notifications produced by a Form.
type Notifier interface {
	Notify(ctx context.Context, userID string, n Notification) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, userID string, n Notification) error

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, userID string, n Notification) error {
	return f(ctx, userID, n)
}

// Notifiers fans a notification out to several sinks. Every sink is called;
// the first error is returned.
type Notifiers []Notifier

// Notify implements Notifier.
func (ns Notifiers) Notify(ctx context.Context, userID string, n Notification) error {
	var first error
	for _, sink := range ns {
		if sink == nil {
			continue
		}
		if err := sink.Notify(ctx, userID, n); err != nil && first == nil {
			first = err
		}
	}
	return first
}
