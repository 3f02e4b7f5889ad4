package capture

import (
	"context"
	"time"
)

// DefaultDelay is the duration of the simulated round trip.
const DefaultDelay = 1500 * time.Millisecond

// Request is what a RoundTrip receives for one submission.
type Request struct {
	UserID         string
	Text           string
	Classification Classification
}

// Receipt describes what a RoundTrip produced. Zero values mean nothing was stored.
type Receipt struct {
	TaskID   int `json:"task_id,omitempty"`
	Subtasks int `json:"subtasks,omitempty"`
}

// RoundTrip is the unit of work awaited between the submitting and idle states.
type RoundTrip interface {
	Do(ctx context.Context, req Request) (Receipt, error)
}

// RoundTripFunc adapts a function to the RoundTrip interface.
type RoundTripFunc func(ctx context.Context, req Request) (Receipt, error)

// Do calls f.
func (f RoundTripFunc) Do(ctx context.Context, req Request) (Receipt, error) {
	return f(ctx, req)
}

// Delay is a simulated round trip that suspends for a fixed duration and
// always succeeds. The suspension ignores ctx so a started submission always
// runs to completion.
type Delay struct {
	Duration time.Duration
}

// Do implements RoundTrip.
func (d Delay) Do(_ context.Context, _ Request) (Receipt, error) {
	if d.Duration > 0 {
		time.Sleep(d.Duration)
	}
	return Receipt{}, nil
}
