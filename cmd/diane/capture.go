package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cleberrangel/diane-api/internal/capture"
	"github.com/cleberrangel/diane-api/internal/model"
	"github.com/spf13/cobra"
)

var errCaptureFailed = errors.New("capture failed")

func captureCmd(s *settings) *cobra.Command {
	var (
		mock  bool
		delay time.Duration
	)

	cmd := &cobra.Command{
		Use:   "capture [text...]",
		Short: "Capture a task; long or compound text is reported as split",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			out := cmd.OutOrStdout()
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			var trip capture.RoundTrip = capture.Delay{Duration: delay}
			owner := "local"
			if !mock {
				c, err := s.connect(ctx)
				if err != nil {
					return err
				}
				owner = s.email
				trip = capture.RoundTripFunc(func(ctx context.Context, req capture.Request) (capture.Receipt, error) {
					task, err := c.CreateTask(ctx, model.TaskCreateRequest{
						Description: strings.TrimSpace(req.Text),
						RawInput:    req.Text,
					})
					if err != nil {
						return capture.Receipt{}, err
					}
					return capture.Receipt{TaskID: task.ID, Subtasks: len(task.Subtasks)}, nil
				})
			}

			form := capture.NewForm(owner, trip, capture.NotifierFunc(printNotification(out)), capture.Options{})
			form.SetInput(text)

			outcome, err := form.Submit(ctx)
			if err != nil {
				return fmt.Errorf("%w: %s", errCaptureFailed, err.Error())
			}
			if !outcome.Accepted {
				return errors.New("nothing to capture: text is blank")
			}
			if outcome.Receipt.TaskID != 0 {
				fmt.Fprintf(out, "task #%d\n", outcome.Receipt.TaskID)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&mock, "mock", false, "Simulate the round trip without calling the API")
	cmd.Flags().DurationVar(&delay, "delay", capture.DefaultDelay, "Simulated round-trip duration with --mock")

	return cmd
}

func printNotification(out io.Writer) func(context.Context, string, capture.Notification) error {
	return func(_ context.Context, _ string, n capture.Notification) error {
		mark := "✓"
		if n.Kind == capture.KindError {
			mark = "✗"
		}
		fmt.Fprintf(out, "%s %s\n  %s\n", mark, n.Message, n.Description)
		return nil
	}
}
