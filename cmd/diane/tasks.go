package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/cleberrangel/diane-api/internal/model"
	"github.com/spf13/cobra"
)

func tasksCmd(s *settings) *cobra.Command {
	var (
		completed string
		sortBy    string
	)

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List your tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			filter := model.TaskFilter{SortBy: model.TaskSort(sortBy)}
			if completed != "" {
				v, err := strconv.ParseBool(completed)
				if err != nil {
					return fmt.Errorf("--completed: %w", err)
				}
				filter.Completed = &v
			}

			c, err := s.connect(ctx)
			if err != nil {
				return err
			}
			tasks, err := c.ListTasks(ctx, filter)
			if err != nil {
				return err
			}

			printTasks(cmd.OutOrStdout(), tasks)
			return nil
		},
	}

	cmd.Flags().StringVar(&completed, "completed", "", "Filter by completion (true or false)")
	cmd.Flags().StringVar(&sortBy, "sort", string(model.SortByCreatedAt), "Sort by created_at or due_date")

	return cmd
}

func printTasks(out io.Writer, tasks []model.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(out, "No tasks")
		return
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDONE\tDUE\tDESCRIPTION")
	for _, t := range tasks {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", t.ID, check(t.Completed), valueOr(t.DueDate, "-"), t.Description)
		for _, st := range t.Subtasks {
			fmt.Fprintf(w, "\t%s\t%s\t  %d. %s\n", check(st.Completed), valueOr(st.DueDate, ""), st.Order, st.Description)
		}
	}
	w.Flush()
}

func check(done bool) string {
	if done {
		return "x"
	}
	return " "
}

func valueOr(v *string, fallback string) string {
	if v == nil || *v == "" {
		return fallback
	}
	return *v
}
