package service

import (
	"testing"
	"time"

	"github.com/cleberrangel/diane-api/internal/model"
	"github.com/xuri/excelize/v2"
)

func TestExcelTasks(t *testing.T) {
	due := "2025-03-01"
	minutes := 30
	created := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)
	tasks := []model.Task{
		{
			ID:          1,
			Description: "plan trip",
			DueDate:     &due,
			CreatedAt:   created,
			Subtasks: []model.SubTask{
				{ID: 10, Description: "book flight", Order: 1, EstimatedTimeMinutes: &minutes, CreatedAt: created},
				{ID: 11, Description: "book hotel", Order: 2, Completed: true, CreatedAt: created},
			},
		},
		{ID: 2, Description: "buy milk", Completed: true, CreatedAt: created},
	}

	buf, err := NewExcelGenerator().Tasks(tasks)
	if err != nil {
		t.Fatalf("Tasks: %v", err)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("open generated file: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(TasksSheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("expected header + 4 rows, got %d", len(rows))
	}
	if rows[0][1] != "Description" {
		t.Errorf("unexpected header: %v", rows[0])
	}
	if rows[1][1] != "plan trip" || rows[1][2] != due {
		t.Errorf("unexpected task row: %v", rows[1])
	}
	if rows[2][1] != "    1. book flight" || rows[2][3] != "30" {
		t.Errorf("unexpected subtask row: %v", rows[2])
	}
	if rows[3][1] != "    2. book hotel" || rows[3][4] != "yes" {
		t.Errorf("unexpected subtask row: %v", rows[3])
	}
	if rows[4][1] != "buy milk" || rows[4][4] != "yes" {
		t.Errorf("unexpected task row: %v", rows[4])
	}
}

func TestExcelShoppingItems(t *testing.T) {
	items := []model.ShoppingItem{
		{ID: 1, Description: "eggs", CreatedAt: time.Now()},
		{ID: 2, Description: "bread", Completed: true, CreatedAt: time.Now()},
	}

	buf, err := NewExcelGenerator().ShoppingItems(items)
	if err != nil {
		t.Fatalf("ShoppingItems: %v", err)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("open generated file: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(ShoppingSheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 || rows[1][1] != "eggs" || rows[2][2] != "yes" {
		t.Errorf("unexpected rows: %v", rows)
	}
}

func TestExcelEmpty(t *testing.T) {
	buf, err := NewExcelGenerator().Tasks(nil)
	if err != nil {
		t.Fatalf("Tasks(nil): %v", err)
	}
	if buf.Len() == 0 {
		t.Error("empty export should still be a valid workbook")
	}
}
