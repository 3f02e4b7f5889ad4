package service

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"github.com/cleberrangel/diane-api/internal/model"
	"github.com/xuri/excelize/v2"
)

// Nomes das planilhas exportadas
const (
	TasksSheet    = "Tasks"
	ShoppingSheet = "Shopping"
)

// XLSXContentType é o content type das exportações
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const subtaskIndent = "    "

var (
	taskHeaders     = []string{"ID", "Description", "Due date", "Estimated minutes", "Completed", "Created at"}
	shoppingHeaders = []string{"ID", "Description", "Completed", "Created at"}
)

// ExcelGenerator gera as exportações em Excel
type ExcelGenerator struct{}

// NewExcelGenerator cria um novo gerador de Excel
func NewExcelGenerator() *ExcelGenerator {
	return &ExcelGenerator{}
}

// Tasks gera a planilha de tarefas; cada subtarefa vem logo abaixo da tarefa, indentada
func (g *ExcelGenerator) Tasks(tasks []model.Task) (*bytes.Buffer, error) {
	var rows [][]interface{}
	for _, t := range tasks {
		rows = append(rows, []interface{}{
			t.ID,
			t.Description,
			optionalString(t.DueDate),
			optionalInt(t.EstimatedTimeMinutes),
			yesNo(t.Completed),
			t.CreatedAt.Format("2006-01-02 15:04"),
		})
		for _, st := range t.Subtasks {
			rows = append(rows, []interface{}{
				"",
				fmt.Sprintf("%s%d. %s", subtaskIndent, st.Order, st.Description),
				optionalString(st.DueDate),
				optionalInt(st.EstimatedTimeMinutes),
				yesNo(st.Completed),
				st.CreatedAt.Format("2006-01-02 15:04"),
			})
		}
	}
	return g.generate(TasksSheet, taskHeaders, rows)
}

// ShoppingItems gera a planilha da lista de compras
func (g *ExcelGenerator) ShoppingItems(items []model.ShoppingItem) (*bytes.Buffer, error) {
	rows := make([][]interface{}, 0, len(items))
	for _, item := range items {
		rows = append(rows, []interface{}{
			item.ID,
			item.Description,
			yesNo(item.Completed),
			item.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	return g.generate(ShoppingSheet, shoppingHeaders, rows)
}

func (g *ExcelGenerator) generate(sheet string, headers []string, rows [][]interface{}) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	// Renomeia a sheet padrão
	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, sheet); err != nil {
		return nil, fmt.Errorf("renomear sheet: %w", err)
	}

	if err := g.writeHeaders(f, sheet, headers); err != nil {
		return nil, fmt.Errorf("escrever headers: %w", err)
	}

	if err := g.writeRows(f, sheet, rows); err != nil {
		return nil, fmt.Errorf("escrever dados: %w", err)
	}

	if err := g.fitColumns(f, sheet, headers, rows); err != nil {
		return nil, fmt.Errorf("ajustar colunas: %w", err)
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("escrever buffer: %w", err)
	}

	return buf, nil
}

// writeHeaders escreve os cabeçalhos no Excel
func (g *ExcelGenerator) writeHeaders(f *excelize.File, sheet string, headers []string) error {
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:  true,
			Size:  11,
			Color: "FFFFFF",
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"4472C4"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: border("000000"),
	})
	if err != nil {
		return err
	}

	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return err
		}
	}

	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// writeRows escreve as linhas com cores alternadas
func (g *ExcelGenerator) writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	styleOdd, err := f.NewStyle(&excelize.Style{
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"F2F2F2"}, Pattern: 1},
		Border: border("D9D9D9"),
	})
	if err != nil {
		return err
	}
	styleEven, err := f.NewStyle(&excelize.Style{
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"FFFFFF"}, Pattern: 1},
		Border: border("D9D9D9"),
	})
	if err != nil {
		return err
	}

	for row, values := range rows {
		excelRow := row + 2 // Linha 1 é header

		style := styleEven
		if row%2 == 1 {
			style = styleOdd
		}

		first, _ := excelize.CoordinatesToCellName(1, excelRow)
		last, _ := excelize.CoordinatesToCellName(len(values), excelRow)
		if err := f.SetSheetRow(sheet, first, &values); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, first, last, style); err != nil {
			return err
		}
	}

	return nil
}

// fitColumns ajusta a largura pelo maior texto da coluna (mínimo 10, máximo 60)
func (g *ExcelGenerator) fitColumns(f *excelize.File, sheet string, headers []string, rows [][]interface{}) error {
	for col := range headers {
		width := utf8.RuneCountInString(headers[col])
		for _, row := range rows {
			if col < len(row) {
				if n := utf8.RuneCountInString(fmt.Sprint(row[col])); n > width {
					width = n
				}
			}
		}
		colName, _ := excelize.ColumnNumberToName(col + 1)
		if err := f.SetColWidth(sheet, colName, colName, float64(clampWidth(width+2))); err != nil {
			return err
		}
	}
	return nil
}

func clampWidth(w int) int {
	if w < 10 {
		return 10
	}
	if w > 60 {
		return 60
	}
	return w
}

func border(color string) []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: color, Style: 1},
		{Type: "top", Color: color, Style: 1},
		{Type: "bottom", Color: color, Style: 1},
		{Type: "right", Color: color, Style: 1},
	}
}

func optionalString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optionalInt(v *int) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
