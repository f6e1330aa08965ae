package tabular

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	xlsxSheet       = "Export"
	headerFillColor = "2C5F2D"
	maxColumnWidth  = 50
)

// XLSX writes the table as a styled Excel workbook: a merged title row, a
// generated-at line, a filled header row, then the body rows with auto-sized
// columns.
func (t *Table) XLSX(w io.Writer, title string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	idx, err := f.NewSheet(xlsxSheet)
	if err != nil {
		return fmt.Errorf("create export sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	cols := len(t.Header)
	for _, row := range t.Rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	if cols == 0 {
		cols = 1
	}

	if err := t.writeTitleRows(f, title, cols); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF", Size: 12},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerFillColor}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("build header style: %w", err)
	}

	rowNum := 4
	if t.Header != nil {
		if err := writeRow(f, rowNum, t.Header); err != nil {
			return err
		}
		last, _ := excelize.CoordinatesToCellName(cols, rowNum)
		first, _ := excelize.CoordinatesToCellName(1, rowNum)
		if err := f.SetCellStyle(xlsxSheet, first, last, headerStyle); err != nil {
			return fmt.Errorf("style header row: %w", err)
		}
		rowNum++
	}
	for _, row := range t.Rows {
		if err := writeRow(f, rowNum, row); err != nil {
			return err
		}
		rowNum++
	}

	if err := t.autoSizeColumns(f, cols); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func (t *Table) writeTitleRows(f *excelize.File, title string, cols int) error {
	last, _ := excelize.CoordinatesToCellName(cols, 1)
	if err := f.MergeCell(xlsxSheet, "A1", last); err != nil {
		return fmt.Errorf("merge title cells: %w", err)
	}
	if err := f.SetCellValue(xlsxSheet, "A1", title); err != nil {
		return fmt.Errorf("set title: %w", err)
	}
	titleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 18, Color: headerFillColor},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("build title style: %w", err)
	}
	if err := f.SetCellStyle(xlsxSheet, "A1", "A1", titleStyle); err != nil {
		return fmt.Errorf("style title: %w", err)
	}

	generated := fmt.Sprintf("Generated: %s", time.Now().Format("02 January, 2006 at 3:04 PM"))
	if err := f.SetCellValue(xlsxSheet, "A2", generated); err != nil {
		return fmt.Errorf("set generated line: %w", err)
	}
	return nil
}

func (t *Table) autoSizeColumns(f *excelize.File, cols int) error {
	for col := 1; col <= cols; col++ {
		maxLen := 0
		measure := func(row []string) {
			if col-1 < len(row) && len(row[col-1]) > maxLen {
				maxLen = len(row[col-1])
			}
		}
		measure(t.Header)
		for _, row := range t.Rows {
			measure(row)
		}
		width := float64(maxLen + 2)
		if width > maxColumnWidth {
			width = maxColumnWidth
		}
		name, err := excelize.ColumnNumberToName(col)
		if err != nil {
			return fmt.Errorf("resolve column name: %w", err)
		}
		if err := f.SetColWidth(xlsxSheet, name, name, width); err != nil {
			return fmt.Errorf("size column %s: %w", name, err)
		}
	}
	return nil
}

func writeRow(f *excelize.File, rowNum int, cells []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("resolve row start: %w", err)
	}
	values := make([]any, len(cells))
	for i, c := range cells {
		values[i] = c
	}
	if err := f.SetSheetRow(xlsxSheet, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", rowNum, err)
	}
	return nil
}
