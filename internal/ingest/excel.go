package ingest

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"dqcli/internal/dataset"
)

// ReadExcelFile reads one sheet of an xlsx workbook into a table. An empty
// sheet name selects the workbook's first sheet. Cell values arrive as the
// formatted strings excelize reports; coercion to typed values is the
// type-detection stage's job.
func ReadExcelFile(path, sheet string) (*dataset.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheet)
	}

	names := dedupeHeader(rows[0])
	cells := make([][]dataset.Value, len(names))
	for _, row := range rows[1:] {
		for i := range names {
			var v dataset.Value
			if i < len(row) && strings.TrimSpace(row[i]) != "" {
				v = dataset.Text(row[i])
			} else {
				v = dataset.Null()
			}
			cells[i] = append(cells[i], v)
		}
	}

	columns := make([]dataset.Column, len(names))
	for i, name := range names {
		columns[i] = dataset.Column{Name: name, Cells: cells[i]}
	}
	return dataset.New(columns...)
}
