package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"dqcli/internal/dataset"
	"dqcli/internal/report"
)

const (
	dataSheet    = "Data"
	qualitySheet = "Quality"
)

// WriteWorkbook writes the cleaned table and the quality report into a
// single xlsx workbook: the data on one sheet, the score summary on
// another. Typed cells are written as native Excel values so formulas work
// on the result.
func WriteWorkbook(path string, tbl *dataset.Table, rep *report.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeDataSheet(f, tbl); err != nil {
		return err
	}
	if rep != nil {
		if err := writeQualitySheet(f, rep); err != nil {
			return err
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	slog.Info("workbook_exported",
		slog.String("path", path),
		slog.Int("rows", tbl.RowCount()))
	return nil
}

func writeDataSheet(f *excelize.File, tbl *dataset.Table) error {
	if _, err := f.NewSheet(dataSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	header := make([]interface{}, tbl.ColumnCount())
	for i, name := range tbl.ColumnNames() {
		header[i] = name
	}
	if err := f.SetSheetRow(dataSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	row := make([]interface{}, tbl.ColumnCount())
	for i := 0; i < tbl.RowCount(); i++ {
		for j, v := range tbl.Row(i) {
			row[j] = cellValue(v)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to compute cell name: %w", err)
		}
		if err := f.SetSheetRow(dataSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	return nil
}

func cellValue(v dataset.Value) interface{} {
	switch v.Kind() {
	case dataset.KindNull:
		return nil
	case dataset.KindNumber:
		return v.Number()
	case dataset.KindBool:
		return v.Bool()
	case dataset.KindTime:
		return v.Time()
	default:
		return v.String()
	}
}

func writeQualitySheet(f *excelize.File, rep *report.Report) error {
	if _, err := f.NewSheet(qualitySheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	rows := [][]interface{}{
		{"Quality Score", rep.QualityScore},
		{"Generated", rep.Timestamp.Format("2006-01-02 15:04:05")},
		{},
		{"Metric", "Before", "After"},
		{"Rows", rep.Statistics.Initial.Rows, rep.Statistics.Final.Rows},
		{"Columns", rep.Statistics.Initial.Cols, rep.Statistics.Final.Cols},
		{"Missing %", rep.Statistics.Initial.MissingPct, rep.Statistics.Final.MissingPct},
		{"Duplicate %", rep.Statistics.Initial.DuplicatePct, rep.Statistics.Final.DuplicatePct},
		{},
		{"Stages Executed", rep.Summary.StagesExecuted},
		{"Total Mutations", rep.Summary.TotalMutations},
		{"Rows Removed", rep.Summary.RowsRemoved},
		{"Critical Errors", rep.Summary.CriticalErrors},
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("failed to compute cell name: %w", err)
		}
		if err := f.SetSheetRow(qualitySheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("failed to write quality row %d: %w", i, err)
		}
	}
	return nil
}
