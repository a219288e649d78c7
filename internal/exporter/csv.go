// Package exporter writes cleaned tables and quality reports to disk in the
// formats downstream consumers expect: CSV for the data itself, JSON and
// Markdown for reports, and xlsx workbooks for spreadsheet users.
package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"dqcli/internal/dataset"
)

// CSVOptions configures table export behavior.
type CSVOptions struct {
	BOMPrefix bool // prepend a UTF-8 BOM so Excel detects the encoding
}

// WriteCSV streams a table to w as a header row followed by one record per
// data row. Null cells become empty fields.
func WriteCSV(w io.Writer, tbl *dataset.Table, opts CSVOptions) error {
	if opts.BOMPrefix {
		if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(tbl.ColumnNames()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	record := make([]string, tbl.ColumnCount())
	for i := 0; i < tbl.RowCount(); i++ {
		for j, v := range tbl.Row(i) {
			record[j] = v.String()
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteCSVFile writes a table to path, creating parent directories as
// needed.
func WriteCSVFile(path string, tbl *dataset.Table, opts CSVOptions) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if err := WriteCSV(file, tbl, opts); err != nil {
		return err
	}

	slog.Info("csv_exported",
		slog.String("path", path),
		slog.Int("rows", tbl.RowCount()),
		slog.Int("columns", tbl.ColumnCount()))
	return nil
}
