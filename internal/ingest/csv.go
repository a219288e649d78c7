// Package ingest materializes raw files into the dataset model. The
// cleaning core never parses files itself; these loaders are the
// collaborators that hand it an already-materialized table. Every cell is
// loaded as text (empty cells as null) and left for the type-detection
// stage to coerce.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"dqcli/internal/dataset"
)

// ReadCSV reads an entire CSV stream into a table. The first record is the
// header row; duplicate or empty header names are de-duplicated with
// positional suffixes so the table's unique-name invariant holds.
func ReadCSV(r io.Reader) (*dataset.Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	// Ragged rows are a data-quality finding, not a parse error; short rows
	// pad with nulls and long rows are truncated to the header width.
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("csv input is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	names := dedupeHeader(header)
	cells := make([][]dataset.Value, len(names))

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv record: %w", err)
		}
		for i := range names {
			var v dataset.Value
			if i < len(record) && strings.TrimSpace(record[i]) != "" {
				v = dataset.Text(record[i])
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

// ReadCSVFile opens and reads a CSV file, tolerating a UTF-8 BOM.
func ReadCSVFile(path string) (*dataset.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv file: %w", err)
	}
	text := strings.TrimPrefix(string(data), "\xef\xbb\xbf")
	return ReadCSV(strings.NewReader(text))
}

// dedupeHeader produces unique, non-empty column names: blanks become
// positional names, repeats get an increasing suffix.
func dedupeHeader(header []string) []string {
	names := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, raw := range header {
		name := strings.TrimSpace(raw)
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = fmt.Sprintf("%s_%d", name, n)
		}
		if _, dup := seen[name]; !dup {
			seen[name] = 1
		}
		names[i] = name
	}
	return names
}
