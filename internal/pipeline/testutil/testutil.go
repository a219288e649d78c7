// Package testutil provides fixture tables and scripted stages for
// pipeline tests.
package testutil

import (
	"fmt"
	"sync"

	"dqcli/internal/dataset"
	"dqcli/internal/pipeline"
)

// SampleTable builds a small mixed-quality table: duplicate rows, missing
// cells, and text-encoded numbers, enough to exercise every stage.
func SampleTable() *dataset.Table {
	return dataset.MustNew(
		dataset.Column{Name: "id", Cells: []dataset.Value{
			dataset.Text("1"), dataset.Text("1"), dataset.Text("2"), dataset.Text("3"),
		}},
		dataset.Column{Name: "name", Cells: []dataset.Value{
			dataset.Text("  Alice "), dataset.Text("  Alice "), dataset.Text("bob"), dataset.Null(),
		}},
		dataset.Column{Name: "age", Cells: []dataset.Value{
			dataset.Text("30"), dataset.Text("30"), dataset.Null(), dataset.Text("45"),
		}},
	)
}

// NumericTable builds a single-column numeric table from vals, useful for
// outlier and imputation tests.
func NumericTable(name string, vals ...float64) *dataset.Table {
	cells := make([]dataset.Value, len(vals))
	for i, v := range vals {
		cells[i] = dataset.Number(v)
	}
	return dataset.MustNew(dataset.Column{Name: name, Cells: cells})
}

// MockStage is a scripted stage whose behavior is supplied by ExecuteFunc.
type MockStage struct {
	NameValue   string
	ExecuteFunc func(tbl *dataset.Table, opts pipeline.Options) (*dataset.Table, pipeline.Outcome, error)

	mu    sync.Mutex
	calls int
	last  pipeline.Outcome
}

// Name implements the stage contract.
func (m *MockStage) Name() string { return m.NameValue }

// Execute runs the scripted behavior and records the outcome.
func (m *MockStage) Execute(tbl *dataset.Table, opts pipeline.Options) (*dataset.Table, pipeline.Outcome, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	out, outcome, err := m.ExecuteFunc(tbl, opts)

	m.mu.Lock()
	m.last = outcome
	m.mu.Unlock()
	return out, outcome, err
}

// LastOutcome implements the stage contract.
func (m *MockStage) LastOutcome() pipeline.Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

// Calls reports how many times the stage ran.
func (m *MockStage) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// PassingStage creates a stage that returns its input unchanged.
func PassingStage(name string) *MockStage {
	return &MockStage{
		NameValue: name,
		ExecuteFunc: func(tbl *dataset.Table, _ pipeline.Options) (*dataset.Table, pipeline.Outcome, error) {
			return tbl, pipeline.OutcomePass, nil
		},
	}
}

// FailingStage creates a stage that reports FAIL without an error.
func FailingStage(name string) *MockStage {
	return &MockStage{
		NameValue: name,
		ExecuteFunc: func(tbl *dataset.Table, _ pipeline.Options) (*dataset.Table, pipeline.Outcome, error) {
			return tbl, pipeline.OutcomeFail, nil
		},
	}
}

// ErroringStage creates a stage whose Execute returns an error.
func ErroringStage(name string, err error) *MockStage {
	if err == nil {
		err = fmt.Errorf("stage %s failed", name)
	}
	return &MockStage{
		NameValue: name,
		ExecuteFunc: func(tbl *dataset.Table, _ pipeline.Options) (*dataset.Table, pipeline.Outcome, error) {
			return nil, pipeline.OutcomeFail, err
		},
	}
}

// PanickingStage creates a stage that panics mid-execution.
func PanickingStage(name string) *MockStage {
	return &MockStage{
		NameValue: name,
		ExecuteFunc: func(_ *dataset.Table, _ pipeline.Options) (*dataset.Table, pipeline.Outcome, error) {
			panic("boom")
		},
	}
}

// RowDroppingStage creates a stage that silently removes the first row,
// used to verify the row-count invariant.
func RowDroppingStage(name string) *MockStage {
	return &MockStage{
		NameValue: name,
		ExecuteFunc: func(tbl *dataset.Table, _ pipeline.Options) (*dataset.Table, pipeline.Outcome, error) {
			keep := make([]bool, tbl.RowCount())
			for i := 1; i < len(keep); i++ {
				keep[i] = true
			}
			out, err := tbl.FilterRows(keep)
			return out, pipeline.OutcomePass, err
		},
	}
}

// ColumnAddingStage creates a stage that appends an extra column, used to
// verify the schema invariant.
func ColumnAddingStage(name string) *MockStage {
	return &MockStage{
		NameValue: name,
		ExecuteFunc: func(tbl *dataset.Table, _ pipeline.Options) (*dataset.Table, pipeline.Outcome, error) {
			cells := make([]dataset.Value, tbl.RowCount())
			for i := range cells {
				cells[i] = dataset.Number(float64(i))
			}
			cols := make([]dataset.Column, 0, tbl.ColumnCount()+1)
			for _, c := range tbl.Columns() {
				cols = append(cols, dataset.Column{Name: c.Name, Cells: append([]dataset.Value(nil), c.Cells...)})
			}
			cols = append(cols, dataset.Column{Name: "extra", Cells: cells})
			return dataset.MustNew(cols...), pipeline.OutcomePass, nil
		},
	}
}
