package pipeline

import (
	"fmt"

	"dqcli/internal/audit"
	"dqcli/internal/dataset"
)

// SchemaCheckStage verifies the presence of configured required columns,
// flags unexpected columns, and flags fully-null columns. It never mutates
// data.
type SchemaCheckStage struct {
	BaseStage
}

// NewSchemaCheckStage creates the schema_check stage.
func NewSchemaCheckStage(log *audit.Log) *SchemaCheckStage {
	return &SchemaCheckStage{BaseStage: NewBaseStage(StageIDSchemaCheck, log)}
}

// Execute checks the table against the configured schema expectations.
// A missing required column is a critical finding; it fails the stage only
// under strict mode.
func (s *SchemaCheckStage) Execute(tbl *dataset.Table, opts Options) (*dataset.Table, Outcome, error) {
	outcome := OutcomePass

	required := opts.Schema.RequiredColumns
	if len(required) > 0 {
		var missing []string
		for _, name := range required {
			if !tbl.HasColumn(name) {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			s.Audit().LogError(s.Name(), fmt.Sprintf("missing required columns: %v", missing), true)
			if opts.Schema.Strict {
				return tbl, OutcomeFail, nil
			}
			outcome = OutcomeWarn
		}

		expected := make(map[string]bool, len(required))
		for _, name := range required {
			expected[name] = true
		}
		var unexpected []string
		for _, name := range tbl.ColumnNames() {
			if !expected[name] {
				unexpected = append(unexpected, name)
			}
		}
		if len(unexpected) > 0 {
			outcome = Worst(outcome, OutcomeWarn)
			s.Audit().LogMutation(s.Name(), "unexpected_columns", map[string]any{
				"columns": unexpected,
			})
		}
	}

	for _, col := range tbl.Columns() {
		if col.AllNull() {
			outcome = Worst(outcome, OutcomeWarn)
			s.Audit().LogError(s.Name(), fmt.Sprintf("column %q is entirely null", col.Name), false)
		}
	}

	return tbl, outcome, nil
}
