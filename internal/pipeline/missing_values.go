package pipeline

import (
	"fmt"

	"dqcli/internal/audit"
	"dqcli/internal/dataset"
)

// missingFallback fills a column that has no usable mode.
const missingFallback = "Unknown"

// MissingValuesStage drops rows whose missing-cell percentage exceeds the
// configured threshold, then imputes the remaining missing cells per column
// by type: numeric columns take the median, datetime columns forward-fill,
// and everything else takes the mode (falling back to "Unknown" when no
// mode exists).
//
// Row drops require destructive_row_deletion, the same authorization the
// duplicates stage removal uses; without it the drop is recorded as bypassed
// and the rows are kept. Imputation never changes the table shape.
type MissingValuesStage struct {
	BaseStage
}

// NewMissingValuesStage creates the missing_values stage.
func NewMissingValuesStage(log *audit.Log) *MissingValuesStage {
	return &MissingValuesStage{BaseStage: NewBaseStage(StageIDMissingValues, log)}
}

// Execute drops over-threshold rows when authorized, then imputes.
func (s *MissingValuesStage) Execute(tbl *dataset.Table, opts Options) (*dataset.Table, Outcome, error) {
	outcome := OutcomePass
	threshold := opts.MaxMissingRowPct()

	rowPct := tbl.MissingRowPct()
	keep := make([]bool, len(rowPct))
	dropCount := 0
	for i, pct := range rowPct {
		keep[i] = pct <= threshold
		if !keep[i] {
			dropCount++
		}
	}

	if dropCount > 0 {
		outcome = OutcomeWarn
		if opts.DestructiveRowDeletion {
			filtered, err := tbl.FilterRows(keep)
			if err != nil {
				return nil, OutcomeFail, err
			}
			tbl = filtered
			s.Audit().LogMutation(s.Name(), "row_deletion", map[string]any{
				"count":  dropCount,
				"reason": fmt.Sprintf("missingness > %.1f%%", threshold),
			})
		} else {
			s.Audit().LogMutation(s.Name(), "row_preservation_bypass", map[string]any{
				"count":  dropCount,
				"reason": fmt.Sprintf("threshold %.1f%% exceeded but deletion disabled", threshold),
			})
		}
	}

	for _, col := range tbl.Columns() {
		missing := col.MissingCount()
		if missing == 0 {
			continue
		}
		outcome = OutcomeWarn

		var strategy string
		switch col.Kind() {
		case dataset.KindNumber:
			// A column classified numeric has at least one numeric cell, so
			// the median always exists.
			strategy = "median"
			median, _ := col.Median()
			fillAll(col, dataset.Number(median))
		case dataset.KindTime:
			strategy = "ffill"
			forwardFill(col)
		default:
			strategy = "mode"
			mode, ok := col.Mode()
			if !ok {
				strategy = "fallback"
				mode = dataset.Text(missingFallback)
			}
			fillAll(col, mode)
		}

		s.Audit().LogMutation(s.Name(), "impute", map[string]any{
			"column":   col.Name,
			"strategy": strategy,
			"count":    missing,
		})
	}

	return tbl, outcome, nil
}

// fillAll replaces every null cell with the given value.
func fillAll(col *dataset.Column, v dataset.Value) {
	for i, cell := range col.Cells {
		if cell.IsNull() {
			col.Cells[i] = v
		}
	}
}

// forwardFill replaces each null cell with the nearest preceding non-null
// value. Leading nulls stay null.
func forwardFill(col *dataset.Column) {
	last := dataset.Null()
	for i, cell := range col.Cells {
		if cell.IsNull() {
			if !last.IsNull() {
				col.Cells[i] = last
			}
			continue
		}
		last = cell
	}
}
