package pipeline

import (
	"dqcli/internal/audit"
	"dqcli/internal/dataset"
)

// DuplicatesStage detects duplicate rows, optionally keyed on a configured
// subset of columns, keeping the first occurrence. Rows are removed only
// when removal is explicitly authorized (remove_duplicates or
// destructive_row_deletion); otherwise duplicates are only flagged. The
// outcome is warn whenever duplicates exist, whether or not they were
// removed.
type DuplicatesStage struct {
	BaseStage
}

// NewDuplicatesStage creates the duplicates stage.
func NewDuplicatesStage(log *audit.Log) *DuplicatesStage {
	return &DuplicatesStage{BaseStage: NewBaseStage(StageIDDuplicates, log)}
}

// Execute scans for duplicate rows and removes them when authorized.
func (s *DuplicatesStage) Execute(tbl *dataset.Table, opts Options) (*dataset.Table, Outcome, error) {
	keys := opts.Cleaning.DuplicateKeys
	keep := make([]bool, tbl.RowCount())
	seen := make(map[string]struct{}, tbl.RowCount())
	dupCount := 0
	for i := 0; i < tbl.RowCount(); i++ {
		k := tbl.RowKey(i, keys)
		if _, dup := seen[k]; dup {
			dupCount++
		} else {
			seen[k] = struct{}{}
			keep[i] = true
		}
	}

	if dupCount == 0 {
		return tbl, OutcomePass, nil
	}

	subset := "full_row"
	if len(keys) > 0 {
		subset = "subset"
	}

	if opts.RemoveDuplicates || opts.DestructiveRowDeletion {
		out, err := tbl.FilterRows(keep)
		if err != nil {
			return nil, OutcomeFail, err
		}
		s.Audit().LogMutation(s.Name(), "drop_duplicates", map[string]any{
			"count":       dupCount,
			"subset_used": subset,
			"keys":        keys,
		})
		return out, OutcomeWarn, nil
	}

	s.Audit().LogMutation(s.Name(), "duplicates_flagged", map[string]any{
		"count":       dupCount,
		"subset_used": subset,
		"keys":        keys,
		"reason":      "removal not authorized",
	})
	return tbl, OutcomeWarn, nil
}
