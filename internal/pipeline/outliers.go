package pipeline

import (
	"dqcli/internal/audit"
	"dqcli/internal/dataset"
)

// OutliersStage clips out-of-bound values in numeric columns to the nearest
// bound. Bounds come from the IQR rule (Q1 - 1.5*IQR, Q3 + 1.5*IQR) or the
// z-score rule (mean +/- 3*std) per configuration. Rows are never dropped;
// the outcome is warn whenever any value required clipping.
type OutliersStage struct {
	BaseStage
}

// NewOutliersStage creates the outliers stage.
func NewOutliersStage(log *audit.Log) *OutliersStage {
	return &OutliersStage{BaseStage: NewBaseStage(StageIDOutliers, log)}
}

// Execute computes per-column bounds and clips.
func (s *OutliersStage) Execute(tbl *dataset.Table, opts Options) (*dataset.Table, Outcome, error) {
	method := opts.OutlierMethod()
	outcome := OutcomePass

	for _, col := range tbl.Columns() {
		if col.Kind() != dataset.KindNumber {
			continue
		}

		lower, upper, ok := outlierBounds(col, method)
		if !ok {
			continue
		}

		clipped := 0
		for i, v := range col.Cells {
			if v.Kind() != dataset.KindNumber {
				continue
			}
			switch {
			case v.Number() < lower:
				col.Cells[i] = dataset.Number(lower)
				clipped++
			case v.Number() > upper:
				col.Cells[i] = dataset.Number(upper)
				clipped++
			}
		}

		if clipped > 0 {
			outcome = OutcomeWarn
			s.Audit().LogMutation(s.Name(), "clip_outliers", map[string]any{
				"column":      col.Name,
				"count":       clipped,
				"method":      method,
				"lower_bound": lower,
				"upper_bound": upper,
			})
		}
	}

	return tbl, outcome, nil
}

// outlierBounds computes the clipping bounds for a numeric column. It
// reports false when the column has no usable spread (no numeric cells, or
// zero standard deviation under the z-score rule).
func outlierBounds(col *dataset.Column, method string) (lower, upper float64, ok bool) {
	if method == OutlierMethodZScore {
		summary := col.Summary()
		if summary.Count == 0 || summary.Std == 0 {
			return 0, 0, false
		}
		return summary.Mean - 3*summary.Std, summary.Mean + 3*summary.Std, true
	}

	q1, ok1 := col.Quantile(0.25)
	q3, ok3 := col.Quantile(0.75)
	if !ok1 || !ok3 {
		return 0, 0, false
	}
	iqr := q3 - q1
	return q1 - 1.5*iqr, q3 + 1.5*iqr, true
}
