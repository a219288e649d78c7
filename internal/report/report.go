// Package report computes the end-of-run quality report: a 0-100 score with
// a structured penalty breakdown, before/after table statistics, and
// human-readable remaining issues and recommendations. A report is built
// once from the initial table snapshot, the final table, and the full audit
// trail, and is never mutated afterward.
package report

import (
	"fmt"
	"math"
	"time"

	"dqcli/internal/audit"
	"dqcli/internal/dataset"
)

// ScoreWeights are the scoring coefficients. They are an editorial policy,
// not a contract: hosts may substitute their own weighting, and the chosen
// weights are recorded in the report breakdown.
type ScoreWeights struct {
	CriticalErrorPenalty float64 `json:"critical_error_penalty"`
	MissingWeight        float64 `json:"missing_weight"`
	DuplicateWeight      float64 `json:"duplicate_weight"`
	MutationWeight       float64 `json:"mutation_weight"`
	MutationPenaltyCap   float64 `json:"mutation_penalty_cap"`
	DriftWeight          float64 `json:"drift_weight"`
}

// DefaultScoreWeights returns the standard weighting: 15 points per critical
// error, 0.8 per average missing percent, 2 per duplicate percent, and 0.2
// per mutation capped at 10.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		CriticalErrorPenalty: 15,
		MissingWeight:        0.8,
		DuplicateWeight:      2,
		MutationWeight:       0.2,
		MutationPenaltyCap:   10,
		DriftWeight:          1,
	}
}

// ColumnStats profiles one column.
type ColumnStats struct {
	Name       string                  `json:"name"`
	Kind       string                  `json:"kind"`
	MissingPct float64                 `json:"missing_pct"`
	Distinct   int                     `json:"distinct"`
	Numeric    *dataset.NumericSummary `json:"numeric,omitempty"`
}

// TableStats profiles one table snapshot.
type TableStats struct {
	Rows         int           `json:"rows"`
	Cols         int           `json:"cols"`
	MissingPct   float64       `json:"missing_pct"`
	DuplicatePct float64       `json:"duplicates_pct"`
	Columns      []ColumnStats `json:"columns"`
}

// Statistics pairs the before and after profiles.
type Statistics struct {
	Initial TableStats `json:"initial"`
	Final   TableStats `json:"final"`
}

// Summary aggregates what the run did.
type Summary struct {
	StagesExecuted int     `json:"stages_executed"`
	TotalMutations int     `json:"total_mutations"`
	Errors         int     `json:"errors"`
	CriticalErrors int     `json:"critical_errors"`
	RowsRemoved    int     `json:"rows_removed"`
	RetentionRate  float64 `json:"retention_rate"`
}

// Breakdown itemizes the score penalties.
type Breakdown struct {
	Weights          ScoreWeights `json:"weights"`
	CriticalPenalty  float64      `json:"critical_penalty"`
	MissingPenalty   float64      `json:"missing_penalty"`
	DuplicatePenalty float64      `json:"duplicate_penalty"`
	MutationPenalty  float64      `json:"mutation_penalty"`
	DriftPenalty     float64      `json:"drift_penalty"`
}

// Report is the final run artifact handed to collaborators.
type Report struct {
	Timestamp       time.Time  `json:"timestamp"`
	QualityScore    float64    `json:"quality_score"`
	Statistics      Statistics `json:"statistics"`
	Summary         Summary    `json:"summary"`
	Breakdown       Breakdown  `json:"breakdown"`
	RemainingIssues []string   `json:"remaining_issues"`
	Recommendations []string   `json:"recommendations"`
}

// Builder computes reports. The zero-value builder is not usable; create
// one with NewBuilder.
type Builder struct {
	weights    ScoreWeights
	importance map[string]float64
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithWeights substitutes the scoring coefficients.
func WithWeights(w ScoreWeights) BuilderOption {
	return func(b *Builder) { b.weights = w }
}

// WithDriftImportance enables the drift penalty: final numeric column means
// are compared against the initial-table baseline, weighted by the given
// per-column importance factors.
func WithDriftImportance(importance map[string]float64) BuilderOption {
	return func(b *Builder) { b.importance = importance }
}

// NewBuilder creates a report builder with the default weights.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{weights: DefaultScoreWeights()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build compiles the comparative report from the run's inputs.
func (b *Builder) Build(initial, final *dataset.Table, trail []audit.Entry) *Report {
	stats := Statistics{
		Initial: profile(initial),
		Final:   profile(final),
	}

	summary := b.buildSummary(trail, initial, final)
	breakdown := b.buildBreakdown(final, stats, summary)
	score := b.score(breakdown)
	issues := remainingIssues(final)

	return &Report{
		Timestamp:       time.Now(),
		QualityScore:    score,
		Statistics:      stats,
		Summary:         summary,
		Breakdown:       breakdown,
		RemainingIssues: issues,
		Recommendations: recommendations(score, issues),
	}
}

// profile computes the per-table and per-column statistics.
func profile(tbl *dataset.Table) TableStats {
	stats := TableStats{
		Rows:         tbl.RowCount(),
		Cols:         tbl.ColumnCount(),
		MissingPct:   round2(tbl.MissingPct()),
		DuplicatePct: round2(tbl.DuplicatePct()),
	}
	for _, col := range tbl.Columns() {
		cs := ColumnStats{
			Name:       col.Name,
			Kind:       string(col.Kind()),
			MissingPct: round2(col.MissingPct()),
			Distinct:   col.Distinct(),
		}
		if col.Kind() == dataset.KindNumber {
			summary := col.Summary()
			cs.Numeric = &summary
		}
		stats.Columns = append(stats.Columns, cs)
	}
	return stats
}

func (b *Builder) buildSummary(trail []audit.Entry, initial, final *dataset.Table) Summary {
	s := Summary{
		RowsRemoved: initial.RowCount() - final.RowCount(),
	}
	for _, e := range trail {
		switch e.Event {
		case audit.EventStageComplete:
			s.StagesExecuted++
		case audit.EventMutation:
			// Warning entries share the event kind but carry no mutation type.
			if e.Mutation != "" {
				s.TotalMutations++
			}
		case audit.EventError:
			s.Errors++
			if e.Severity == audit.SeverityCritical {
				s.CriticalErrors++
			}
		}
	}
	if initial.RowCount() > 0 {
		s.RetentionRate = round2(float64(final.RowCount()) / float64(initial.RowCount()) * 100)
	}
	return s
}

func (b *Builder) buildBreakdown(final *dataset.Table, stats Statistics, summary Summary) Breakdown {
	bd := Breakdown{Weights: b.weights}
	bd.CriticalPenalty = float64(summary.CriticalErrors) * b.weights.CriticalErrorPenalty
	bd.MissingPenalty = stats.Final.MissingPct * b.weights.MissingWeight
	bd.DuplicatePenalty = stats.Final.DuplicatePct * b.weights.DuplicateWeight
	bd.MutationPenalty = math.Min(b.weights.MutationPenaltyCap,
		float64(summary.TotalMutations)*b.weights.MutationWeight)
	if len(b.importance) > 0 {
		bd.DriftPenalty = b.driftPenalty(stats)
	}
	return bd
}

// driftPenalty compares final numeric column means against the initial
// baseline, normalized by the initial spread and weighted by the configured
// per-column importance.
func (b *Builder) driftPenalty(stats Statistics) float64 {
	baseline := make(map[string]*dataset.NumericSummary)
	for i := range stats.Initial.Columns {
		c := stats.Initial.Columns[i]
		if c.Numeric != nil {
			baseline[c.Name] = c.Numeric
		}
	}
	penalty := 0.0
	for _, c := range stats.Final.Columns {
		w, ok := b.importance[c.Name]
		if !ok || w <= 0 || c.Numeric == nil {
			continue
		}
		base, ok := baseline[c.Name]
		if !ok || base.Count == 0 {
			continue
		}
		scale := base.Std
		if scale == 0 {
			scale = math.Max(math.Abs(base.Mean), 1)
		}
		shift := math.Abs(c.Numeric.Mean-base.Mean) / scale
		penalty += w * math.Min(5, shift) * b.weights.DriftWeight
	}
	return penalty
}

// score applies the penalties, clamps to [0,100], and rounds to one decimal.
func (b *Builder) score(bd Breakdown) float64 {
	score := 100.0 -
		bd.CriticalPenalty -
		bd.MissingPenalty -
		bd.DuplicatePenalty -
		bd.MutationPenalty -
		bd.DriftPenalty
	score = math.Max(0, math.Min(100, score))
	return math.Round(score*10) / 10
}

func remainingIssues(final *dataset.Table) []string {
	var issues []string
	if final.MissingPct() > 0 {
		issues = append(issues, "Dataset still contains missing values.")
	}
	if final.DuplicateRowCount(nil) > 0 {
		issues = append(issues, "Dataset still contains duplicate rows.")
	}
	for _, col := range final.Columns() {
		if col.AllNull() {
			issues = append(issues, fmt.Sprintf("Column %q is entirely null.", col.Name))
		}
	}
	return issues
}

func recommendations(score float64, issues []string) []string {
	var recs []string
	if score < 80 {
		recs = append(recs, "Configure more aggressive imputation rules.")
	}
	if len(issues) > 0 {
		recs = append(recs, "Review remaining issues before relying on this dataset.")
	}
	if len(recs) == 0 {
		recs = append(recs, "Data is highly reliable for production usage.")
	}
	return recs
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
