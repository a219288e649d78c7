package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dqcli/internal/audit"
	"dqcli/internal/dataset"
)

func cleanTable() *dataset.Table {
	return dataset.MustNew(
		dataset.Column{Name: "id", Cells: []dataset.Value{
			dataset.Number(1), dataset.Number(2), dataset.Number(3),
		}},
	)
}

func TestBuildPerfectScoreForCleanData(t *testing.T) {
	tbl := cleanTable()
	rep := NewBuilder().Build(tbl, tbl, nil)

	assert.Equal(t, 100.0, rep.QualityScore)
	assert.Empty(t, rep.RemainingIssues)
	require.Len(t, rep.Recommendations, 1)
	assert.Contains(t, rep.Recommendations[0], "reliable")
}

func TestBuildAppliesPenalties(t *testing.T) {
	initial := dataset.MustNew(
		dataset.Column{Name: "v", Cells: []dataset.Value{
			dataset.Number(1), dataset.Number(1), dataset.Null(), dataset.Number(3),
		}},
	)
	final := dataset.MustNew(
		dataset.Column{Name: "v", Cells: []dataset.Value{
			dataset.Number(1), dataset.Number(1), dataset.Null(), dataset.Number(3),
		}},
	)

	log := audit.NewLog()
	log.LogMutation("clean_data", "text_normalization", nil)
	log.LogError("schema_check", "boom", true)

	rep := NewBuilder().Build(initial, final, log.Trail())

	w := DefaultScoreWeights()
	assert.Equal(t, w.CriticalErrorPenalty, rep.Breakdown.CriticalPenalty)
	assert.Equal(t, 1, rep.Summary.TotalMutations)
	assert.Equal(t, 1, rep.Summary.CriticalErrors)
	assert.Less(t, rep.QualityScore, 100.0)
	assert.NotEmpty(t, rep.RemainingIssues)
}

func TestScoreClampsAtZero(t *testing.T) {
	tbl := cleanTable()
	log := audit.NewLog()
	for i := 0; i < 20; i++ {
		log.LogError("s", "critical failure", true)
	}

	rep := NewBuilder().Build(tbl, tbl, log.Trail())
	assert.Equal(t, 0.0, rep.QualityScore)
}

func TestScoreRoundsToOneDecimal(t *testing.T) {
	// One mutation at the default weight shaves a fractional penalty.
	tbl := cleanTable()
	log := audit.NewLog()
	log.LogMutation("s", "impute", nil)

	rep := NewBuilder().Build(tbl, tbl, log.Trail())
	assert.InDelta(t, 99.8, rep.QualityScore, 1e-9)
}

func TestMutationPenaltyIsCapped(t *testing.T) {
	tbl := cleanTable()
	log := audit.NewLog()
	for i := 0; i < 500; i++ {
		log.LogMutation("s", "impute", nil)
	}

	rep := NewBuilder().Build(tbl, tbl, log.Trail())
	w := DefaultScoreWeights()
	assert.Equal(t, w.MutationPenaltyCap, rep.Breakdown.MutationPenalty)
}

func TestSummaryRetention(t *testing.T) {
	initial := dataset.MustNew(dataset.Column{Name: "a", Cells: []dataset.Value{
		dataset.Number(1), dataset.Number(2), dataset.Number(3), dataset.Number(4),
	}})
	final := dataset.MustNew(dataset.Column{Name: "a", Cells: []dataset.Value{
		dataset.Number(1), dataset.Number(2), dataset.Number(3),
	}})

	rep := NewBuilder().Build(initial, final, nil)
	assert.Equal(t, 1, rep.Summary.RowsRemoved)
	assert.InDelta(t, 75, rep.Summary.RetentionRate, 1e-9)
}

func TestDriftPenaltyRequiresImportance(t *testing.T) {
	initial := dataset.MustNew(dataset.Column{Name: "v", Cells: []dataset.Value{
		dataset.Number(10), dataset.Number(12), dataset.Number(14),
	}})
	final := dataset.MustNew(dataset.Column{Name: "v", Cells: []dataset.Value{
		dataset.Number(100), dataset.Number(120), dataset.Number(140),
	}})

	plain := NewBuilder().Build(initial, final, nil)
	assert.Zero(t, plain.Breakdown.DriftPenalty)

	weighted := NewBuilder(WithDriftImportance(map[string]float64{"v": 1})).
		Build(initial, final, nil)
	assert.Greater(t, weighted.Breakdown.DriftPenalty, 0.0)
	assert.Less(t, weighted.QualityScore, plain.QualityScore)
}

func TestCustomWeights(t *testing.T) {
	tbl := cleanTable()
	log := audit.NewLog()
	log.LogError("s", "bad", true)

	w := DefaultScoreWeights()
	w.CriticalErrorPenalty = 50
	rep := NewBuilder(WithWeights(w)).Build(tbl, tbl, log.Trail())
	assert.Equal(t, 50.0, rep.QualityScore)
}

func TestMarkdownRendering(t *testing.T) {
	initial := dataset.MustNew(dataset.Column{Name: "v", Cells: []dataset.Value{
		dataset.Number(1), dataset.Null(),
	}})
	final := dataset.MustNew(dataset.Column{Name: "v", Cells: []dataset.Value{
		dataset.Number(1), dataset.Number(1),
	}})

	md := NewBuilder().Build(initial, final, nil).Markdown()
	assert.True(t, strings.Contains(md, "Quality Report"))
	assert.True(t, strings.Contains(md, "**Score:**"))
	assert.True(t, strings.Contains(md, "| Rows |"))
}
