package pipeline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dqcli/internal/audit"
	"dqcli/internal/dataset"
	"dqcli/internal/pipeline"
	"dqcli/internal/pipeline/testutil"
)

func lastEntryOfKind(trail []audit.Entry, kind audit.EventKind) (audit.Entry, bool) {
	for i := len(trail) - 1; i >= 0; i-- {
		if trail[i].Event == kind {
			return trail[i], true
		}
	}
	return audit.Entry{}, false
}

func hasCriticalError(trail []audit.Entry) bool {
	for _, e := range trail {
		if e.Event == audit.EventError && e.Severity == audit.SeverityCritical {
			return true
		}
	}
	return false
}

func TestRunnerPassThrough(t *testing.T) {
	log := audit.NewLog()
	runner := pipeline.NewRunner(log)
	tbl := testutil.SampleTable()

	stage := testutil.PassingStage("noop")
	out, outcome := runner.Run(stage, tbl, pipeline.DefaultOptions())

	assert.Equal(t, pipeline.OutcomePass, outcome)
	assert.Equal(t, tbl.RowCount(), out.RowCount())
	assert.Equal(t, pipeline.OutcomePass, stage.LastOutcome())

	complete, ok := lastEntryOfKind(log.Trail(), audit.EventStageComplete)
	require.True(t, ok)
	assert.Equal(t, "noop", complete.Stage)
	assert.Equal(t, "pass", complete.Outcome)
}

func TestRunnerRejectsUnauthorizedRowRemoval(t *testing.T) {
	log := audit.NewLog()
	runner := pipeline.NewRunner(log)
	tbl := testutil.SampleTable()

	out, outcome := runner.Run(testutil.RowDroppingStage("sneaky"), tbl, pipeline.DefaultOptions())

	assert.Equal(t, pipeline.OutcomeFail, outcome)
	// The offending output is handed back for inspection.
	assert.Equal(t, tbl.RowCount()-1, out.RowCount())
	assert.True(t, hasCriticalError(log.Trail()))

	_, ok := lastEntryOfKind(log.Trail(), audit.EventStageComplete)
	assert.True(t, ok, "completion entry must exist even on failure")
}

func TestRunnerAllowsAuthorizedRowRemoval(t *testing.T) {
	log := audit.NewLog()
	runner := pipeline.NewRunner(log)
	tbl := testutil.SampleTable()

	opts := pipeline.DefaultOptions()
	opts.DestructiveRowDeletion = true

	out, outcome := runner.Run(testutil.RowDroppingStage("dropper"), tbl, opts)

	assert.Equal(t, pipeline.OutcomePass, outcome)
	assert.Equal(t, tbl.RowCount()-1, out.RowCount())
	assert.False(t, hasCriticalError(log.Trail()))
}

func TestRunnerDuplicatesStageMayRemoveRows(t *testing.T) {
	log := audit.NewLog()
	runner := pipeline.NewRunner(log)
	tbl := testutil.SampleTable()

	opts := pipeline.DefaultOptions()
	opts.RemoveDuplicates = true

	stage := pipeline.NewDuplicatesStage(log)
	out, outcome := runner.Run(stage, tbl, opts)

	assert.Equal(t, pipeline.OutcomeWarn, outcome)
	assert.Equal(t, tbl.RowCount()-1, out.RowCount())
	assert.False(t, hasCriticalError(log.Trail()))
}

func TestRunnerRejectsSchemaChange(t *testing.T) {
	log := audit.NewLog()
	runner := pipeline.NewRunner(log)
	tbl := testutil.SampleTable()

	opts := pipeline.DefaultOptions()
	opts.DestructiveRowDeletion = true

	_, outcome := runner.Run(testutil.ColumnAddingStage("widener"), tbl, opts)

	assert.Equal(t, pipeline.OutcomeFail, outcome)
	assert.True(t, hasCriticalError(log.Trail()))
}

func TestRunnerAbsorbsPanic(t *testing.T) {
	log := audit.NewLog()
	runner := pipeline.NewRunner(log)
	tbl := testutil.SampleTable()

	var out, outcome = tbl, pipeline.OutcomePass
	require.NotPanics(t, func() {
		out, outcome = runner.Run(testutil.PanickingStage("bomb"), tbl, pipeline.DefaultOptions())
	})

	assert.Equal(t, pipeline.OutcomeFail, outcome)
	// Caller keeps the pre-stage table untouched.
	assert.Equal(t, tbl.RowCount(), out.RowCount())
	assert.True(t, hasCriticalError(log.Trail()))
}

func TestRunnerTreatsNilResultAsFailure(t *testing.T) {
	log := audit.NewLog()
	runner := pipeline.NewRunner(log)
	tbl := testutil.SampleTable()

	stage := &testutil.MockStage{
		NameValue: "nilly",
		ExecuteFunc: func(_ *dataset.Table, _ pipeline.Options) (*dataset.Table, pipeline.Outcome, error) {
			return nil, pipeline.OutcomePass, nil
		},
	}
	out, outcome := runner.Run(stage, tbl, pipeline.DefaultOptions())

	assert.Equal(t, pipeline.OutcomeFail, outcome)
	assert.Equal(t, tbl.RowCount(), out.RowCount())
}

func TestRunnerDoesNotMutateInput(t *testing.T) {
	log := audit.NewLog()
	runner := pipeline.NewRunner(log)
	tbl := testutil.SampleTable()

	stage := &testutil.MockStage{
		NameValue: "scribbler",
		ExecuteFunc: func(in *dataset.Table, _ pipeline.Options) (*dataset.Table, pipeline.Outcome, error) {
			_ = in.SetCell("name", 0, dataset.Text("overwritten"))
			return in, pipeline.OutcomeWarn, nil
		},
	}
	runner.Run(stage, tbl, pipeline.DefaultOptions())

	col, _ := tbl.Column("name")
	assert.Equal(t, "  Alice ", col.Cells[0].Text())
}

func TestWorstOutcome(t *testing.T) {
	assert.Equal(t, pipeline.OutcomeWarn, pipeline.Worst(pipeline.OutcomePass, pipeline.OutcomeWarn))
	assert.Equal(t, pipeline.OutcomeFail, pipeline.Worst(pipeline.OutcomeWarn, pipeline.OutcomeFail))
	assert.Equal(t, pipeline.OutcomePass, pipeline.Worst(pipeline.OutcomePass, pipeline.OutcomePass))
}
