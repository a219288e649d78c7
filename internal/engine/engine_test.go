package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dqcli/internal/audit"
	"dqcli/internal/dataset"
	"dqcli/internal/pipeline"
	"dqcli/internal/pipeline/testutil"
)

func TestEngineRunEndToEnd(t *testing.T) {
	tbl := dataset.MustNew(
		dataset.Column{Name: "id", Cells: []dataset.Value{
			dataset.Text("1"), dataset.Text("1"), dataset.Text("2"),
		}},
		dataset.Column{Name: "age", Cells: []dataset.Value{
			dataset.Text("30"), dataset.Text("30"), dataset.Null(),
		}},
	)

	opts := pipeline.DefaultOptions()
	opts.DestructiveRowDeletion = true
	opts.RemoveDuplicates = true

	eng := New(opts)
	result := eng.Run(context.Background(), tbl)

	assert.Equal(t, StatusCompleted, result.Status)
	assert.NotEmpty(t, result.RunID)
	assert.Nil(t, result.Blocked)

	// The duplicate row is removed and the missing age imputed.
	require.Equal(t, 2, result.Table.RowCount())
	age, _ := result.Table.Column("age")
	assert.Equal(t, dataset.KindNumber, age.Kind())
	assert.Equal(t, 0, age.MissingCount())
	assert.Equal(t, 30.0, age.Cells[0].Number())

	require.NotNil(t, result.Report)
	assert.Greater(t, result.Report.QualityScore, 0.0)
	assert.Equal(t, 3, result.Report.Statistics.Initial.Rows)
	assert.Equal(t, 2, result.Report.Statistics.Final.Rows)
}

func TestEngineRunNeverReturnsNil(t *testing.T) {
	log := audit.NewLog()
	eng := New(pipeline.DefaultOptions(), WithAuditLog(log))

	tbl := dataset.MustNew(dataset.Column{Name: "a", Cells: []dataset.Value{dataset.Number(1)}})
	result := eng.Run(context.Background(), tbl)

	require.NotNil(t, result)
	require.NotNil(t, result.Table)
	require.NotNil(t, result.Report)
}

func TestEngineBlockedRunKeepsLastGoodTable(t *testing.T) {
	log := audit.NewLog()
	eng := New(pipeline.DefaultOptions(), WithAuditLog(log))
	eng.lifecycle = pipeline.NewLifecycle(log, pipeline.WithStages(
		testutil.PassingStage("ok"),
		testutil.FailingStage("broken"),
		testutil.PassingStage("unreached"),
	))

	tbl := testutil.SampleTable()
	result := eng.Run(context.Background(), tbl)

	assert.Equal(t, StatusFailed, result.Status)
	assert.Equal(t, tbl.RowCount(), result.Table.RowCount())
	assert.NotNil(t, result.Blocked)
	assert.NotNil(t, result.Report, "a blocked run still yields a report")
}

func TestEngineAuditTrailCompleteness(t *testing.T) {
	log := audit.NewLog()
	eng := New(pipeline.DefaultOptions(), WithAuditLog(log))

	eng.Run(context.Background(), testutil.SampleTable())

	trail := log.Trail()
	require.NotEmpty(t, trail)
	assert.Equal(t, audit.EventPipelineStart, trail[0].Event)
	assert.Equal(t, audit.EventPipelineComplete, trail[len(trail)-1].Event)

	starts, completes := 0, 0
	for _, e := range trail {
		switch e.Event {
		case audit.EventStageStart:
			starts++
		case audit.EventStageComplete:
			completes++
		}
	}
	assert.Equal(t, starts, completes, "every stage start has a matching completion")
	assert.Equal(t, len(pipeline.CanonicalOrder), starts)
}

func TestEngineAbsorbsLifecyclePanic(t *testing.T) {
	log := audit.NewLog()
	eng := New(pipeline.DefaultOptions(), WithAuditLog(log))
	eng.lifecycle = pipeline.NewLifecycle(log, pipeline.WithStages(
		testutil.PanickingStage("bomb"),
	))

	tbl := testutil.SampleTable()
	var result *Result
	require.NotPanics(t, func() {
		result = eng.Run(context.Background(), tbl)
	})

	assert.Equal(t, StatusFailed, result.Status)
	assert.Equal(t, tbl.RowCount(), result.Table.RowCount())
}
