package pipeline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dqcli/internal/audit"
	"dqcli/internal/dataset"
	"dqcli/internal/pipeline"
)

func TestSchemaCheckMissingRequiredColumn(t *testing.T) {
	tbl := dataset.MustNew(textColumn("name", "a"))

	opts := pipeline.DefaultOptions()
	opts.Schema.RequiredColumns = []string{"name", "email"}

	log := audit.NewLog()
	stage := pipeline.NewSchemaCheckStage(log)

	out, outcome, err := stage.Execute(tbl, opts)
	require.NoError(t, err)

	assert.Equal(t, pipeline.OutcomeWarn, outcome, "missing columns warn outside strict mode")
	assert.Equal(t, 1, out.RowCount())
	assert.True(t, hasCriticalError(log.Trail()), "the finding itself is critical")

	opts.Schema.Strict = true
	_, outcome, err = stage.Execute(tbl, opts)
	require.NoError(t, err)
	assert.Equal(t, pipeline.OutcomeFail, outcome)
}

func TestSchemaCheckUnexpectedColumns(t *testing.T) {
	tbl := dataset.MustNew(textColumn("name", "a"), textColumn("extra", "x"))

	opts := pipeline.DefaultOptions()
	opts.Schema.RequiredColumns = []string{"name"}

	log := audit.NewLog()
	stage := pipeline.NewSchemaCheckStage(log)
	_, outcome, err := stage.Execute(tbl, opts)
	require.NoError(t, err)

	assert.Equal(t, pipeline.OutcomeWarn, outcome)
	var found bool
	for _, e := range log.Trail() {
		if e.Mutation == "unexpected_columns" {
			found = true
			assert.Equal(t, []string{"extra"}, e.Details["columns"])
		}
	}
	assert.True(t, found)
}

func TestSchemaCheckAllNullColumn(t *testing.T) {
	tbl := dataset.MustNew(dataset.Column{Name: "ghost", Cells: []dataset.Value{
		dataset.Null(), dataset.Null(),
	}})

	log := audit.NewLog()
	stage := pipeline.NewSchemaCheckStage(log)
	_, outcome, err := stage.Execute(tbl, pipeline.DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, pipeline.OutcomeWarn, outcome)
	assert.False(t, hasCriticalError(log.Trail()), "all-null findings are not critical")
}

func TestSchemaCheckCleanSchemaPasses(t *testing.T) {
	tbl := dataset.MustNew(textColumn("name", "a"))

	opts := pipeline.DefaultOptions()
	opts.Schema.RequiredColumns = []string{"name"}

	stage := pipeline.NewSchemaCheckStage(audit.NewLog())
	_, outcome, err := stage.Execute(tbl, opts)
	require.NoError(t, err)
	assert.Equal(t, pipeline.OutcomePass, outcome)
}
