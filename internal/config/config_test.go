package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dqcli/internal/pipeline"
)

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dqcli.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "iqr", cfg.Pipeline.Thresholds.OutlierMethod)
	assert.InDelta(t, 50, cfg.Pipeline.Thresholds.MaxMissingRowPercentage, 1e-9)
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9999
pipeline:
  destructive_row_deletion: true
  thresholds:
    max_missing_row_percentage: 30
    outlier_method: zscore
  cleaning:
    text:
      case: lower
    duplicate_keys: [id]
  schema:
    required_columns: [id, name]
    strict: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.True(t, cfg.Pipeline.DestructiveRowDeletion)

	opts := cfg.PipelineOptions()
	assert.True(t, opts.DestructiveRowDeletion)
	assert.InDelta(t, 30, opts.MaxMissingRowPct(), 1e-9)
	assert.Equal(t, pipeline.OutlierMethodZScore, opts.OutlierMethod())
	assert.Equal(t, pipeline.CaseLower, opts.CaseMode())
	assert.Equal(t, []string{"id"}, opts.Cleaning.DuplicateKeys)
	assert.Equal(t, []string{"id", "name"}, opts.Schema.RequiredColumns)
	assert.True(t, opts.Schema.Strict)
}

func TestStageSelectionListForm(t *testing.T) {
	path := writeConfig(t, `
pipeline:
  stages: [clean_data, duplicates]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	sel := cfg.PipelineOptions().Stages
	assert.True(t, sel.Enabled("clean_data"))
	assert.True(t, sel.Enabled("duplicates"))
	assert.False(t, sel.Enabled("outliers"))
}

func TestStageSelectionMapForm(t *testing.T) {
	path := writeConfig(t, `
pipeline:
  stages:
    outliers:
      enabled: false
    duplicates: {}
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	sel := cfg.PipelineOptions().Stages
	assert.False(t, sel.Enabled("outliers"))
	assert.True(t, sel.Enabled("duplicates"), "absent enabled defaults to true")
	assert.True(t, sel.Enabled("clean_data"), "unlisted stages stay enabled")
}

func TestValidateRejectsUnknownStage(t *testing.T) {
	path := writeConfig(t, `
pipeline:
  stages: [clean_data, no_such_stage]
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no_such_stage")
}

func TestValidateRejectsBadEnums(t *testing.T) {
	path := writeConfig(t, `
pipeline:
  thresholds:
    outlier_method: mad
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestStageSelectionJSONForms(t *testing.T) {
	var list StageSelectionConfig
	require.NoError(t, list.UnmarshalJSON([]byte(`["clean_data","outliers"]`)))
	assert.Equal(t, []string{"clean_data", "outliers"}, list.List)

	var flags StageSelectionConfig
	require.NoError(t, flags.UnmarshalJSON([]byte(`{"outliers":{"enabled":false}}`)))
	assert.Equal(t, map[string]bool{"outliers": false}, flags.Flags)

	var bad StageSelectionConfig
	assert.Error(t, bad.UnmarshalJSON([]byte(`42`)))
}

func TestAuditFilePath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	path := cfg.AuditFilePath("abc123")
	assert.Equal(t, filepath.Join(cfg.Paths.AuditDir, "audit_abc123.json"), path)
}
