package pipeline

import (
	"context"
	"log/slog"

	"dqcli/internal/dataset"
)

// logRunStart logs the start of a lifecycle run.
func (l *Lifecycle) logRunStart(ctx context.Context, tbl *dataset.Table, opts Options) {
	enabled := 0
	for _, stage := range l.stages {
		if opts.Stages.Enabled(stage.Name()) {
			enabled++
		}
	}
	slog.InfoContext(ctx, "lifecycle_run_start",
		slog.Int("rows", tbl.RowCount()),
		slog.Int("cols", tbl.ColumnCount()),
		slog.Int("enabled_stages", enabled),
		slog.Int("total_stages", len(l.stages)))
}

// logRunComplete logs a fully successful run.
func (l *Lifecycle) logRunComplete(ctx context.Context, tbl *dataset.Table) {
	slog.InfoContext(ctx, "lifecycle_run_complete",
		slog.Int("rows", tbl.RowCount()),
		slog.Int("cols", tbl.ColumnCount()))
}

// logRunBlocked logs a halt caused by a failed stage.
func (l *Lifecycle) logRunBlocked(ctx context.Context, stage string) {
	slog.ErrorContext(ctx, "pipeline_blocked",
		slog.String("stage", stage))
}

// logRunCancelled logs a between-stage cancellation.
func (l *Lifecycle) logRunCancelled(ctx context.Context, stage string) {
	slog.WarnContext(ctx, "lifecycle_run_cancelled",
		slog.String("next_stage", stage))
}

// logStageDisabled logs a stage skipped by configuration.
func (l *Lifecycle) logStageDisabled(ctx context.Context, stage string) {
	slog.InfoContext(ctx, "stage_disabled",
		slog.String("stage", stage))
}

// logStagePanic logs a panic that escaped the runner.
func (l *Lifecycle) logStagePanic(ctx context.Context, stage string, err error) {
	slog.ErrorContext(ctx, "stage_failure_unexpected",
		slog.String("stage", stage),
		slog.String("error", err.Error()))
}
