// Package engine wires the run configuration, audit log, and stage
// lifecycle into the single entry point collaborators call: one Engine per
// run, Run once, get the cleaned table and its quality report back.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"dqcli/internal/audit"
	"dqcli/internal/dataset"
	"dqcli/internal/pipeline"
	"dqcli/internal/report"
)

// Run statuses recorded in the audit trail and run metrics.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Engine executes one end-to-end cleaning run. It owns the audit log and
// lifecycle for the duration of that run; independent runs need independent
// engines, there is no global pipeline state to reset.
type Engine struct {
	opts      pipeline.Options
	log       *audit.Log
	lifecycle *pipeline.Lifecycle
	builder   *report.Builder
	tracer    *pipeline.Tracer
}

// Option configures an Engine.
type Option func(*Engine)

// WithAuditLog substitutes the audit log, letting hosts control retention
// or mirror entries to their own logger.
func WithAuditLog(log *audit.Log) Option {
	return func(e *Engine) { e.log = log }
}

// WithReportBuilder substitutes the report builder (custom score weights,
// drift baselines).
func WithReportBuilder(b *report.Builder) Option {
	return func(e *Engine) { e.builder = b }
}

// WithTracer instruments the run with OpenTelemetry spans and metrics.
func WithTracer(t *pipeline.Tracer) Option {
	return func(e *Engine) { e.tracer = t }
}

// New creates an engine for one run with the given immutable options.
func New(opts pipeline.Options, engineOpts ...Option) *Engine {
	e := &Engine{opts: opts}
	for _, opt := range engineOpts {
		opt(e)
	}
	if e.log == nil {
		e.log = audit.NewLog()
	}
	if e.builder == nil {
		e.builder = report.NewBuilder()
	}
	lifecycleOpts := []pipeline.LifecycleOption{}
	if e.tracer != nil {
		lifecycleOpts = append(lifecycleOpts, pipeline.WithTracer(e.tracer))
	}
	e.lifecycle = pipeline.NewLifecycle(e.log, lifecycleOpts...)
	return e
}

// Audit returns the engine's audit log.
func (e *Engine) Audit() *audit.Log {
	return e.log
}

// Result is the outcome of one engine run.
type Result struct {
	Table   *dataset.Table
	Report  *report.Report
	RunID   string
	Blocked *dataset.Table // failing stage's output when the run halted
	Status  string
}

// Run executes the full pipeline over the input table and assembles the
// quality report. It does not return an error: every failure mode (blocked
// stage, escaped panic, lifecycle crash) is absorbed into the audit trail,
// and the returned table is always the best-known table (the original
// input if nothing completed), so downstream reporting can still describe
// what happened.
func (e *Engine) Run(ctx context.Context, tbl *dataset.Table) *Result {
	runID := uuid.NewString()
	initial := tbl.Clone()

	var endRun func(string)
	if e.tracer != nil {
		ctx, endRun = e.tracer.StartRun(ctx, runID)
	}

	e.log.LogPipelineStart(runID, tbl.RowCount(), tbl.ColumnCount())

	res, status := e.execute(ctx, tbl)

	rep := e.builder.Build(initial, res.Final, e.log.Trail())
	e.log.LogPipelineComplete(res.Final.RowCount(), res.Final.ColumnCount(), status, rep.QualityScore)

	if endRun != nil {
		e.tracer.RecordMutations(ctx, rep.Summary.TotalMutations, status)
		endRun(status)
	}

	slog.InfoContext(ctx, "engine_run_finished",
		slog.String("run_id", runID),
		slog.String("status", status),
		slog.Float64("quality_score", rep.QualityScore))

	return &Result{
		Table:   res.Final,
		Report:  rep,
		RunID:   runID,
		Blocked: res.Blocked,
		Status:  status,
	}
}

// execute runs the lifecycle with a last-resort recover so a pipeline-level
// crash before or between stages still yields a reportable result with the
// original input intact ("0 stages completed").
func (e *Engine) execute(ctx context.Context, tbl *dataset.Table) (res pipeline.RunResult, status string) {
	defer func() {
		if rec := recover(); rec != nil {
			e.log.LogError("engine", fmt.Sprintf("pipeline crash: %v", rec), true)
			res, status = pipeline.RunResult{Final: tbl}, StatusFailed
		}
	}()

	res, err := e.lifecycle.Run(ctx, tbl, e.opts)
	if err != nil {
		return res, StatusFailed
	}
	return res, StatusCompleted
}
