package pipeline

import (
	"context"

	"dqcli/internal/audit"
	"dqcli/internal/dataset"
)

// Lifecycle sequences the cleaning stages for one run. It holds the
// canonical ordered stage list, applies per-run enablement from the options,
// enforces halt-on-fail, and never retries a failed stage.
//
// A Lifecycle and its audit log belong to a single run at a time; hosts
// wanting parallel independent runs create one per run.
type Lifecycle struct {
	log    *audit.Log
	runner *Runner
	stages []Stage
	tracer *Tracer
}

// LifecycleOption configures a Lifecycle.
type LifecycleOption func(*Lifecycle)

// WithTracer instruments the lifecycle with OpenTelemetry spans and metrics.
func WithTracer(t *Tracer) LifecycleOption {
	return func(l *Lifecycle) { l.tracer = t }
}

// WithStages replaces the canonical stage list. Used by tests to script
// failures; production callers keep the default order.
func WithStages(stages ...Stage) LifecycleOption {
	return func(l *Lifecycle) { l.stages = stages }
}

// NewLifecycle creates a lifecycle with the canonical stage order wired to
// the given audit log.
func NewLifecycle(log *audit.Log, opts ...LifecycleOption) *Lifecycle {
	l := &Lifecycle{
		log:    log,
		runner: NewRunner(log),
		stages: []Stage{
			NewSchemaCheckStage(log),
			NewDetectTypesStage(log),
			NewCleanDataStage(log),
			NewDuplicatesStage(log),
			NewMissingValuesStage(log),
			NewOutliersStage(log),
		},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Stages returns the ordered stage list.
func (l *Lifecycle) Stages() []Stage {
	out := make([]Stage, len(l.stages))
	copy(out, l.stages)
	return out
}

// RunResult is what a lifecycle run produces. Final always holds the
// last-known-good table: the output of the last successfully completed
// stage, or the original input when the very first stage failed. When a
// stage failed, Blocked holds the table that stage returned (possibly a
// structurally violating one) so callers can inspect what went wrong
// without ever adopting it as the cleaned result.
type RunResult struct {
	Final       *dataset.Table
	Blocked     *dataset.Table
	FailedStage string
}

// Run executes every enabled stage in order over the table. On a fail
// outcome it logs a pipeline-blocked critical error naming the offending
// stage and halts immediately with a blocked error; no subsequent stage
// runs and nothing is retried. A stage panic escaping the runner
// (defensive; the runner already converts panics) halts the same way.
func (l *Lifecycle) Run(ctx context.Context, tbl *dataset.Table, opts Options) (RunResult, error) {
	l.logRunStart(ctx, tbl, opts)

	current := tbl
	for _, stage := range l.stages {
		if err := ctx.Err(); err != nil {
			l.logRunCancelled(ctx, stage.Name())
			return RunResult{Final: current, FailedStage: stage.Name()},
				WrapError(err, stage.Name(), "run cancelled between stages")
		}
		if !opts.Stages.Enabled(stage.Name()) {
			l.logStageDisabled(ctx, stage.Name())
			continue
		}

		next, outcome, err := l.runStage(ctx, stage, current, opts)
		if err != nil {
			// Escaped stage panic: the runner should have absorbed it.
			l.log.LogError(stage.Name(), "stage failed unexpectedly", true)
			l.logStagePanic(ctx, stage.Name(), err)
			return RunResult{Final: current, FailedStage: stage.Name()},
				WrapError(err, stage.Name(), "stage failed unexpectedly")
		}

		if outcome == OutcomeFail {
			l.log.LogError(stage.Name(), "pipeline blocked", true)
			l.logRunBlocked(ctx, stage.Name())
			return RunResult{Final: current, Blocked: next, FailedStage: stage.Name()},
				NewBlockedError(stage.Name())
		}
		current = next
	}

	l.logRunComplete(ctx, current)
	return RunResult{Final: current}, nil
}

// runStage invokes the runner under a span, with a defensive recover so
// that nothing a stage does can crash the lifecycle.
func (l *Lifecycle) runStage(ctx context.Context, stage Stage, tbl *dataset.Table, opts Options) (out *dataset.Table, outcome Outcome, err error) {
	if l.tracer != nil {
		var end func(Outcome)
		ctx, end = l.tracer.StartStage(ctx, stage.Name())
		defer func() { end(outcome) }()
	}
	defer func() {
		if rec := recover(); rec != nil {
			out, outcome, err = nil, OutcomeFail, NewPanicError(stage.Name(), rec)
		}
	}()
	out, outcome = l.runner.Run(stage, tbl, opts)
	return out, outcome, nil
}
