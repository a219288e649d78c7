package pipeline

import (
	"fmt"
	"sync"

	"dqcli/internal/audit"
	"dqcli/internal/dataset"
)

// Stage is a single named unit of transformation. Execute holds the
// stage-specific logic and must not bypass the shared audit trail; callers
// never invoke Execute directly but go through Runner.Run, which enforces
// the structural invariants.
type Stage interface {
	// Name returns the stable identifier used for configuration lookup and
	// audit logging.
	Name() string

	// Execute transforms the table it is handed (an exclusively owned
	// working copy) and returns the result with a tri-state outcome.
	// Recoverable data issues are absorbed and reported via the outcome;
	// a returned error means the stage could not run at all.
	Execute(tbl *dataset.Table, opts Options) (*dataset.Table, Outcome, error)

	// LastOutcome returns the outcome of the most recent invocation. It is
	// caller convenience only and has no effect on subsequent runs.
	LastOutcome() Outcome
}

// BaseStage carries the pieces every concrete stage shares: its identifier,
// the shared audit log, and the cached last outcome.
type BaseStage struct {
	name string
	log  *audit.Log

	mu   sync.RWMutex
	last Outcome
}

// NewBaseStage creates the embedded base for a concrete stage.
func NewBaseStage(name string, log *audit.Log) BaseStage {
	return BaseStage{name: name, log: log, last: OutcomePass}
}

// Name returns the stage identifier.
func (b *BaseStage) Name() string {
	return b.name
}

// LastOutcome returns the cached outcome of the most recent run.
func (b *BaseStage) LastOutcome() Outcome {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.last
}

// Audit returns the shared audit log.
func (b *BaseStage) Audit() *audit.Log {
	return b.log
}

func (b *BaseStage) recordOutcome(o Outcome) {
	b.mu.Lock()
	b.last = o
	b.mu.Unlock()
}

// Runner is the enforced wrapper all stage invocations go through. It owns
// the lifecycle audit entries and the two structural invariants:
//
// Schema Integrity Rule: a stage that changes the ordered column-name
// sequence made an unauthorized structural change; the outcome is forced to
// fail and the stage's output table is returned so the caller can inspect
// what went wrong.
//
// Row Preservation Rule: a stage that changes the row count without an
// explicit authorization in the run options (destructive_row_deletion, or
// remove_duplicates for the duplicates stage) is forced to fail. Stages
// expected to drop rows must declare that intent in configuration.
type Runner struct {
	log *audit.Log
}

// NewRunner creates a runner recording to the given audit log.
func NewRunner(log *audit.Log) *Runner {
	return &Runner{log: log}
}

// Run executes one stage against the table and returns the resulting table
// and outcome. It never panics and never returns an error: a panic or error
// inside Execute is logged as critical and reported as a fail outcome with
// the pre-stage table returned unchanged.
func (r *Runner) Run(stage Stage, tbl *dataset.Table, opts Options) (*dataset.Table, Outcome) {
	name := stage.Name()
	inRows, inCols := tbl.RowCount(), tbl.ColumnCount()
	r.log.LogStageStart(name, inRows, inCols)

	result, outcome, err := r.invoke(stage, tbl, opts)
	if err != nil {
		r.log.LogError(name, fmt.Sprintf("execution failed: %v", err), true)
		return r.finish(stage, tbl, OutcomeFail)
	}
	if result == nil {
		r.log.LogError(name, "stage returned no table", true)
		return r.finish(stage, tbl, OutcomeFail)
	}

	if !dataset.SameSchema(tbl, result) {
		verr := NewSchemaViolationError(name, tbl.ColumnNames(), result.ColumnNames())
		r.log.LogError(name, verr.Message, true)
		// Hand back the offending output so the caller can inspect it.
		return r.finish(stage, result, OutcomeFail)
	}

	if result.RowCount() != inRows && !opts.AllowsRowDeletion(name) {
		verr := NewRowCountViolationError(name, inRows, result.RowCount())
		r.log.LogError(name, verr.Message, true)
		return r.finish(stage, result, OutcomeFail)
	}

	switch outcome {
	case OutcomeFail:
		r.log.LogError(name, "stage reported a critical violation", true)
	case OutcomeWarn:
		r.log.LogWarning(name, "stage completed with findings")
	}
	return r.finish(stage, result, outcome)
}

// invoke calls Execute on a working copy, converting panics to errors so
// they never reach the lifecycle.
func (r *Runner) invoke(stage Stage, tbl *dataset.Table, opts Options) (result *dataset.Table, outcome Outcome, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			result, outcome, err = nil, OutcomeFail, NewPanicError(stage.Name(), rec)
		}
	}()
	return stage.Execute(tbl.Clone(), opts)
}

// finish caches the outcome on the stage and records the completion entry.
func (r *Runner) finish(stage Stage, tbl *dataset.Table, outcome Outcome) (*dataset.Table, Outcome) {
	if bs, ok := stage.(interface{ recordOutcome(Outcome) }); ok {
		bs.recordOutcome(outcome)
	}
	r.log.LogStageComplete(stage.Name(), tbl.RowCount(), tbl.ColumnCount(), outcome.String())
	return tbl, outcome
}
