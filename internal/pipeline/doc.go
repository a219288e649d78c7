// Package pipeline implements the staged cleaning and validation engine:
// an ordered sequence of independent transformation stages over a tabular
// dataset, each governed by a tri-state outcome contract (pass/warn/fail),
// and the lifecycle manager that sequences them.
//
// Core Components:
//
// Stage: a named unit of transformation. Concrete stages implement Execute;
// all callers go through Runner.Run, which wraps Execute with audit logging,
// the schema-integrity and row-preservation invariants, and panic capture.
// A stage never surfaces a raw panic or error to the lifecycle.
//
// Runner: the enforced wrapper around stage execution. An unauthorized
// column change forces a fail outcome with the offending output table kept
// for inspection; an unauthorized row-count change does the same; a panic
// inside Execute is logged as critical and the pre-stage table is returned
// untouched.
//
// Lifecycle: holds the canonical stage order (schema_check, detect_types,
// clean_data, duplicates, missing_values, outliers), applies per-run
// enablement from Options, and halts immediately when a stage fails. A
// failed run always hands back the table from the last successfully
// completed stage.
//
// Options: the immutable, fully-resolved per-run configuration. No stage
// mutates it.
package pipeline
