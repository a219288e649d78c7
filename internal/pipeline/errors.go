package pipeline

import (
	"errors"
	"fmt"
)

// ErrorType classifies pipeline errors.
type ErrorType string

const (
	ErrorTypeValidation        ErrorType = "validation"
	ErrorTypeExecution         ErrorType = "execution"
	ErrorTypeSchemaViolation   ErrorType = "schema_violation"
	ErrorTypeRowCountViolation ErrorType = "row_count_violation"
	ErrorTypePanic             ErrorType = "panic"
	ErrorTypeBlocked           ErrorType = "blocked"
)

// PipelineError is a structured error carrying the stage it originated from
// and whether it is severe enough to halt the run.
type PipelineError struct {
	Type     ErrorType      `json:"type"`
	Stage    string         `json:"stage,omitempty"`
	Message  string         `json:"message"`
	Cause    error          `json:"-"`
	Details  map[string]any `json:"details,omitempty"`
	Critical bool           `json:"critical"`
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	if e == nil {
		return "unknown pipeline error"
	}
	if e.Stage != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Type, e.Stage, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause.
func (e *PipelineError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// NewSchemaViolationError reports an unauthorized structural change.
func NewSchemaViolationError(stage string, before, after []string) *PipelineError {
	return &PipelineError{
		Type:    ErrorTypeSchemaViolation,
		Stage:   stage,
		Message: "unauthorized schema change",
		Details: map[string]any{
			"columns_before": before,
			"columns_after":  after,
		},
		Critical: true,
	}
}

// NewRowCountViolationError reports a row-count change without the
// destructive_row_deletion authorization.
func NewRowCountViolationError(stage string, before, after int) *PipelineError {
	return &PipelineError{
		Type:    ErrorTypeRowCountViolation,
		Stage:   stage,
		Message: fmt.Sprintf("row count changed from %d to %d without destructive_row_deletion", before, after),
		Details: map[string]any{
			"rows_before": before,
			"rows_after":  after,
		},
		Critical: true,
	}
}

// NewPanicError reports a recovered panic from inside a stage.
func NewPanicError(stage string, recovered any) *PipelineError {
	return &PipelineError{
		Type:     ErrorTypePanic,
		Stage:    stage,
		Message:  fmt.Sprintf("stage panicked: %v", recovered),
		Critical: true,
	}
}

// NewBlockedError reports that the pipeline halted at the named stage.
func NewBlockedError(stage string) *PipelineError {
	return &PipelineError{
		Type:     ErrorTypeBlocked,
		Stage:    stage,
		Message:  "pipeline blocked by failed stage",
		Critical: true,
	}
}

// NewValidationError reports a configuration or input problem.
func NewValidationError(stage, message string) *PipelineError {
	return &PipelineError{
		Type:    ErrorTypeValidation,
		Stage:   stage,
		Message: message,
	}
}

// WrapError attaches stage context to an arbitrary error. A PipelineError
// passes through with its stage filled in.
func WrapError(err error, stage, message string) *PipelineError {
	if err == nil {
		return nil
	}
	if pErr, ok := err.(*PipelineError); ok {
		if pErr.Stage == "" {
			pErr.Stage = stage
		}
		if message != "" {
			pErr.Message = fmt.Sprintf("%s: %s", message, pErr.Message)
		}
		return pErr
	}
	return &PipelineError{
		Type:    ErrorTypeExecution,
		Stage:   stage,
		Message: message,
		Cause:   err,
	}
}

// IsCritical reports whether an error should halt the run.
func IsCritical(err error) bool {
	var pErr *PipelineError
	if errors.As(err, &pErr) {
		return pErr.Critical
	}
	return false
}

// GetErrorType returns the error's classification, defaulting to execution
// for foreign errors.
func GetErrorType(err error) ErrorType {
	if err == nil {
		return ""
	}
	var pErr *PipelineError
	if errors.As(err, &pErr) {
		return pErr.Type
	}
	return ErrorTypeExecution
}
