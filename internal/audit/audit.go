// Package audit provides the append-only audit trail recorded during one
// cleaning pipeline run. Every stage lifecycle event, data mutation, and
// error produces exactly one immutable entry; entries are never removed
// except under the optional bounded-retention policy for very long sessions.
package audit

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventKind identifies what an audit entry records.
type EventKind string

const (
	EventPipelineStart    EventKind = "pipeline_start"
	EventPipelineComplete EventKind = "pipeline_complete"
	EventStageStart       EventKind = "stage_start"
	EventStageComplete    EventKind = "stage_complete"
	EventMutation         EventKind = "mutation"
	EventError            EventKind = "error"
)

// Severity grades an entry. Only error entries carry SeverityError or
// SeverityCritical.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// Entry is one immutable audit record.
type Entry struct {
	Timestamp  time.Time      `json:"timestamp"`
	Event      EventKind      `json:"event"`
	Stage      string         `json:"stage,omitempty"`
	Severity   Severity       `json:"severity"`
	Message    string         `json:"message,omitempty"`
	Mutation   string         `json:"mutation_type,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	InputRows  int            `json:"input_rows,omitempty"`
	InputCols  int            `json:"input_cols,omitempty"`
	OutputRows int            `json:"output_rows,omitempty"`
	OutputCols int            `json:"output_cols,omitempty"`
	Outcome    string         `json:"outcome,omitempty"`
	DurationMS float64        `json:"duration_ms,omitempty"`
}

// Summary aggregates an audit trail.
type Summary struct {
	SessionID      string   `json:"session_id"`
	PipelineID     string   `json:"pipeline_id,omitempty"`
	TotalEntries   int      `json:"total_entries"`
	StagesExecuted int      `json:"stages_executed"`
	Mutations      int      `json:"mutations_logged"`
	Errors         int      `json:"errors_logged"`
	CriticalErrors int      `json:"critical_errors_logged"`
	StageNames     []string `json:"stage_names"`
	ElapsedSeconds float64  `json:"elapsed_seconds"`
}

// DefaultMaxEntries bounds a log's retention; oldest entries are evicted
// first once the bound is reached.
const DefaultMaxEntries = 10000

// Log is the append-only audit trail for a single pipeline run. It is safe
// for use by the engine and lifecycle of that run; independent runs must use
// independent logs.
type Log struct {
	mu         sync.RWMutex
	sessionID  string
	pipelineID string
	createdAt  time.Time
	maxEntries int
	entries    []Entry
	starts     map[string]time.Time
	slog       *slog.Logger
}

// Option configures a Log.
type Option func(*Log)

// WithMaxEntries overrides the retention bound. Zero or negative disables
// eviction entirely.
func WithMaxEntries(n int) Option {
	return func(l *Log) { l.maxEntries = n }
}

// WithLogger mirrors entries to the given structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Log) { l.slog = logger }
}

// NewLog creates an empty audit log with a fresh session identifier.
func NewLog(opts ...Option) *Log {
	l := &Log{
		sessionID:  uuid.NewString(),
		createdAt:  time.Now(),
		maxEntries: DefaultMaxEntries,
		starts:     make(map[string]time.Time),
		slog:       slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// SessionID returns the session identifier assigned at creation.
func (l *Log) SessionID() string {
	return l.sessionID
}

// LogPipelineStart records the beginning of a run.
func (l *Log) LogPipelineStart(pipelineID string, rows, cols int) {
	l.mu.Lock()
	l.pipelineID = pipelineID
	l.mu.Unlock()
	l.append(Entry{
		Event:     EventPipelineStart,
		Severity:  SeverityInfo,
		InputRows: rows,
		InputCols: cols,
	})
	l.slog.Info("pipeline_start",
		slog.String("pipeline_id", pipelineID),
		slog.Int("rows", rows),
		slog.Int("cols", cols))
}

// LogPipelineComplete records the end of a run with its final shape and
// quality score.
func (l *Log) LogPipelineComplete(rows, cols int, status string, score float64) {
	l.append(Entry{
		Event:      EventPipelineComplete,
		Severity:   SeverityInfo,
		OutputRows: rows,
		OutputCols: cols,
		Message:    status,
		Details:    map[string]any{"quality_score": score},
	})
	l.slog.Info("pipeline_complete",
		slog.String("status", status),
		slog.Float64("quality_score", score),
		slog.Int("rows", rows),
		slog.Int("cols", cols))
}

// LogStageStart records the start of a stage with its input shape.
func (l *Log) LogStageStart(stage string, rows, cols int) {
	l.mu.Lock()
	l.starts[stage] = time.Now()
	l.mu.Unlock()
	l.append(Entry{
		Event:     EventStageStart,
		Stage:     stage,
		Severity:  SeverityInfo,
		InputRows: rows,
		InputCols: cols,
	})
	l.slog.Debug("stage_start",
		slog.String("stage", stage),
		slog.Int("rows", rows),
		slog.Int("cols", cols))
}

// LogStageComplete records the completion of a stage with its output shape,
// outcome, and elapsed time since the matching LogStageStart.
func (l *Log) LogStageComplete(stage string, rows, cols int, outcome string) {
	var durationMS float64
	l.mu.Lock()
	if start, ok := l.starts[stage]; ok {
		durationMS = float64(time.Since(start).Microseconds()) / 1000
		delete(l.starts, stage)
	}
	l.mu.Unlock()
	l.append(Entry{
		Event:      EventStageComplete,
		Stage:      stage,
		Severity:   SeverityInfo,
		OutputRows: rows,
		OutputCols: cols,
		Outcome:    outcome,
		DurationMS: durationMS,
	})
	l.slog.Debug("stage_complete",
		slog.String("stage", stage),
		slog.String("outcome", outcome),
		slog.Float64("duration_ms", durationMS))
}

// LogMutation records a data mutation performed by a stage.
func (l *Log) LogMutation(stage, mutationType string, details map[string]any) {
	l.append(Entry{
		Event:    EventMutation,
		Stage:    stage,
		Severity: SeverityInfo,
		Mutation: mutationType,
		Details:  details,
	})
	l.slog.Info("stage_mutation",
		slog.String("stage", stage),
		slog.String("mutation_type", mutationType),
		slog.Any("details", details))
}

// LogWarning records a non-fatal finding as a mutation-kind entry with
// warning severity.
func (l *Log) LogWarning(stage, message string) {
	l.append(Entry{
		Event:    EventMutation,
		Stage:    stage,
		Severity: SeverityWarning,
		Message:  message,
	})
	l.slog.Warn("stage_warning",
		slog.String("stage", stage),
		slog.String("message", message))
}

// LogError records an error. Critical errors are the ones that halt the
// pipeline.
func (l *Log) LogError(stage, message string, critical bool) {
	sev := SeverityError
	if critical {
		sev = SeverityCritical
	}
	l.append(Entry{
		Event:    EventError,
		Stage:    stage,
		Severity: sev,
		Message:  message,
	})
	l.slog.Error("stage_error",
		slog.String("stage", stage),
		slog.String("severity", string(sev)),
		slog.String("message", message))
}

// append stamps and stores an entry, enforcing the retention bound.
func (l *Log) append(e Entry) {
	e.Timestamp = time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.maxEntries > 0 && len(l.entries) >= l.maxEntries {
		l.entries = l.entries[1:]
	}
	l.entries = append(l.entries, e)
}

// Trail returns a copy of the full ordered entry sequence.
func (l *Log) Trail() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of retained entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Summarize aggregates the trail into counts and elapsed time.
func (l *Log) Summarize() Summary {
	l.mu.RLock()
	defer l.mu.RUnlock()

	s := Summary{
		SessionID:    l.sessionID,
		PipelineID:   l.pipelineID,
		TotalEntries: len(l.entries),
	}
	var first, last time.Time
	for _, e := range l.entries {
		if first.IsZero() || e.Timestamp.Before(first) {
			first = e.Timestamp
		}
		if e.Timestamp.After(last) {
			last = e.Timestamp
		}
		switch e.Event {
		case EventStageComplete:
			s.StagesExecuted++
			s.StageNames = append(s.StageNames, e.Stage)
		case EventMutation:
			if e.Mutation != "" {
				s.Mutations++
			}
		case EventError:
			s.Errors++
			if e.Severity == SeverityCritical {
				s.CriticalErrors++
			}
		}
	}
	if !first.IsZero() {
		s.ElapsedSeconds = last.Sub(first).Seconds()
	}
	return s
}

// document is the serialized form written by SaveToFile.
type document struct {
	SessionID    string    `json:"session_id"`
	PipelineID   string    `json:"pipeline_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	TotalEntries int       `json:"total_entries"`
	Entries      []Entry   `json:"entries"`
}

// MarshalJSON serializes the full trail with its session metadata.
func (l *Log) MarshalJSON() ([]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return json.Marshal(document{
		SessionID:    l.sessionID,
		PipelineID:   l.pipelineID,
		CreatedAt:    l.createdAt,
		TotalEntries: len(l.entries),
		Entries:      l.entries,
	})
}

// SaveToFile persists the trail as an indented JSON document, creating
// parent directories as needed.
func (l *Log) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create audit directory: %w", err)
	}
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal audit log: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	l.slog.Info("audit_log_saved",
		slog.String("path", path),
		slog.Int("entries", l.Len()))
	return nil
}
