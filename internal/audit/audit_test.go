package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogRecordsEntriesInOrder(t *testing.T) {
	log := NewLog()
	require.NotEmpty(t, log.SessionID())

	log.LogPipelineStart("run-1", 10, 3)
	log.LogStageStart("clean_data", 10, 3)
	log.LogMutation("clean_data", "text_normalization", map[string]any{"trimmed": 4})
	log.LogStageComplete("clean_data", 10, 3, "warn")
	log.LogPipelineComplete(10, 3, "completed", 92.5)

	trail := log.Trail()
	require.Len(t, trail, 5)
	assert.Equal(t, EventPipelineStart, trail[0].Event)
	assert.Equal(t, EventStageStart, trail[1].Event)
	assert.Equal(t, EventMutation, trail[2].Event)
	assert.Equal(t, EventStageComplete, trail[3].Event)
	assert.Equal(t, EventPipelineComplete, trail[4].Event)

	assert.Equal(t, "warn", trail[3].Outcome)
	assert.GreaterOrEqual(t, trail[3].DurationMS, 0.0)
}

func TestLogSeverities(t *testing.T) {
	log := NewLog()
	log.LogWarning("outliers", "values clipped")
	log.LogError("schema_check", "missing column", false)
	log.LogError("detect_types", "panic", true)

	trail := log.Trail()
	require.Len(t, trail, 3)
	assert.Equal(t, SeverityWarning, trail[0].Severity)
	assert.Equal(t, SeverityError, trail[1].Severity)
	assert.Equal(t, SeverityCritical, trail[2].Severity)
}

func TestLogEvictsOldestAtCapacity(t *testing.T) {
	log := NewLog(WithMaxEntries(3))
	log.LogWarning("s", "one")
	log.LogWarning("s", "two")
	log.LogWarning("s", "three")
	log.LogWarning("s", "four")

	trail := log.Trail()
	require.Len(t, trail, 3)
	assert.Equal(t, "two", trail[0].Message)
	assert.Equal(t, "four", trail[2].Message)
}

func TestTrailReturnsCopy(t *testing.T) {
	log := NewLog()
	log.LogWarning("s", "original")

	trail := log.Trail()
	trail[0].Message = "mutated"

	assert.Equal(t, "original", log.Trail()[0].Message)
}

func TestSummarize(t *testing.T) {
	log := NewLog()
	log.LogPipelineStart("run-9", 5, 2)
	log.LogStageStart("duplicates", 5, 2)
	log.LogMutation("duplicates", "drop_duplicates", map[string]any{"removed": 1})
	log.LogStageComplete("duplicates", 4, 2, "warn")
	log.LogError("outliers", "bad", true)

	s := log.Summarize()
	assert.Equal(t, log.SessionID(), s.SessionID)
	assert.Equal(t, "run-9", s.PipelineID)
	assert.Equal(t, 5, s.TotalEntries)
	assert.Equal(t, 1, s.StagesExecuted)
	assert.Equal(t, []string{"duplicates"}, s.StageNames)
	assert.Equal(t, 1, s.Mutations)
	assert.Equal(t, 1, s.Errors)
	assert.Equal(t, 1, s.CriticalErrors)
}

func TestSaveToFileWritesDocument(t *testing.T) {
	log := NewLog()
	log.LogPipelineStart("run-2", 1, 1)
	log.LogStageComplete("schema_check", 1, 1, "pass")

	path := filepath.Join(t.TempDir(), "audit", "trail.json")
	require.NoError(t, log.SaveToFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc struct {
		SessionID    string  `json:"session_id"`
		PipelineID   string  `json:"pipeline_id"`
		CreatedAt    string  `json:"created_at"`
		TotalEntries int     `json:"total_entries"`
		Entries      []Entry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, log.SessionID(), doc.SessionID)
	assert.Equal(t, "run-2", doc.PipelineID)
	assert.Equal(t, 2, doc.TotalEntries)
	require.Len(t, doc.Entries, 2)
	assert.Equal(t, EventStageComplete, doc.Entries[1].Event)
}
