package pipeline

import (
	"strings"
	"unicode"

	"dqcli/internal/audit"
	"dqcli/internal/dataset"
)

// nullTokens are the text spellings standardized to true null.
var nullTokens = map[string]bool{
	"":     true,
	"nan":  true,
	"none": true,
	"null": true,
	"n/a":  true,
}

// CleanDataStage normalizes text columns: trims surrounding whitespace,
// applies the configured case policy uniformly to all text columns, and
// standardizes null-like tokens to true null. Applying the stage twice
// yields the same table as applying it once.
type CleanDataStage struct {
	BaseStage
}

// NewCleanDataStage creates the clean_data stage.
func NewCleanDataStage(log *audit.Log) *CleanDataStage {
	return &CleanDataStage{BaseStage: NewBaseStage(StageIDCleanData, log)}
}

// Execute normalizes every text column in place on the working copy.
func (s *CleanDataStage) Execute(tbl *dataset.Table, opts Options) (*dataset.Table, Outcome, error) {
	caseMode := opts.CaseMode()
	outcome := OutcomePass

	for _, col := range tbl.Columns() {
		if col.Kind() != dataset.KindText {
			continue
		}
		trimmed, cased, nulled := 0, 0, 0
		for i, v := range col.Cells {
			if v.Kind() != dataset.KindText {
				continue
			}
			text := v.Text()
			next := strings.TrimSpace(text)
			if next != text {
				trimmed++
			}
			if normalized := applyCase(next, caseMode); normalized != next {
				next = normalized
				cased++
			}
			if nullTokens[strings.ToLower(next)] {
				col.Cells[i] = dataset.Null()
				nulled++
				continue
			}
			if next != text {
				col.Cells[i] = dataset.Text(next)
			}
		}
		if trimmed+cased+nulled > 0 {
			outcome = OutcomeWarn
			s.Audit().LogMutation(s.Name(), "text_normalization", map[string]any{
				"column":  col.Name,
				"case":    caseMode,
				"trimmed": trimmed,
				"cased":   cased,
				"nulled":  nulled,
			})
		}
	}

	return tbl, outcome, nil
}

// applyCase applies the configured case policy to a string.
func applyCase(s, mode string) string {
	switch mode {
	case CaseUpper:
		return strings.ToUpper(s)
	case CaseLower:
		return strings.ToLower(s)
	case CaseTitle:
		return titleCase(s)
	default:
		return s
	}
}

// titleCase upper-cases the first letter of each space-separated word and
// lower-cases the rest.
func titleCase(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	startOfWord := true
	for _, r := range s {
		if unicode.IsSpace(r) {
			startOfWord = true
			sb.WriteRune(r)
			continue
		}
		if startOfWord {
			sb.WriteRune(unicode.ToUpper(r))
			startOfWord = false
		} else {
			sb.WriteRune(unicode.ToLower(r))
		}
	}
	return sb.String()
}
