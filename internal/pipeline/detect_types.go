package pipeline

import (
	"strconv"
	"strings"
	"time"

	"dqcli/internal/audit"
	"dqcli/internal/dataset"
)

// Coercion confidence thresholds, measured over a column's non-null cells.
// Numeric conversion is permissive; boolean conversion demands near-total
// agreement so enumerations like "yes"/"no"/"maybe" stay textual.
const (
	numericConfidenceMin = 0.1
	booleanConfidenceMin = 0.8
)

// dateLayouts are tried in order when coercing text to datetimes.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	"01/02/2006",
	"02-01-2006",
	"2 January 2006",
	"Jan 2, 2006",
}

// boolTokens maps common boolean spellings to their value.
var boolTokens = map[string]bool{
	"true": true, "false": false,
	"yes": true, "no": false,
	"y": true, "n": false,
	"1": true, "0": false,
	"t": true, "f": false,
	"on": true, "off": false,
	"enabled": true, "disabled": false,
}

// DetectTypesStage attempts numeric, then datetime, then boolean coercion of
// text columns using best-effort parsing. A column is converted only when
// the coercion materially succeeds; cells that could not be parsed become
// null and their count is logged rather than silently swallowed. The stage
// is purely additive type inference and never fails.
type DetectTypesStage struct {
	BaseStage
}

// NewDetectTypesStage creates the detect_types stage.
func NewDetectTypesStage(log *audit.Log) *DetectTypesStage {
	return &DetectTypesStage{BaseStage: NewBaseStage(StageIDDetectTypes, log)}
}

// Execute scans every text column and converts the ones whose cells parse
// with sufficient confidence.
func (s *DetectTypesStage) Execute(tbl *dataset.Table, opts Options) (*dataset.Table, Outcome, error) {
	outcome := OutcomePass

	for _, col := range tbl.Columns() {
		if col.Kind() != dataset.KindText {
			continue
		}

		if cells, parsed, failed, ok := coerceNumeric(col.Cells); ok {
			if err := tbl.ReplaceColumn(col.Name, cells); err != nil {
				return nil, OutcomeFail, err
			}
			outcome = OutcomeWarn
			s.Audit().LogMutation(s.Name(), "numeric_conversion", map[string]any{
				"column":       col.Name,
				"parsed_count": parsed,
				"failed_count": failed,
			})
			continue
		}

		if cells, parsed, failed, layout, ok := coerceDatetime(col.Cells); ok {
			if err := tbl.ReplaceColumn(col.Name, cells); err != nil {
				return nil, OutcomeFail, err
			}
			outcome = OutcomeWarn
			s.Audit().LogMutation(s.Name(), "datetime_conversion", map[string]any{
				"column":          col.Name,
				"parsed_count":    parsed,
				"failed_count":    failed,
				"detected_format": layout,
			})
			continue
		}

		if cells, parsed, ok := coerceBoolean(col.Cells); ok {
			if err := tbl.ReplaceColumn(col.Name, cells); err != nil {
				return nil, OutcomeFail, err
			}
			outcome = OutcomeWarn
			s.Audit().LogMutation(s.Name(), "boolean_conversion", map[string]any{
				"column":       col.Name,
				"parsed_count": parsed,
			})
		}
	}

	return tbl, outcome, nil
}

// parseNumericText parses a numeric string, tolerating thousands separators,
// currency symbols, and a trailing percent sign.
func parseNumericText(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimLeft(s, "$€£¥")
	s = strings.TrimSuffix(s, "%")
	s = strings.TrimSpace(s)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// coerceNumeric attempts a full-column numeric coercion. It reports ok when
// the share of non-null cells that parsed meets the numeric confidence
// threshold.
func coerceNumeric(cells []dataset.Value) (out []dataset.Value, parsed, failed int, ok bool) {
	out = make([]dataset.Value, len(cells))
	nonNull := 0
	for i, v := range cells {
		if v.IsNull() {
			out[i] = dataset.Null()
			continue
		}
		nonNull++
		if f, pok := parseNumericText(v.Text()); pok {
			out[i] = dataset.Number(f)
			parsed++
		} else {
			out[i] = dataset.Null()
			failed++
		}
	}
	if nonNull == 0 || parsed == 0 {
		return nil, 0, 0, false
	}
	if float64(parsed)/float64(nonNull) < numericConfidenceMin {
		return nil, 0, 0, false
	}
	return out, parsed, failed, true
}

// coerceDatetime attempts a full-column datetime coercion, trying each known
// layout and keeping the one that parses the most cells. A column converts
// when the coercion is not entirely null.
func coerceDatetime(cells []dataset.Value) (out []dataset.Value, parsed, failed int, layout string, ok bool) {
	best := -1
	for _, candidate := range dateLayouts {
		attempt := make([]dataset.Value, len(cells))
		n, fails := 0, 0
		for i, v := range cells {
			if v.IsNull() {
				attempt[i] = dataset.Null()
				continue
			}
			if t, err := time.Parse(candidate, strings.TrimSpace(v.Text())); err == nil {
				attempt[i] = dataset.Time(t)
				n++
			} else {
				attempt[i] = dataset.Null()
				fails++
			}
		}
		if n > best {
			best, out, parsed, failed, layout = n, attempt, n, fails, candidate
		}
	}
	if parsed == 0 {
		return nil, 0, 0, "", false
	}
	return out, parsed, failed, layout, true
}

// coerceBoolean attempts a full-column boolean coercion. Booleans demand a
// high confidence so categorical text is not misread.
func coerceBoolean(cells []dataset.Value) (out []dataset.Value, parsed int, ok bool) {
	out = make([]dataset.Value, len(cells))
	nonNull := 0
	for i, v := range cells {
		if v.IsNull() {
			out[i] = dataset.Null()
			continue
		}
		nonNull++
		if b, tok := boolTokens[strings.ToLower(strings.TrimSpace(v.Text()))]; tok {
			out[i] = dataset.Bool(b)
			parsed++
		} else {
			out[i] = dataset.Null()
		}
	}
	if nonNull == 0 || float64(parsed)/float64(nonNull) < booleanConfidenceMin {
		return nil, 0, false
	}
	return out, parsed, true
}
