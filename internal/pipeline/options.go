package pipeline

// Stage identifiers, in canonical execution order.
const (
	StageIDSchemaCheck   = "schema_check"
	StageIDDetectTypes   = "detect_types"
	StageIDCleanData     = "clean_data"
	StageIDDuplicates    = "duplicates"
	StageIDMissingValues = "missing_values"
	StageIDOutliers      = "outliers"
)

// CanonicalOrder is the fixed stage execution order. Type detection must
// precede imputation (dtype selects the imputation strategy), duplicates are
// removed before missing-value handling so imputed statistics are not skewed,
// and outlier clipping runs last on a de-duplicated, imputed column.
var CanonicalOrder = []string{
	StageIDSchemaCheck,
	StageIDDetectTypes,
	StageIDCleanData,
	StageIDDuplicates,
	StageIDMissingValues,
	StageIDOutliers,
}

// Case normalization modes for the clean_data stage.
const (
	CaseNone  = "none"
	CaseUpper = "upper"
	CaseLower = "lower"
	CaseTitle = "title"
)

// Outlier bound-computation methods.
const (
	OutlierMethodIQR    = "iqr"
	OutlierMethodZScore = "zscore"
)

// DefaultMaxMissingRowPct is the row-drop threshold used when no threshold
// is configured.
const DefaultMaxMissingRowPct = 50.0

// StageSelection decides which stages run. The zero value selects every
// stage. List form runs only the listed stages; flag form runs every stage
// except those explicitly disabled.
type StageSelection struct {
	List  []string
	Flags map[string]bool
}

// Enabled reports whether the named stage should run under this selection.
func (s StageSelection) Enabled(name string) bool {
	if len(s.List) > 0 {
		for _, n := range s.List {
			if n == name {
				return true
			}
		}
		return false
	}
	if s.Flags != nil {
		if enabled, ok := s.Flags[name]; ok {
			return enabled
		}
	}
	return true
}

// Thresholds holds numeric stage parameters.
type Thresholds struct {
	MaxMissingRowPercentage float64
	OutlierMethod           string
}

// TextCleaning configures the clean_data stage.
type TextCleaning struct {
	Case string
}

// Cleaning groups cleaning-stage parameters.
type Cleaning struct {
	Text          TextCleaning
	DuplicateKeys []string
}

// Schema groups schema_check parameters.
type Schema struct {
	RequiredColumns []string
	Strict          bool
}

// Options is the immutable per-run configuration view handed to every
// stage. It is constructed once, fully resolved, before a run starts.
type Options struct {
	Stages                 StageSelection
	DestructiveRowDeletion bool
	RemoveDuplicates       bool
	Thresholds             Thresholds
	Cleaning               Cleaning
	Schema                 Schema
}

// DefaultOptions returns the options applied when a run supplies none:
// every stage enabled, no destructive row deletion, a 50% missing-row
// threshold, IQR outlier bounds, and no case normalization.
func DefaultOptions() Options {
	return Options{
		Thresholds: Thresholds{
			MaxMissingRowPercentage: DefaultMaxMissingRowPct,
			OutlierMethod:           OutlierMethodIQR,
		},
		Cleaning: Cleaning{
			Text: TextCleaning{Case: CaseNone},
		},
	}
}

// MaxMissingRowPct returns the configured row-drop threshold, falling back
// to the default when unset or out of range.
func (o Options) MaxMissingRowPct() float64 {
	pct := o.Thresholds.MaxMissingRowPercentage
	if pct <= 0 || pct > 100 {
		return DefaultMaxMissingRowPct
	}
	return pct
}

// OutlierMethod returns the configured bound method, defaulting to IQR.
func (o Options) OutlierMethod() string {
	if o.Thresholds.OutlierMethod == OutlierMethodZScore {
		return OutlierMethodZScore
	}
	return OutlierMethodIQR
}

// AllowsRowDeletion reports whether the named stage is authorized to change
// the row count. destructive_row_deletion authorizes every stage;
// remove_duplicates authorizes the duplicates stage specifically.
func (o Options) AllowsRowDeletion(stage string) bool {
	if o.DestructiveRowDeletion {
		return true
	}
	return stage == StageIDDuplicates && o.RemoveDuplicates
}

// CaseMode returns the configured case normalization mode, defaulting to
// none.
func (o Options) CaseMode() string {
	switch o.Cleaning.Text.Case {
	case CaseUpper, CaseLower, CaseTitle:
		return o.Cleaning.Text.Case
	default:
		return CaseNone
	}
}
