package pipeline

// Outcome is the tri-state result of one stage invocation. It is computed
// fresh on every run and never persisted.
type Outcome string

const (
	OutcomePass Outcome = "pass"
	OutcomeWarn Outcome = "warn"
	OutcomeFail Outcome = "fail"
)

// rank orders outcomes by severity for Worst.
func (o Outcome) rank() int {
	switch o {
	case OutcomeFail:
		return 2
	case OutcomeWarn:
		return 1
	default:
		return 0
	}
}

// Worst returns the more severe of two outcomes (fail > warn > pass).
func Worst(a, b Outcome) Outcome {
	if b.rank() > a.rank() {
		return b
	}
	return a
}

// String returns the outcome's wire form.
func (o Outcome) String() string {
	if o == "" {
		return string(OutcomePass)
	}
	return string(o)
}
