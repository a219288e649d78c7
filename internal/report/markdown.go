package report

import (
	"fmt"
	"strings"
)

// Markdown renders the report as a human-readable Markdown summary,
// suitable for dropping into a run log or a pull request.
func (r *Report) Markdown() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Quality Report\n\n")
	fmt.Fprintf(&sb, "**Score:** `%.1f`\n", r.QualityScore)
	fmt.Fprintf(&sb, "**Retention:** `%.2f%%`\n\n", r.Summary.RetentionRate)

	fmt.Fprintf(&sb, "## Metrics Comparison\n\n")
	fmt.Fprintf(&sb, "| Metric | Raw | Cleaned |\n")
	fmt.Fprintf(&sb, "| :--- | ---: | ---: |\n")
	fmt.Fprintf(&sb, "| Rows | %d | %d |\n", r.Statistics.Initial.Rows, r.Statistics.Final.Rows)
	fmt.Fprintf(&sb, "| Columns | %d | %d |\n", r.Statistics.Initial.Cols, r.Statistics.Final.Cols)
	fmt.Fprintf(&sb, "| Missing %% | %.2f | %.2f |\n", r.Statistics.Initial.MissingPct, r.Statistics.Final.MissingPct)
	fmt.Fprintf(&sb, "| Duplicates %% | %.2f | %.2f |\n\n", r.Statistics.Initial.DuplicatePct, r.Statistics.Final.DuplicatePct)

	fmt.Fprintf(&sb, "## Actions Taken\n\n")
	fmt.Fprintf(&sb, "- Stages executed: %d\n", r.Summary.StagesExecuted)
	fmt.Fprintf(&sb, "- Data mutations: %d\n", r.Summary.TotalMutations)
	fmt.Fprintf(&sb, "- Rows removed: %d\n", r.Summary.RowsRemoved)
	if r.Summary.Errors > 0 {
		fmt.Fprintf(&sb, "- Errors recorded: %d (%d critical)\n", r.Summary.Errors, r.Summary.CriticalErrors)
	}
	sb.WriteString("\n")

	if len(r.RemainingIssues) > 0 {
		fmt.Fprintf(&sb, "## Remaining Issues\n\n")
		for _, issue := range r.RemainingIssues {
			fmt.Fprintf(&sb, "- %s\n", issue)
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "## Recommendations\n\n")
	for _, rec := range r.Recommendations {
		fmt.Fprintf(&sb, "- %s\n", rec)
	}

	return sb.String()
}
