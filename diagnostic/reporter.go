package diagnostic

import (
	"time"

	"github.com/google/uuid"
)

// Reporter aggregates reports across a batch of checks or mapping runs.
// Read-side only: it never alters the reports it collects.
type Reporter struct {
	reports []*Report
}

// NewReporter creates an empty reporter.
func NewReporter() *Reporter {
	return &Reporter{}
}

// Collect adds a report to the aggregation. Nil reports are ignored.
func (a *Reporter) Collect(reports ...*Report) {
	for _, r := range reports {
		if r != nil {
			a.reports = append(a.reports, r)
		}
	}
}

// Reports returns the collected reports in collection order.
func (a *Reporter) Reports() []*Report {
	return append([]*Report(nil), a.reports...)
}

// HasBlockingIssues returns true if any collected report contains at least
// one error diagnostic.
func (a *Reporter) HasBlockingIssues() bool {
	for _, r := range a.reports {
		if r.HasErrors() {
			return true
		}
	}

	return false
}

// CountBySeverity returns the total number of diagnostics with the given
// severity across all collected reports.
func (a *Reporter) CountBySeverity(s Severity) int {
	n := 0
	for _, r := range a.reports {
		n += r.Count(s)
	}

	return n
}

// CountByCode returns diagnostic totals keyed by code.
func (a *Reporter) CountByCode() map[Code]int {
	counts := map[Code]int{}
	for _, r := range a.reports {
		for _, d := range r.diags {
			counts[d.Code]++
		}
	}

	return counts
}

// Totals holds per-severity diagnostic counts.
type Totals struct {
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Infos    int `json:"infos"`
}

// Summary is the machine-readable aggregation record exported for external
// tooling (CI gates, lint runners). Serialization is stable: diagnostics
// appear in collection order, then emission order.
type Summary struct {
	RunID       string       `json:"run_id"`
	GeneratedAt time.Time    `json:"generated_at"`
	Reports     int          `json:"reports"`
	Totals      Totals       `json:"totals"`
	ByCode      map[Code]int `json:"by_code"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// Summarize produces a Summary over everything collected so far.
func (a *Reporter) Summarize() Summary {
	var diags []Diagnostic
	for _, r := range a.reports {
		diags = append(diags, r.diags...)
	}

	return Summary{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Reports:     len(a.reports),
		Totals: Totals{
			Errors:   a.CountBySeverity(SeverityError),
			Warnings: a.CountBySeverity(SeverityWarning),
			Infos:    a.CountBySeverity(SeverityInfo),
		},
		ByCode:      a.CountByCode(),
		Diagnostics: diags,
	}
}
