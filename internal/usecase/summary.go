package usecase

import (
	"github.com/montanaflynn/stats"

	"github.com/whatsup-github/whatsup/internal/domain"
)

// TableSummary condenses a metrics table into organization-level numbers
// for the run report. It never feeds back into the CSV output.
type TableSummary struct {
	Repos               int
	OpenIssues          int
	OpenPulls           int
	MeanStalenessDays   float64
	MedianStalenessDays float64
	MaxStalenessDays    float64
}

// Summarize computes aggregate statistics over the staleness column of the
// table. An empty table yields the zero summary.
func Summarize(table domain.MetricsTable) TableSummary {
	s := TableSummary{Repos: len(table)}
	if len(table) == 0 {
		return s
	}

	staleness := make([]float64, 0, len(table))
	for _, row := range table {
		s.OpenIssues += row.OpenIssues
		s.OpenPulls += row.OpenPulls
		staleness = append(staleness, float64(row.DaysSinceLastCommit))
	}

	// The stats functions only error on empty input, which is handled above.
	s.MeanStalenessDays, _ = stats.Mean(staleness)
	s.MedianStalenessDays, _ = stats.Median(staleness)
	s.MaxStalenessDays, _ = stats.Max(staleness)
	return s
}
