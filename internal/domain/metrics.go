package domain

import "strconv"

// NotApplicable is how an undefined DayCount renders in the output table.
const NotApplicable = "N/A"

// DayCount is a whole-day count that may be undefined, such as the days
// since the last issue of a repository that has no issues. The zero value
// is the undefined count.
type DayCount struct {
	Days  int
	Valid bool
}

// Days returns a defined DayCount of n days.
func Days(n int) DayCount {
	return DayCount{Days: n, Valid: true}
}

// String renders the count, or the "N/A" sentinel when undefined.
func (d DayCount) String() string {
	if !d.Valid {
		return NotApplicable
	}
	return strconv.Itoa(d.Days)
}

// MetricsRow holds the activity metrics for a single repository.
// It is the core domain entity of this application. A row is either fully
// populated or discarded together with the error that interrupted its
// collection; the one exception is DaysSinceLastIssue, which degrades to
// the undefined count when the repository has no issues to take a maximum
// over.
type MetricsRow struct {
	Name                string
	Description         string
	URL                 string
	HasLicense          bool
	HasReadme           bool
	OpenIssues          int
	OpenPulls           int
	Commits             int
	Contributors        []string
	DaysSinceLastIssue  DayCount
	DaysSinceLastCommit int
}

// MetricsTable is an ordered sequence of rows. Row i always describes the
// i-th repository handed to the aggregator, regardless of the order the
// rows were collected in.
type MetricsTable []MetricsRow
