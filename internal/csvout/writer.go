// Package csvout writes run results as CSV tables with a fixed schema per
// mode. Every table carries a header row and a leading integer row-index
// column whose header cell is empty.
package csvout

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/whatsup-github/whatsup/internal/domain"
)

// Output filenames per mode. In --all mode the event log of each repository
// is named after the repository instead of EventsFile.
const (
	MetricsFile      = "repos.csv"
	EventsFile       = "repo.csv"
	ContributorsFile = "contributors.csv"
)

// listSeparator joins multi-valued cells: contributor logins and channel tags.
const listSeparator = ";"

var (
	metricsHeader      = []string{"", "name", "description", "url", "license", "readme", "issues", "pulls", "commits", "contributors", "days_since_last_issue", "days_since_last_commit"}
	eventsHeader       = []string{"", "user", "date", "kind"}
	contributorsHeader = []string{"", "user", "channels"}
)

// WriteMetrics writes the metrics table to w, one row per repository in
// table order.
func WriteMetrics(w io.Writer, table domain.MetricsTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(metricsHeader); err != nil {
		return fmt.Errorf("failed to write metrics header: %w", err)
	}
	for i, row := range table {
		record := []string{
			strconv.Itoa(i),
			row.Name,
			row.Description,
			row.URL,
			strconv.FormatBool(row.HasLicense),
			strconv.FormatBool(row.HasReadme),
			strconv.Itoa(row.OpenIssues),
			strconv.Itoa(row.OpenPulls),
			strconv.Itoa(row.Commits),
			strings.Join(row.Contributors, listSeparator),
			row.DaysSinceLastIssue.String(),
			strconv.Itoa(row.DaysSinceLastCommit),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write metrics row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteEvents writes the event log to w in table order. Timestamps render
// as RFC 3339 UTC.
func WriteEvents(w io.Writer, events domain.EventTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(eventsHeader); err != nil {
		return fmt.Errorf("failed to write events header: %w", err)
	}
	for i, event := range events {
		record := []string{
			strconv.Itoa(i),
			event.User,
			event.Timestamp.UTC().Format(time.RFC3339),
			string(event.Kind),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write event row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteContributors writes the user-to-channels classification to w. Users
// and channel tags are sorted so the output is deterministic; the channel
// set itself carries no order.
func WriteContributors(w io.Writer, byUser map[string]domain.ChannelSet) error {
	users := make([]string, 0, len(byUser))
	for user := range byUser {
		users = append(users, user)
	}
	sort.Strings(users)

	cw := csv.NewWriter(w)
	if err := cw.Write(contributorsHeader); err != nil {
		return fmt.Errorf("failed to write contributors header: %w", err)
	}
	for i, user := range users {
		channels := make([]string, 0, len(byUser[user]))
		for channel := range byUser[user] {
			channels = append(channels, string(channel))
		}
		sort.Strings(channels)
		record := []string{strconv.Itoa(i), user, strings.Join(channels, listSeparator)}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write contributors row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteMetricsFile writes the metrics table to the file at path, replacing
// any previous run's output.
func WriteMetricsFile(path string, table domain.MetricsTable) error {
	return toFile(path, func(w io.Writer) error { return WriteMetrics(w, table) })
}

// WriteEventsFile writes the event log to the file at path, replacing any
// previous run's output.
func WriteEventsFile(path string, events domain.EventTable) error {
	return toFile(path, func(w io.Writer) error { return WriteEvents(w, events) })
}

// WriteContributorsFile writes the contributor classification to the file
// at path, replacing any previous run's output.
func WriteContributorsFile(path string, byUser map[string]domain.ChannelSet) error {
	return toFile(path, func(w io.Writer) error { return WriteContributors(w, byUser) })
}

func toFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}
