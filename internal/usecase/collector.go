// Package usecase contains the business logic of the application: metric
// collection, the concurrent fan-out over repositories, and event-log
// extraction.
package usecase

import (
	"context"
	"log"
	"time"

	"github.com/whatsup-github/whatsup/internal/domain"
	"github.com/whatsup-github/whatsup/internal/gateway"
)

// Collector produces one MetricsRow per repository by issuing a bounded
// set of independent reads against the hosting platform.
type Collector struct {
	reader  gateway.MetricsReader
	license string
	readme  string
	logger  *log.Logger
	now     func() time.Time
}

// NewCollector creates a Collector that checks for the given license and
// readme filenames.
func NewCollector(reader gateway.MetricsReader, license, readme string, logger *log.Logger) *Collector {
	return &Collector{
		reader:  reader,
		license: license,
		readme:  readme,
		logger:  logger,
		now:     time.Now,
	}
}

// Collect builds the full metrics row for one repository. Only the
// days-since-last-issue value may degrade (to the undefined count, when the
// repository has no issues); any other failed read aborts the whole row.
func (c *Collector) Collect(ctx context.Context, repo domain.Repo) (domain.MetricsRow, error) {
	row := domain.MetricsRow{
		Name:        repo.Name,
		Description: repo.Description,
		URL:         repo.URL,
		OpenIssues:  repo.OpenIssues,
	}

	row.HasLicense = c.reader.HasFile(ctx, repo, c.license)
	row.HasReadme = c.reader.HasFile(ctx, repo, c.readme)

	pulls, err := c.reader.CountOpenPulls(ctx, repo)
	if err != nil {
		return domain.MetricsRow{}, err
	}
	row.OpenPulls = pulls

	commits, err := c.reader.CountCommits(ctx, repo)
	if err != nil {
		return domain.MetricsRow{}, err
	}
	row.Commits = commits

	contributors, err := c.reader.ListContributors(ctx, repo)
	if err != nil {
		return domain.MetricsRow{}, err
	}
	row.Contributors = contributors

	issues, err := c.reader.ListOpenIssues(ctx, repo)
	if err != nil {
		return domain.MetricsRow{}, err
	}
	row.DaysSinceLastIssue = c.daysSinceLastIssue(issues)

	latest, err := c.reader.LatestCommit(ctx, repo)
	if err != nil {
		return domain.MetricsRow{}, err
	}
	row.DaysSinceLastCommit = daysSince(c.now(), latest.CommittedAt)

	c.logger.Printf("Collected metrics for %s\n", repo.FullName())
	return row, nil
}

// daysSinceLastIssue takes the most recent update across the open issues.
// A repository with no issues has no maximum to take; the value degrades
// to the undefined count instead of failing the row.
func (c *Collector) daysSinceLastIssue(issues []domain.Issue) domain.DayCount {
	if len(issues) == 0 {
		return domain.DayCount{}
	}
	latest := issues[0].UpdatedAt
	for _, issue := range issues[1:] {
		if issue.UpdatedAt.After(latest) {
			latest = issue.UpdatedAt
		}
	}
	return domain.Days(daysSince(c.now(), latest))
}

// daysSince counts the whole days elapsed from t to now, clamped at zero
// so clock skew never yields a negative age.
func daysSince(now, t time.Time) int {
	days := int(now.Sub(t).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return days
}
