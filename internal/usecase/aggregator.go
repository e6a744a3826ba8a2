package usecase

import (
	"context"
	"log"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/whatsup-github/whatsup/internal/domain"
)

// RowCollector abstracts the per-repository collection step so the fan-out
// can be exercised without a live gateway.
type RowCollector interface {
	Collect(ctx context.Context, repo domain.Repo) (domain.MetricsRow, error)
}

// Progress observes fan-out completions. It is an observational side
// channel only: the aggregation result never depends on it.
type Progress func(done, total int, repoName string)

// Aggregator is the use case for building the metrics table. It fans the
// collector out across repositories and reassembles the rows in input
// order.
type Aggregator struct {
	collector   RowCollector
	concurrency int
	progress    Progress
	logger      *log.Logger
}

// NewAggregator creates an Aggregator running at most concurrency
// collections at once. progress may be nil.
func NewAggregator(collector RowCollector, concurrency int, progress Progress, logger *log.Logger) *Aggregator {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Aggregator{
		collector:   collector,
		concurrency: concurrency,
		progress:    progress,
		logger:      logger,
	}
}

// Aggregate collects every repository concurrently. rows[i] always holds
// the row of repos[i] no matter which collection finishes first. The batch
// is all-or-nothing: the first failed collection cancels the in-flight
// ones and fails the whole table.
func (a *Aggregator) Aggregate(ctx context.Context, repos []domain.Repo) (domain.MetricsTable, error) {
	a.logger.Printf("Collecting metrics for %d repositories...\n", len(repos))

	rows := make(domain.MetricsTable, len(repos))
	var done atomic.Int64

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(a.concurrency)
	for i, repo := range repos {
		i, repo := i, repo
		eg.Go(func() error {
			row, err := a.collector.Collect(egCtx, repo)
			if err != nil {
				return err
			}
			rows[i] = row
			if a.progress != nil {
				a.progress(int(done.Add(1)), len(repos), repo.Name)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	a.logger.Println("All repositories collected.")
	return rows, nil
}
