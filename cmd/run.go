package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/whatsup-github/whatsup/internal/config"
	"github.com/whatsup-github/whatsup/internal/csvout"
	"github.com/whatsup-github/whatsup/internal/domain"
	"github.com/whatsup-github/whatsup/internal/gateway"
	"github.com/whatsup-github/whatsup/internal/usecase"
)

// metricsAggregator and eventExtractor are the slices of the usecase layer
// the run functions need; tests substitute them.
type metricsAggregator interface {
	Aggregate(ctx context.Context, repos []domain.Repo) (domain.MetricsTable, error)
}

type eventExtractor interface {
	Events(ctx context.Context, repo domain.Repo) (domain.EventTable, error)
	AllContributors(ctx context.Context, repo domain.Repo, incNonCode bool) (map[string]domain.ChannelSet, error)
}

// app bundles the collaborators of one run.
type app struct {
	cfg        config.Config
	enumerator gateway.Enumerator
	aggregator metricsAggregator
	extractor  eventExtractor
	logger     *log.Logger
	stderr     io.Writer
}

func run(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	gw, err := newGateway(cfg, logger)
	if err != nil {
		return err
	}

	collector := usecase.NewCollector(gw, cfg.License, cfg.Readme, logger)
	a := &app{
		cfg:        cfg,
		enumerator: gw,
		aggregator: usecase.NewAggregator(collector, cfg.Concurrency, progressPrinter(os.Stderr), logger),
		extractor:  usecase.NewExtractor(gw, logger),
		logger:     logger,
		stderr:     os.Stderr,
	}
	return a.run(cmd.Context())
}

// loadConfig assembles the run configuration from the parsed flags and the
// environment, and builds the logger the verbose flag selects.
func loadConfig(cmd *cobra.Command) (config.Config, *log.Logger, error) {
	cfg := config.Default()
	cfg.Org, _ = cmd.Flags().GetString("org")
	cfg.IncludePrivate, _ = cmd.Flags().GetBool("private")
	cfg.Repo, _ = cmd.Flags().GetString("repo")
	cfg.AllRepos, _ = cmd.Flags().GetBool("all")
	cfg.Contributors, _ = cmd.Flags().GetBool("contributors")
	cfg.IncNonCode, _ = cmd.Flags().GetBool("inc-non-code")
	cfg.OutFolder, _ = cmd.Flags().GetString("out_folder")
	cfg.Concurrency, _ = cmd.Flags().GetInt("concurrency")

	logger := log.New(io.Discard, "", log.LstdFlags) // Default: discard all logs.
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logger.SetOutput(os.Stderr) // If verbose, log to standard error.
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, err
	}
	if err := cfg.LoadEnv(); err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

// newGateway targets github.com unless the environment overrides the API
// endpoint with a GitHub Enterprise instance.
func newGateway(cfg config.Config, logger *log.Logger) (*gateway.GitHubGateway, error) {
	if cfg.APIBaseURL != "" {
		return gateway.NewEnterpriseGateway(cfg.APIBaseURL, cfg.Token, logger)
	}
	return gateway.NewGitHubGateway(cfg.Token, logger)
}

// progressPrinter reports fan-out completions to w, one line per collected
// repository. The aggregation result never depends on it.
func progressPrinter(w io.Writer) usecase.Progress {
	return func(done, total int, repoName string) {
		fmt.Fprintf(w, "[%d/%d] %s\n", done, total, repoName)
	}
}

func (a *app) run(ctx context.Context) error {
	if err := os.MkdirAll(a.cfg.OutFolder, 0o755); err != nil {
		return fmt.Errorf("failed to create output folder %s: %w", a.cfg.OutFolder, err)
	}

	switch a.cfg.Mode() {
	case config.ModeContributors:
		return a.runContributors(ctx)
	case config.ModeRepoEvents:
		return a.runRepoEvents(ctx)
	case config.ModeAllEvents:
		return a.runAllEvents(ctx)
	default:
		return a.runMetrics(ctx)
	}
}

// runMetrics is the default mode: one metrics row per organization
// repository, written to repos.csv in enumeration order.
func (a *app) runMetrics(ctx context.Context) error {
	repos, err := a.enumerator.ListOrgRepos(ctx, a.cfg.Org, a.cfg.IncludePrivate)
	if err != nil {
		return err
	}

	table, err := a.aggregator.Aggregate(ctx, repos)
	if err != nil {
		return err
	}

	path := filepath.Join(a.cfg.OutFolder, csvout.MetricsFile)
	if err := csvout.WriteMetricsFile(path, table); err != nil {
		return err
	}

	summary := usecase.Summarize(table)
	fmt.Fprintf(a.stderr, "Wrote %s: %d repositories, %d open issues, %d open pulls\n",
		path, summary.Repos, summary.OpenIssues, summary.OpenPulls)
	if summary.Repos > 0 {
		fmt.Fprintf(a.stderr, "Days since last commit: mean %.1f, median %.1f, max %.0f\n",
			summary.MeanStalenessDays, summary.MedianStalenessDays, summary.MaxStalenessDays)
	}
	return nil
}

// runRepoEvents extracts the event log of the --repo repository into
// repo.csv.
func (a *app) runRepoEvents(ctx context.Context) error {
	repo, err := a.resolveRepo(ctx)
	if err != nil {
		return err
	}

	events, err := a.extractor.Events(ctx, repo)
	if err != nil {
		return err
	}

	path := filepath.Join(a.cfg.OutFolder, csvout.EventsFile)
	if err := csvout.WriteEventsFile(path, events); err != nil {
		return err
	}
	fmt.Fprintf(a.stderr, "Wrote %s: %d events\n", path, len(events))
	return nil
}

// runAllEvents extracts one event log per organization repository. A
// repository whose output file already exists is skipped, so an interrupted
// run resumes where it stopped.
func (a *app) runAllEvents(ctx context.Context) error {
	repos, err := a.enumerator.ListOrgRepos(ctx, a.cfg.Org, a.cfg.IncludePrivate)
	if err != nil {
		return err
	}

	for _, repo := range repos {
		path := filepath.Join(a.cfg.OutFolder, repo.Name+".csv")
		if _, err := os.Stat(path); err == nil {
			fmt.Fprintf(a.stderr, "Skipping %s: %s already exists\n", repo.FullName(), path)
			continue
		}

		events, err := a.extractor.Events(ctx, repo)
		if err != nil {
			return err
		}
		if err := csvout.WriteEventsFile(path, events); err != nil {
			return err
		}
		fmt.Fprintf(a.stderr, "Wrote %s: %d events\n", path, len(events))
	}
	return nil
}

// runContributors classifies the contributors of the --repo repository by
// channel into contributors.csv.
func (a *app) runContributors(ctx context.Context) error {
	repo, err := a.resolveRepo(ctx)
	if err != nil {
		return err
	}

	byUser, err := a.extractor.AllContributors(ctx, repo, a.cfg.IncNonCode)
	if err != nil {
		return err
	}

	path := filepath.Join(a.cfg.OutFolder, csvout.ContributorsFile)
	if err := csvout.WriteContributorsFile(path, byUser); err != nil {
		return err
	}
	fmt.Fprintf(a.stderr, "Wrote %s: %d contributors\n", path, len(byUser))
	return nil
}

func (a *app) resolveRepo(ctx context.Context) (domain.Repo, error) {
	owner, name, err := config.SplitRepo(a.cfg.Repo)
	if err != nil {
		return domain.Repo{}, err
	}
	return a.enumerator.GetRepo(ctx, owner, name)
}
