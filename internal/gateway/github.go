// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"

	"github.com/whatsup-github/whatsup/internal/domain"
	"github.com/whatsup-github/whatsup/internal/errs"
)

// pageSize is the page size requested from every list endpoint.
const pageSize = 100

// Enumerator resolves run targets into repository handles.
type Enumerator interface {
	ListOrgRepos(ctx context.Context, org string, includePrivate bool) ([]domain.Repo, error)
	GetRepo(ctx context.Context, owner, name string) (domain.Repo, error)
}

// MetricsReader defines the independent per-repository reads the metrics
// collector issues. It is the full capability surface a collector needs.
type MetricsReader interface {
	HasFile(ctx context.Context, repo domain.Repo, path string) bool
	CountOpenPulls(ctx context.Context, repo domain.Repo) (int, error)
	CountCommits(ctx context.Context, repo domain.Repo) (int, error)
	ListContributors(ctx context.Context, repo domain.Repo) ([]string, error)
	ListOpenIssues(ctx context.Context, repo domain.Repo) ([]domain.Issue, error)
	LatestCommit(ctx context.Context, repo domain.Repo) (domain.Commit, error)
}

// EventReader defines the enumerations the event-log extractor walks.
type EventReader interface {
	ListCommits(ctx context.Context, repo domain.Repo) ([]domain.Commit, error)
	ListOpenIssues(ctx context.Context, repo domain.Repo) ([]domain.Issue, error)
	ListIssueComments(ctx context.Context, repo domain.Repo, number int) ([]domain.Comment, error)
	ListContributors(ctx context.Context, repo domain.Repo) ([]string, error)
}

// GitHubGateway is the concrete implementation of the Enumerator,
// MetricsReader and EventReader interfaces.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	logger        *log.Logger
}

var (
	_ Enumerator    = (*GitHubGateway)(nil)
	_ MetricsReader = (*GitHubGateway)(nil)
	_ EventReader   = (*GitHubGateway)(nil)
)

// commitCountQuery reads the platform's aggregate commit counter for the
// default branch. Repositories without a default branch report zero.
type commitCountQuery struct {
	Repository struct {
		DefaultBranchRef *struct {
			Target struct {
				Commit struct {
					History struct {
						TotalCount githubv4.Int
					}
				} `graphql:"... on Commit"`
			}
		}
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
func NewGitHubGateway(token string, logger *log.Logger) (*GitHubGateway, error) {
	httpClient, err := newHTTPClient(token)
	if err != nil {
		return nil, err
	}
	return &GitHubGateway{
		restClient:    github.NewClient(httpClient),
		graphqlClient: githubv4.NewClient(httpClient),
		logger:        logger,
	}, nil
}

// NewEnterpriseGateway creates a gateway that talks to a GitHub Enterprise
// instance instead of github.com. baseURL is the root URL of the instance;
// the REST and GraphQL endpoints are derived from it.
func NewEnterpriseGateway(baseURL, token string, logger *log.Logger) (*GitHubGateway, error) {
	httpClient, err := newHTTPClient(token)
	if err != nil {
		return nil, err
	}
	restClient, err := github.NewClient(httpClient).WithEnterpriseURLs(baseURL, baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to derive enterprise endpoints from %s: %w", baseURL, err)
	}
	graphqlEndpoint := strings.TrimSuffix(baseURL, "/") + "/api/graphql"
	return &GitHubGateway{
		restClient:    restClient,
		graphqlClient: githubv4.NewEnterpriseClient(graphqlEndpoint, httpClient),
		logger:        logger,
	}, nil
}

// newHTTPClient stacks the token source on top of the secondary-rate-limit
// waiter, so every request of both clients authenticates and backs off the
// same way.
func newHTTPClient(token string) (*http.Client, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}, nil
}

// ListOrgRepos returns every repository of the organization, restricted to
// public repositories unless includePrivate is set. All pages are walked
// before returning, so callers see the platform's enumeration order as one
// materialized slice.
func (g *GitHubGateway) ListOrgRepos(ctx context.Context, org string, includePrivate bool) ([]domain.Repo, error) {
	visibility := "public"
	if includePrivate {
		visibility = "all"
	}
	opts := &github.RepositoryListByOrgOptions{
		Type:        visibility,
		ListOptions: github.ListOptions{PerPage: pageSize},
	}
	var repos []domain.Repo
	for {
		page, resp, err := g.restClient.Repositories.ListByOrg(ctx, org, opts)
		if err != nil {
			return nil, g.wrap(err, "failed to list repositories of %s", org)
		}
		for _, r := range page {
			repos = append(repos, toRepo(r))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
		g.logger.Println("  Fetching next page of repositories...")
	}
	g.logger.Printf("Enumerated %d repositories in %s\n", len(repos), org)
	return repos, nil
}

// GetRepo fetches the handle of a single repository.
func (g *GitHubGateway) GetRepo(ctx context.Context, owner, name string) (domain.Repo, error) {
	r, _, err := g.restClient.Repositories.Get(ctx, owner, name)
	if err != nil {
		return domain.Repo{}, g.wrap(err, "failed to fetch repository %s/%s", owner, name)
	}
	return toRepo(r), nil
}

// HasFile reports whether path exists in the repository. Every fetch
// failure folds into false: a false result means presence could not be
// confirmed, not that the file is guaranteed absent.
func (g *GitHubGateway) HasFile(ctx context.Context, repo domain.Repo, path string) bool {
	_, _, _, err := g.restClient.Repositories.GetContents(ctx, repo.Owner, repo.Name, path, nil)
	if err != nil {
		g.logger.Printf("Presence check for %s in %s failed: %v\n", path, repo.FullName(), err)
		return false
	}
	return true
}

// CountOpenPulls counts the open pull requests of the repository.
func (g *GitHubGateway) CountOpenPulls(ctx context.Context, repo domain.Repo) (int, error) {
	opts := &github.PullRequestListOptions{
		State:       "open",
		ListOptions: github.ListOptions{PerPage: pageSize},
	}
	count := 0
	for {
		pulls, resp, err := g.restClient.PullRequests.List(ctx, repo.Owner, repo.Name, opts)
		if err != nil {
			return 0, g.wrap(err, "failed to list open pull requests of %s", repo.FullName())
		}
		count += len(pulls)
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return count, nil
}

// CountCommits returns the total number of commits on the default branch,
// read from the platform's aggregate counter via GraphQL rather than by
// enumerating the commit list.
func (g *GitHubGateway) CountCommits(ctx context.Context, repo domain.Repo) (int, error) {
	var q commitCountQuery
	variables := map[string]interface{}{
		"owner": githubv4.String(repo.Owner),
		"name":  githubv4.String(repo.Name),
	}
	if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
		return 0, g.wrap(err, "failed to count commits of %s", repo.FullName())
	}
	if q.Repository.DefaultBranchRef == nil {
		return 0, nil
	}
	return int(q.Repository.DefaultBranchRef.Target.Commit.History.TotalCount), nil
}

// ListContributors returns the logins of the repository's code
// contributors in the platform's ranking order.
func (g *GitHubGateway) ListContributors(ctx context.Context, repo domain.Repo) ([]string, error) {
	opts := &github.ListContributorsOptions{
		ListOptions: github.ListOptions{PerPage: pageSize},
	}
	var logins []string
	for {
		contributors, resp, err := g.restClient.Repositories.ListContributors(ctx, repo.Owner, repo.Name, opts)
		if err != nil {
			return nil, g.wrap(err, "failed to list contributors of %s", repo.FullName())
		}
		for _, c := range contributors {
			logins = append(logins, c.GetLogin())
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return logins, nil
}

// ListOpenIssues enumerates the open issues of the repository in platform
// order. The endpoint also reports open pull requests as issues; callers
// inherit that behavior.
func (g *GitHubGateway) ListOpenIssues(ctx context.Context, repo domain.Repo) ([]domain.Issue, error) {
	opts := &github.IssueListByRepoOptions{
		State:       "open",
		ListOptions: github.ListOptions{PerPage: pageSize},
	}
	var issues []domain.Issue
	for {
		page, resp, err := g.restClient.Issues.ListByRepo(ctx, repo.Owner, repo.Name, opts)
		if err != nil {
			return nil, g.wrap(err, "failed to list issues of %s", repo.FullName())
		}
		for _, i := range page {
			issues = append(issues, domain.Issue{
				Number:    i.GetNumber(),
				User:      i.GetUser().GetLogin(),
				CreatedAt: i.GetCreatedAt().Time,
				UpdatedAt: i.GetUpdatedAt().Time,
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
		g.logger.Println("  Fetching next page of issues...")
	}
	return issues, nil
}

// LatestCommit returns the most recent commit of the default branch. A
// repository with no commits yields an error; the platform reports such
// repositories with HTTP 409, which go-github surfaces as an ErrorResponse.
func (g *GitHubGateway) LatestCommit(ctx context.Context, repo domain.Repo) (domain.Commit, error) {
	opts := &github.CommitsListOptions{
		ListOptions: github.ListOptions{PerPage: 1},
	}
	commits, _, err := g.restClient.Repositories.ListCommits(ctx, repo.Owner, repo.Name, opts)
	if err != nil {
		return domain.Commit{}, g.wrap(err, "failed to fetch latest commit of %s", repo.FullName())
	}
	if len(commits) == 0 {
		return domain.Commit{}, fmt.Errorf("repository %s has no commits", repo.FullName())
	}
	return toCommit(commits[0]), nil
}

// ListCommits enumerates every commit of the default branch in platform
// order, newest first.
func (g *GitHubGateway) ListCommits(ctx context.Context, repo domain.Repo) ([]domain.Commit, error) {
	opts := &github.CommitsListOptions{
		ListOptions: github.ListOptions{PerPage: pageSize},
	}
	var commits []domain.Commit
	for {
		page, resp, err := g.restClient.Repositories.ListCommits(ctx, repo.Owner, repo.Name, opts)
		if err != nil {
			return nil, g.wrap(err, "failed to list commits of %s", repo.FullName())
		}
		for _, rc := range page {
			commits = append(commits, toCommit(rc))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
		g.logger.Println("  Fetching next page of commits...")
	}
	return commits, nil
}

// ListIssueComments enumerates the comments of one issue in platform order.
func (g *GitHubGateway) ListIssueComments(ctx context.Context, repo domain.Repo, number int) ([]domain.Comment, error) {
	opts := &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: pageSize},
	}
	var comments []domain.Comment
	for {
		page, resp, err := g.restClient.Issues.ListComments(ctx, repo.Owner, repo.Name, number, opts)
		if err != nil {
			return nil, g.wrap(err, "failed to list comments of %s#%d", repo.FullName(), number)
		}
		for _, c := range page {
			comments = append(comments, domain.Comment{
				User:      c.GetUser().GetLogin(),
				CreatedAt: c.GetCreatedAt().Time,
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return comments, nil
}

func toRepo(r *github.Repository) domain.Repo {
	return domain.Repo{
		Owner:       r.GetOwner().GetLogin(),
		Name:        r.GetName(),
		Description: r.GetDescription(),
		URL:         r.GetHTMLURL(),
		OpenIssues:  r.GetOpenIssuesCount(),
	}
}

func toCommit(rc *github.RepositoryCommit) domain.Commit {
	return domain.Commit{
		SHA:         rc.GetSHA(),
		Author:      rc.GetAuthor().GetLogin(),
		AuthoredAt:  rc.GetCommit().GetAuthor().GetDate().Time,
		CommittedAt: rc.GetCommit().GetCommitter().GetDate().Time,
	}
}

// wrap attaches call context to an API error and classifies it onto the
// shared sentinels so the CLI can derive an exit code.
func (g *GitHubGateway) wrap(err error, format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, classify(err))...)
}

// classify maps the error types surfaced by the underlying clients onto
// the application's sentinel errors. Unrecognized errors pass through.
func classify(err error) error {
	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &rateErr) || errors.As(err, &abuseErr) {
		return fmt.Errorf("%v: %w", err, errs.ErrRateLimited)
	}

	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		switch respErr.Response.StatusCode {
		case http.StatusUnauthorized:
			return fmt.Errorf("%v: %w", err, errs.ErrInvalidToken)
		case http.StatusNotFound:
			return fmt.Errorf("%v: %w", err, errs.ErrNotFound)
		}
		return err
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%v: %w", err, errs.ErrNetwork)
	}

	// The GraphQL client reports missing repositories as a plain error
	// message rather than a typed response.
	if strings.Contains(err.Error(), "Could not resolve to a Repository") {
		return fmt.Errorf("%v: %w", err, errs.ErrNotFound)
	}
	return err
}
