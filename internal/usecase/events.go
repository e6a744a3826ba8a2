package usecase

import (
	"context"
	"log"

	"github.com/whatsup-github/whatsup/internal/domain"
	"github.com/whatsup-github/whatsup/internal/gateway"
)

// Extractor is the use case for walking one repository's activity: its
// commits, open issues and issue comments.
type Extractor struct {
	reader gateway.EventReader
	logger *log.Logger
}

// NewExtractor creates a new Extractor instance.
func NewExtractor(reader gateway.EventReader, logger *log.Logger) *Extractor {
	return &Extractor{
		reader: reader,
		logger: logger,
	}
}

// Events flattens the repository's activity into one event log: a commit
// pass first, then an issue pass that interleaves each issue with its
// comments, both in platform enumeration order. Commits whose author has
// no platform account are skipped and counted; any listing failure aborts
// the extraction.
func (e *Extractor) Events(ctx context.Context, repo domain.Repo) (domain.EventTable, error) {
	var events domain.EventTable

	commits, err := e.reader.ListCommits(ctx, repo)
	if err != nil {
		return nil, err
	}
	skipped := 0
	for _, commit := range commits {
		if commit.Author == "" {
			skipped++
			continue
		}
		events = append(events, domain.EventRecord{
			User:      commit.Author,
			Timestamp: commit.AuthoredAt,
			Kind:      domain.KindCommit,
		})
	}
	if skipped > 0 {
		e.logger.Printf("Skipped %d commits with unresolvable authors in %s\n", skipped, repo.FullName())
	}

	issues, err := e.reader.ListOpenIssues(ctx, repo)
	if err != nil {
		return nil, err
	}
	for _, issue := range issues {
		events = append(events, domain.EventRecord{
			User:      issue.User,
			Timestamp: issue.CreatedAt,
			Kind:      domain.KindIssue,
		})
		comments, err := e.reader.ListIssueComments(ctx, repo, issue.Number)
		if err != nil {
			return nil, err
		}
		for _, comment := range comments {
			events = append(events, domain.EventRecord{
				User:      comment.User,
				Timestamp: comment.CreatedAt,
				Kind:      domain.KindComment,
			})
		}
	}

	e.logger.Printf("Extracted %d events from %s\n", len(events), repo.FullName())
	return events, nil
}

// AllContributors maps each user to the set of channels their activity was
// observed in. Code contributors are always gathered; issue openers and
// commenters join only when incNonCode is set.
func (e *Extractor) AllContributors(ctx context.Context, repo domain.Repo, incNonCode bool) (map[string]domain.ChannelSet, error) {
	byUser := make(map[string]domain.ChannelSet)
	tag := func(user string, ch domain.Channel) {
		if user == "" {
			return
		}
		set, ok := byUser[user]
		if !ok {
			set = make(domain.ChannelSet)
			byUser[user] = set
		}
		set.Add(ch)
	}

	contributors, err := e.reader.ListContributors(ctx, repo)
	if err != nil {
		return nil, err
	}
	for _, login := range contributors {
		tag(login, domain.ChannelCode)
	}

	if !incNonCode {
		return byUser, nil
	}

	issues, err := e.reader.ListOpenIssues(ctx, repo)
	if err != nil {
		return nil, err
	}
	for _, issue := range issues {
		tag(issue.User, domain.ChannelIssues)
		comments, err := e.reader.ListIssueComments(ctx, repo, issue.Number)
		if err != nil {
			return nil, err
		}
		for _, comment := range comments {
			tag(comment.User, domain.ChannelComments)
		}
	}
	return byUser, nil
}
