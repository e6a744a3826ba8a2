package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/whatsup-github/whatsup/internal/domain"
)

// mockEventReader is a mock implementation of the gateway.EventReader
// interface.
type mockEventReader struct {
	mock.Mock
}

func (m *mockEventReader) ListCommits(ctx context.Context, repo domain.Repo) ([]domain.Commit, error) {
	args := m.Called(ctx, repo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Commit), args.Error(1)
}

func (m *mockEventReader) ListOpenIssues(ctx context.Context, repo domain.Repo) ([]domain.Issue, error) {
	args := m.Called(ctx, repo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Issue), args.Error(1)
}

func (m *mockEventReader) ListIssueComments(ctx context.Context, repo domain.Repo, number int) ([]domain.Comment, error) {
	args := m.Called(ctx, repo, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Comment), args.Error(1)
}

func (m *mockEventReader) ListContributors(ctx context.Context, repo domain.Repo) ([]string, error) {
	args := m.Called(ctx, repo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func TestExtractor_Events(t *testing.T) {
	ctx := context.Background()
	repo := domain.Repo{Owner: "acme", Name: "widgets"}
	day := func(d int) time.Time {
		return time.Date(2026, 5, d, 12, 0, 0, 0, time.UTC)
	}

	t.Run("commit pass precedes the issue pass", func(t *testing.T) {
		reader := new(mockEventReader)
		reader.On("ListCommits", mock.Anything, repo).Return([]domain.Commit{
			{SHA: "c2", Author: "bob", AuthoredAt: day(9)},
			{SHA: "c1", Author: "alice", AuthoredAt: day(1)},
		}, nil)
		reader.On("ListOpenIssues", mock.Anything, repo).Return([]domain.Issue{
			{Number: 1, User: "carol", CreatedAt: day(3)},
			{Number: 2, User: "dave", CreatedAt: day(5)},
		}, nil)
		reader.On("ListIssueComments", mock.Anything, repo, 1).Return([]domain.Comment{
			{User: "erin", CreatedAt: day(4)},
			{User: "carol", CreatedAt: day(6)},
		}, nil)
		reader.On("ListIssueComments", mock.Anything, repo, 2).Return([]domain.Comment{}, nil)

		extractor := NewExtractor(reader, discardLogger())
		events, err := extractor.Events(ctx, repo)
		require.NoError(t, err)

		// Commits first in platform order, then each issue followed by its
		// own comments. No global timestamp sort: the day-9 commit stays
		// ahead of the day-3 issue.
		assert.Equal(t, domain.EventTable{
			{User: "bob", Timestamp: day(9), Kind: domain.KindCommit},
			{User: "alice", Timestamp: day(1), Kind: domain.KindCommit},
			{User: "carol", Timestamp: day(3), Kind: domain.KindIssue},
			{User: "erin", Timestamp: day(4), Kind: domain.KindComment},
			{User: "carol", Timestamp: day(6), Kind: domain.KindComment},
			{User: "dave", Timestamp: day(5), Kind: domain.KindIssue},
		}, events)
		reader.AssertExpectations(t)
	})

	t.Run("unresolvable commit authors are skipped, not fatal", func(t *testing.T) {
		reader := new(mockEventReader)
		reader.On("ListCommits", mock.Anything, repo).Return([]domain.Commit{
			{SHA: "c1", Author: "", AuthoredAt: day(1)},
			{SHA: "c2", Author: "", AuthoredAt: day(2)},
		}, nil)
		reader.On("ListOpenIssues", mock.Anything, repo).Return([]domain.Issue{
			{Number: 1, User: "carol", CreatedAt: day(3)},
		}, nil)
		reader.On("ListIssueComments", mock.Anything, repo, 1).Return([]domain.Comment{
			{User: "erin", CreatedAt: day(4)},
		}, nil)

		extractor := NewExtractor(reader, discardLogger())
		events, err := extractor.Events(ctx, repo)
		require.NoError(t, err)

		// Every commit was dropped, the issue pass still ran in full.
		assert.Equal(t, domain.EventTable{
			{User: "carol", Timestamp: day(3), Kind: domain.KindIssue},
			{User: "erin", Timestamp: day(4), Kind: domain.KindComment},
		}, events)
	})

	t.Run("repository without activity yields an empty log", func(t *testing.T) {
		reader := new(mockEventReader)
		reader.On("ListCommits", mock.Anything, repo).Return([]domain.Commit{}, nil)
		reader.On("ListOpenIssues", mock.Anything, repo).Return([]domain.Issue{}, nil)

		extractor := NewExtractor(reader, discardLogger())
		events, err := extractor.Events(ctx, repo)
		require.NoError(t, err)
		assert.Empty(t, events)
	})

	t.Run("commit listing failure aborts the extraction", func(t *testing.T) {
		boom := errors.New("github api error")
		reader := new(mockEventReader)
		reader.On("ListCommits", mock.Anything, repo).Return(nil, boom)

		extractor := NewExtractor(reader, discardLogger())
		events, err := extractor.Events(ctx, repo)
		assert.ErrorIs(t, err, boom)
		assert.Nil(t, events)
	})

	t.Run("comment listing failure aborts the extraction", func(t *testing.T) {
		boom := errors.New("github api error")
		reader := new(mockEventReader)
		reader.On("ListCommits", mock.Anything, repo).Return([]domain.Commit{}, nil)
		reader.On("ListOpenIssues", mock.Anything, repo).Return([]domain.Issue{
			{Number: 1, User: "carol", CreatedAt: day(3)},
		}, nil)
		reader.On("ListIssueComments", mock.Anything, repo, 1).Return(nil, boom)

		extractor := NewExtractor(reader, discardLogger())
		_, err := extractor.Events(ctx, repo)
		assert.ErrorIs(t, err, boom)
	})
}

func TestExtractor_AllContributors(t *testing.T) {
	ctx := context.Background()
	repo := domain.Repo{Owner: "acme", Name: "widgets"}

	t.Run("code contributors only by default", func(t *testing.T) {
		reader := new(mockEventReader)
		reader.On("ListContributors", mock.Anything, repo).Return([]string{"alice", "bob"}, nil)

		extractor := NewExtractor(reader, discardLogger())
		byUser, err := extractor.AllContributors(ctx, repo, false)
		require.NoError(t, err)

		require.Len(t, byUser, 2)
		assert.True(t, byUser["alice"].Has(domain.ChannelCode))
		assert.Len(t, byUser["alice"], 1)
		assert.True(t, byUser["bob"].Has(domain.ChannelCode))
		assert.Len(t, byUser["bob"], 1)

		// The issue walk must not have happened.
		reader.AssertNotCalled(t, "ListOpenIssues", mock.Anything, mock.Anything)
	})

	t.Run("issue openers and commenters join with incNonCode", func(t *testing.T) {
		reader := new(mockEventReader)
		reader.On("ListContributors", mock.Anything, repo).Return([]string{"alice"}, nil)
		reader.On("ListOpenIssues", mock.Anything, repo).Return([]domain.Issue{
			{Number: 1, User: "bob"},
			{Number: 2, User: "alice"},
		}, nil)
		reader.On("ListIssueComments", mock.Anything, repo, 1).Return([]domain.Comment{
			{User: "bob"},
			{User: "carol"},
		}, nil)
		reader.On("ListIssueComments", mock.Anything, repo, 2).Return([]domain.Comment{}, nil)

		extractor := NewExtractor(reader, discardLogger())
		byUser, err := extractor.AllContributors(ctx, repo, true)
		require.NoError(t, err)
		require.Len(t, byUser, 3)

		// bob opened an issue and commented but never committed code.
		assert.True(t, byUser["bob"].Has(domain.ChannelIssues))
		assert.True(t, byUser["bob"].Has(domain.ChannelComments))
		assert.False(t, byUser["bob"].Has(domain.ChannelCode))

		// alice accumulates channels across her code and issue activity.
		assert.True(t, byUser["alice"].Has(domain.ChannelCode))
		assert.True(t, byUser["alice"].Has(domain.ChannelIssues))

		assert.True(t, byUser["carol"].Has(domain.ChannelComments))
		assert.Len(t, byUser["carol"], 1)
	})

	t.Run("anonymous activity is not classified", func(t *testing.T) {
		reader := new(mockEventReader)
		reader.On("ListContributors", mock.Anything, repo).Return([]string{}, nil)
		reader.On("ListOpenIssues", mock.Anything, repo).Return([]domain.Issue{
			{Number: 1, User: ""},
		}, nil)
		reader.On("ListIssueComments", mock.Anything, repo, 1).Return([]domain.Comment{
			{User: ""},
		}, nil)

		extractor := NewExtractor(reader, discardLogger())
		byUser, err := extractor.AllContributors(ctx, repo, true)
		require.NoError(t, err)
		assert.Empty(t, byUser)
	})

	t.Run("contributor listing failure propagates", func(t *testing.T) {
		boom := errors.New("github api error")
		reader := new(mockEventReader)
		reader.On("ListContributors", mock.Anything, repo).Return(nil, boom)

		extractor := NewExtractor(reader, discardLogger())
		_, err := extractor.AllContributors(ctx, repo, false)
		assert.ErrorIs(t, err, boom)
	})
}
