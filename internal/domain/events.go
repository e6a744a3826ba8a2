package domain

import "time"

// EventKind classifies a platform activity event.
type EventKind string

const (
	KindCommit  EventKind = "commit"
	KindIssue   EventKind = "issue"
	KindComment EventKind = "comment"
)

// EventRecord is one observed activity event: who did something, when, and
// what kind of thing it was.
type EventRecord struct {
	User      string
	Timestamp time.Time
	Kind      EventKind
}

// EventTable is the flat event log of one repository: all commit events
// first, then issue and comment events, each pass in the order the platform
// enumerates them.
type EventTable []EventRecord

// Channel is a contribution channel, used to classify contributors beyond
// direct code commits.
type Channel string

const (
	ChannelCode     Channel = "code"
	ChannelIssues   Channel = "issues"
	ChannelComments Channel = "comments"
)

// ChannelSet is the set of channels a contributor was observed in.
type ChannelSet map[Channel]struct{}

// Add records a channel. Adding an already-present channel is a no-op.
func (s ChannelSet) Add(c Channel) {
	s[c] = struct{}{}
}

// Has reports whether the channel was observed.
func (s ChannelSet) Has(c Channel) bool {
	_, ok := s[c]
	return ok
}
