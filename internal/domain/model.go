// Package domain contains the core data structures and domain logic for the application.
package domain

import "time"

// Repo is a handle to one repository on the hosting platform, captured at
// enumeration time. Collectors and extractors borrow it read-only.
type Repo struct {
	Owner       string
	Name        string
	Description string
	URL         string
	OpenIssues  int
}

// FullName returns the owner-qualified repository name, e.g. "org/repo".
func (r Repo) FullName() string {
	return r.Owner + "/" + r.Name
}

// Issue is one issue of a repository. The issues endpoint of the platform
// also reports open pull requests as issues; that behavior is inherited.
type Issue struct {
	Number    int
	User      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Comment is one comment on an issue.
type Comment struct {
	User      string
	CreatedAt time.Time
}

// Commit is one commit of a repository. Author is the platform login of the
// commit author and is empty when the platform cannot resolve the author to
// an account. AuthoredAt and CommittedAt come from the underlying git
// metadata and are always present.
type Commit struct {
	SHA         string
	Author      string
	AuthoredAt  time.Time
	CommittedAt time.Time
}
