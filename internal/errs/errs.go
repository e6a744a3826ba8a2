// Package errs defines the sentinel errors shared across the application
// and their mapping onto process exit codes.
package errs

import "errors"

var (
	// ErrMissingToken indicates the token environment variable is not set.
	ErrMissingToken = errors.New("github token not set")

	// ErrInvalidToken indicates GitHub rejected the supplied credentials.
	ErrInvalidToken = errors.New("invalid github token")

	// ErrNotFound indicates a repository or organization does not exist or
	// is not visible to the supplied token.
	ErrNotFound = errors.New("not found")

	// ErrRateLimited indicates the GitHub API rate limit is exhausted.
	ErrRateLimited = errors.New("github rate limit exceeded")

	// ErrNetwork indicates a network-level failure talking to GitHub.
	ErrNetwork = errors.New("network connection failed")
)

// ExitCode maps an error to the exit code the process should terminate
// with: 0 for success, 2 for credential, visibility and rate-limit
// failures, 3 for network failures, 1 for everything else.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrMissingToken),
		errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrRateLimited):
		return 2
	case errors.Is(err, ErrNetwork):
		return 3
	default:
		return 1
	}
}
