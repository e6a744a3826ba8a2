// Package config holds the runtime configuration of a run, assembled from
// CLI flags and the environment. Defaults are explicit values carried in
// the Config rather than globals read deep inside the pipelines.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/whatsup-github/whatsup/internal/errs"
)

const (
	// DefaultOrg is the organization queried when --org is not given.
	DefaultOrg = "alan-turing-institute"

	// TokenEnvVar names the environment variable the access token is read from.
	TokenEnvVar = "GITHUB_AUTH"

	// APIEndpointEnvVar optionally points the clients at a GitHub
	// Enterprise instance instead of github.com.
	APIEndpointEnvVar = "GITHUB_API_ENDPOINT"

	// LicenseFile and ReadmeFile are the filenames whose presence the
	// metrics table reports.
	LicenseFile = "LICENSE"
	ReadmeFile  = "README.md"

	// DefaultConcurrency bounds how many repositories are collected at once.
	DefaultConcurrency = 10
)

// Mode selects which pipeline a run executes.
type Mode int

const (
	// ModeMetrics aggregates the metrics table over an organization and
	// writes repos.csv.
	ModeMetrics Mode = iota
	// ModeRepoEvents extracts the event log of a single repository and
	// writes repo.csv.
	ModeRepoEvents
	// ModeAllEvents extracts one event log per organization repository,
	// skipping repositories whose output file already exists.
	ModeAllEvents
	// ModeContributors classifies the contributors of a single repository
	// by channel and writes contributors.csv.
	ModeContributors
)

// Config carries the settings of one run. Build it with Default, override
// from flags, then Validate before use.
type Config struct {
	Org            string
	IncludePrivate bool
	Repo           string
	AllRepos       bool
	Contributors   bool
	IncNonCode     bool
	OutFolder      string
	Concurrency    int
	Token          string
	APIBaseURL     string

	// Filenames checked by the presence columns of the metrics table.
	License string
	Readme  string
}

// Default returns the documented default configuration.
func Default() Config {
	return Config{
		Org:         DefaultOrg,
		OutFolder:   ".",
		Concurrency: DefaultConcurrency,
		License:     LicenseFile,
		Readme:      ReadmeFile,
	}
}

// LoadEnv reads the environment-supplied settings: the required access
// token and the optional Enterprise endpoint override.
func (c *Config) LoadEnv() error {
	c.APIBaseURL = os.Getenv(APIEndpointEnvVar)
	return c.LoadToken()
}

// LoadToken reads the access token from the environment. A missing or
// empty variable is fatal for every mode.
func (c *Config) LoadToken() error {
	c.Token = os.Getenv(TokenEnvVar)
	if c.Token == "" {
		return fmt.Errorf("%s environment variable is not set: %w", TokenEnvVar, errs.ErrMissingToken)
	}
	return nil
}

// Mode resolves which pipeline the flag combination selects. --contributors
// wins over --repo, which wins over --all; with none of them set the run
// aggregates the metrics table.
func (c Config) Mode() Mode {
	switch {
	case c.Contributors:
		return ModeContributors
	case c.Repo != "":
		return ModeRepoEvents
	case c.AllRepos:
		return ModeAllEvents
	default:
		return ModeMetrics
	}
}

// Validate rejects flag combinations the pipelines cannot serve.
func (c Config) Validate() error {
	if c.Contributors && c.Repo == "" {
		return fmt.Errorf("--contributors requires --repo")
	}
	if c.Repo != "" {
		if _, _, err := SplitRepo(c.Repo); err != nil {
			return err
		}
	} else if c.Org == "" {
		return fmt.Errorf("--org must not be empty")
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	return nil
}

// SplitRepo parses an <owner>/<name> repository argument.
func SplitRepo(arg string) (owner, name string, err error) {
	parts := strings.Split(arg, "/")
	if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
		return "", "", fmt.Errorf("invalid repository %q: expected <owner>/<name>", arg)
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), nil
}
