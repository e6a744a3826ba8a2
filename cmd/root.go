// Package cmd contains the CLI surface of the application,
// built using the Cobra library.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/whatsup-github/whatsup/internal/config"
	"github.com/whatsup-github/whatsup/internal/errs"
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whatsup",
		Short: "Reports what is going on in the repositories of a GitHub organization",
		Long: `whatsup queries the GitHub API and writes CSV reports about repository
activity: one metrics table across an organization (issues, pulls, commits,
contributors, license/README presence, staleness in days), or the raw
commit/issue/comment event log of single repositories for deeper analysis.

The access token is read from the ` + config.TokenEnvVar + ` environment variable.`,
		SilenceUsage:  true, // Don't show usage on error.
		SilenceErrors: true, // Execute prints the error once itself.
		RunE:          run,
	}

	cmd.Flags().String("org", config.DefaultOrg, "Target GitHub organization; ignored when --repo is given")
	cmd.Flags().Bool("private", false, "Include private repositories in the organization enumeration")
	cmd.Flags().String("repo", "", "Extract the event log of one <owner>/<name> repository into repo.csv")
	cmd.Flags().Bool("all", false, "Extract one event log per organization repository, skipping existing files")
	cmd.Flags().String("out_folder", ".", "Destination directory for all CSV output; created if absent")
	cmd.Flags().Bool("contributors", false, "Classify the contributors of --repo by channel into contributors.csv")
	cmd.Flags().Bool("inc-non-code", false, "Count issue openers and commenters as contributors too")
	cmd.Flags().Int("concurrency", config.DefaultConcurrency, "How many repositories to collect metrics for at once")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")

	return cmd
}

// Execute runs the root command. This is called by main.main(). A failed
// run is printed once and mapped onto the exit codes of internal/errs.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(errs.ExitCode(err))
	}
}
