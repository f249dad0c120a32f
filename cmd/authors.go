package cmd

import (
	"github.com/Doubling-Open-Source/git-calculator/core"
	"github.com/Doubling-Open-Source/git-calculator/internal/contract"
	"github.com/spf13/cobra"
)

// authorsCmd reports weekly commit counts and percentile ranks per author.
var authorsCmd = &cobra.Command{
	Use:   "authors [repo-path]",
	Short: "Report weekly commits per author and their percentile rank",
	Long: `Count each author's commits per week, weeks starting on Monday in --timezone,
and rank authors by total commits. An author's percentile is the share of
authors with at most as many commits, so tied authors share the higher rank.

Text output shows one summary line per author. CSV, JSON and Parquet list
every active week.

Examples:
  gitcalc authors --start "3 months ago"
  gitcalc authors --output csv --output-file authors.csv`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteAuthors(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run author analysis", err)
		}
	},
}
