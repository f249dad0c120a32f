package cmd

import (
	"github.com/Doubling-Open-Source/git-calculator/core"
	"github.com/Doubling-Open-Source/git-calculator/internal/contract"
	"github.com/spf13/cobra"
)

// branchesCmd reports bucketed cycle-time statistics for the branch lines behind a ref.
var branchesCmd = &cobra.Command{
	Use:   "branches [repo-path]",
	Short: "Report branch cycle time statistics behind a ref",
	Long: `Decompose the history behind --ref into branch lines and report how long
each line took to land, grouped into buckets ordered by cycle start: the
departure of each line, or its oldest commit when the departure is unknown.

Each bucket shows count, sum, median, 75th percentile, mean and standard
deviation of the commits per line and of the cycle, QA, work and ramp times
in days.

Examples:
  # Cycle time behind HEAD in buckets of 20 lines
  gitcalc branches --bucket 20

  # Twelve equal time intervals over the last year
  gitcalc branches --by intervals --bucket 12 --start "1 year ago"

  # Calendar months in New York time, side branches before main line work
  gitcalc branches --by month --strategy reverse --timezone America/New_York`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteBranches(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run branch analysis", err)
		}
	},
}
