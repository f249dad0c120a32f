package cmd

import (
	"github.com/Doubling-Open-Source/git-calculator/core"
	"github.com/Doubling-Open-Source/git-calculator/internal/contract"
	"github.com/spf13/cobra"
)

// deltasCmd reports the minutes between consecutive commits of each author.
var deltasCmd = &cobra.Command{
	Use:   "deltas [repo-path]",
	Short: "Report minutes between consecutive commits per author",
	Long: `Measure the gap in minutes between consecutive commits of the same author
and summarize the gaps in buckets.

Examples:
  # Buckets of 50 deltas
  gitcalc deltas --bucket 50

  # One bucket per calendar month in Berlin time
  gitcalc deltas --by month --timezone Europe/Berlin`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteDeltas(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run delta analysis", err)
		}
	},
}
