package cmd

import (
	"github.com/Doubling-Open-Source/git-calculator/core"
	"github.com/Doubling-Open-Source/git-calculator/internal/contract"
	"github.com/spf13/cobra"
)

// monthlyCmd reports throughput and change failure rate per calendar month.
var monthlyCmd = &cobra.Command{
	Use:   "monthly [repo-path]",
	Short: "Report monthly throughput and change failure rate",
	Long: `Count commits and active authors per calendar month and derive throughput
(commits per author) and change failure rate (share of commits whose message
mentions a fix, bug, revert, hotfix, problem or issue).

Examples:
  gitcalc monthly --start "6 months ago"
  gitcalc monthly --output csv --output-file monthly.csv`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteMonthly(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run monthly analysis", err)
		}
	},
}
