package cmd

import (
	"github.com/Doubling-Open-Source/git-calculator/core"
	"github.com/Doubling-Open-Source/git-calculator/internal/contract"
	"github.com/spf13/cobra"
)

// linesCmd lists the branch line tree behind a ref.
var linesCmd = &cobra.Command{
	Use:   "lines [repo-path]",
	Short: "List the branch lines behind a ref",
	Long: `Print every branch line reachable from --ref in breadth-first order with its
strategy, member commits and cycle time tuple (ramp, work, close, total).

Examples:
  # Lines behind main
  gitcalc lines --ref main

  # Include branch names and the commits they point at
  gitcalc lines --branches --output json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteLines(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot list branch lines", err)
		}
	},
}
