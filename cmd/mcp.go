package cmd

import (
	"github.com/Doubling-Open-Source/git-calculator/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp [repo-path]",
	Short: "Start the gitcalc MCP server",
	Long: `Launch an MCP server on stdio so AI agents can request branch cycle time,
author deltas, monthly metrics and branch lines as tools.`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager)
	},
}
