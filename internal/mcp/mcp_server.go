// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/Doubling-Open-Source/git-calculator/core"
	"github.com/Doubling-Open-Source/git-calculator/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ServerVersion is reported to MCP clients.
const ServerVersion = "1.0.0"

var (
	windowOptions = []mcp.ToolOption{
		mcp.WithString("repo_path", mcp.Description("Path to the Git repository (defaults to the configured repository).")),
		mcp.WithString("start", mcp.Description("Only use commits after this time (RFC3339, YYYY-MM-DD or 'N units ago').")),
		mcp.WithString("end", mcp.Description("Only use commits before this time.")),
		mcp.WithString("timezone", mcp.Description("IANA time zone for bucket and month boundaries. Defaults to UTC.")),
	}
	lineOptions = []mcp.ToolOption{
		mcp.WithString("ref", mcp.Description("Start reference of the line tree. Defaults to HEAD.")),
		mcp.WithString("strategy", mcp.Description("How lines spawn child lines."), mcp.Enum("top", "reverse", "narrow", "stop")),
	}
	bucketOptions = []mcp.ToolOption{
		mcp.WithString("by", mcp.Description("Bucketing mode."), mcp.Enum("count", "intervals", "month")),
		mcp.WithNumber("bucket", mcp.Description("Observations per bucket (count) or number of buckets (intervals). 0 picks automatically.")),
	}
)

func toolOptions(description string, groups ...[]mcp.ToolOption) []mcp.ToolOption {
	opts := []mcp.ToolOption{mcp.WithDescription(description)}
	for _, g := range groups {
		opts = append(opts, g...)
	}
	return opts
}

// NewMCPServer initializes and configures the gitcalc MCP server without starting it.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Git Calculator Server",
		ServerVersion,
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg:   baseCfg,
		mgr:       mgr,
		histories: newHistoryCache(core.OpenHistory),
	}

	s.AddTool(mcp.NewTool("get_branch_cycle_time", toolOptions(
		"Decompose the commit graph into branch lines and return bucketed cycle, QA, work and ramp times in days.",
		windowOptions, lineOptions, bucketOptions)...,
	), h.handleBranchCycleTime)

	s.AddTool(mcp.NewTool("get_author_deltas", toolOptions(
		"Return bucketed statistics of the minutes between consecutive commits of each author.",
		windowOptions, bucketOptions)...,
	), h.handleAuthorDeltas)

	s.AddTool(mcp.NewTool("get_monthly_metrics", toolOptions(
		"Return per-month commits, active authors, throughput and change failure rate.",
		windowOptions)...,
	), h.handleMonthlyMetrics)

	s.AddTool(mcp.NewTool("get_weekly_authors", toolOptions(
		"Return each author's commits per week, weeks starting on Monday, with their percentile rank by total commits.",
		windowOptions)...,
	), h.handleWeeklyAuthors)

	s.AddTool(mcp.NewTool("get_branch_lines", toolOptions(
		"List the branch line tree behind a reference with the cycle time of every line.",
		windowOptions, lineOptions,
		[]mcp.ToolOption{mcp.WithBoolean("branches", mcp.Description("Also list branch names and the commits they point at."))})...,
	), h.handleBranchLines)

	return s
}

// StartMCPServer serves the gitcalc tools over stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
