// Package core has the orchestration that turns a repository history into
// branch, delta, author and monthly reports.
package core

import (
	"context"
	"time"

	"github.com/Doubling-Open-Source/git-calculator/internal/contract"
	"github.com/Doubling-Open-Source/git-calculator/internal/outwriter"
	"github.com/Doubling-Open-Source/git-calculator/schema"
)

// Command names recorded by analysis tracking.
const (
	BranchesCommand = "branches"
	LinesCommand    = "lines"
	DeltasCommand   = "deltas"
	MonthlyCommand  = "monthly"
	AuthorsCommand  = "authors"
)

// ExecutorFunc defines the function signature for executing different reports.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// OpenHistory builds the configured history source and loads its graph.
func OpenHistory(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (*History, error) {
	src, err := NewHistorySource(cfg, contract.NewLocalGitClient(), mgr)
	if err != nil {
		return nil, err
	}
	return LoadHistory(ctx, cfg, src)
}

// GetBranchStatsResults loads the history and buckets branch line cycle times.
func GetBranchStatsResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) ([]schema.BranchStatsRow, error) {
	h, err := OpenHistory(ctx, cfg, mgr)
	if err != nil {
		return nil, err
	}
	return h.BranchStats(ctx, cfg)
}

// GetDeltaStatsResults loads the history and buckets author commit deltas.
func GetDeltaStatsResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) ([]schema.DeltaStatsRow, error) {
	h, err := OpenHistory(ctx, cfg, mgr)
	if err != nil {
		return nil, err
	}
	return h.DeltaStats(cfg), nil
}

// GetMonthlyResults loads the history and computes monthly delivery metrics.
func GetMonthlyResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) ([]schema.MonthlyRow, error) {
	h, err := OpenHistory(ctx, cfg, mgr)
	if err != nil {
		return nil, err
	}
	return h.Monthly(ctx, cfg)
}

// GetAuthorResults loads the history and ranks authors by weekly activity.
func GetAuthorResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) ([]schema.AuthorActivityRow, error) {
	h, err := OpenHistory(ctx, cfg, mgr)
	if err != nil {
		return nil, err
	}
	return h.WeeklyAuthors(cfg), nil
}

// GetLineViews loads the history and lists the line tree, plus branch tips
// when cfg.ShowBranches is set.
func GetLineViews(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) ([]schema.LineView, []schema.BranchRef, error) {
	h, err := OpenHistory(ctx, cfg, mgr)
	if err != nil {
		return nil, nil, err
	}
	views, err := h.LineViews(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if !cfg.ShowBranches {
		return views, nil, nil
	}
	refs, err := BranchRefs(ctx, h.Source)
	if err != nil {
		return nil, nil, err
	}
	return views, refs, nil
}

// ExecuteBranches runs the branch cycle-time report and prints it.
// It serves as the main entry point for the 'branches' command.
func ExecuteBranches(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	run := beginAnalysis(mgr, BranchesCommand, cfg)
	rows, err := GetBranchStatsResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	run.record(branchStatsRecords(rows))
	run.end(len(rows))
	return outwriter.PrintBranchStatsResults(rows, cfg, time.Since(start))
}

// ExecuteLines lists the branch line tree behind the configured ref.
func ExecuteLines(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	run := beginAnalysis(mgr, LinesCommand, cfg)
	views, refs, err := GetLineViews(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	run.end(len(views))
	return outwriter.PrintLineViews(views, refs, cfg, time.Since(start))
}

// ExecuteDeltas runs the author commit delta report and prints it.
func ExecuteDeltas(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	run := beginAnalysis(mgr, DeltasCommand, cfg)
	rows, err := GetDeltaStatsResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	run.record(deltaStatsRecords(rows))
	run.end(len(rows))
	return outwriter.PrintDeltaStatsResults(rows, cfg, time.Since(start))
}

// ExecuteMonthly runs the monthly throughput and failure rate report.
func ExecuteMonthly(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	run := beginAnalysis(mgr, MonthlyCommand, cfg)
	rows, err := GetMonthlyResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	run.end(len(rows))
	return outwriter.PrintMonthlyResults(rows, cfg, time.Since(start))
}

// ExecuteAuthors runs the weekly author activity report.
func ExecuteAuthors(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	run := beginAnalysis(mgr, AuthorsCommand, cfg)
	rows, err := GetAuthorResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	run.end(len(rows))
	return outwriter.PrintAuthorResults(rows, cfg, time.Since(start))
}
