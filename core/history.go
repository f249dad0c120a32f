package core

import (
	"context"
	"fmt"
	"time"

	"github.com/Doubling-Open-Source/git-calculator/core/graph"
	"github.com/Doubling-Open-Source/git-calculator/internal/contract"
	"github.com/Doubling-Open-Source/git-calculator/internal/gogit"
	"github.com/Doubling-Open-Source/git-calculator/schema"
)

// GitHistory implements contract.HistorySource on top of the git CLI.
type GitHistory struct {
	client     contract.GitClient
	repoPath   string
	start, end time.Time
}

var _ contract.HistorySource = &GitHistory{} // Compile-time check

// NewGitHistory reads the history of repoPath through client. Zero start or
// end leave that side of the window open.
func NewGitHistory(client contract.GitClient, repoPath string, start, end time.Time) *GitHistory {
	return &GitHistory{client: client, repoPath: repoPath, start: start, end: end}
}

// CommitLog implements contract.HistorySource.
func (h *GitHistory) CommitLog(ctx context.Context) ([]schema.CommitRow, error) {
	out, err := h.client.GetCommitLog(ctx, h.repoPath, h.start, h.end)
	if err != nil {
		return nil, err
	}
	return graph.ParseLog(out)
}

// ShowCommit implements contract.HistorySource.
func (h *GitHistory) ShowCommit(ctx context.Context, ref string) (schema.CommitRow, error) {
	out, err := h.client.ShowCommit(ctx, h.repoPath, ref)
	if err != nil {
		return schema.CommitRow{}, err
	}
	rows, err := graph.ParseLog(out)
	if err != nil {
		return schema.CommitRow{}, err
	}
	if len(rows) != 1 {
		return schema.CommitRow{}, fmt.Errorf("expected one commit for %q, got %d", ref, len(rows))
	}
	return rows[0], nil
}

// Branches implements contract.HistorySource.
func (h *GitHistory) Branches(ctx context.Context) ([]schema.BranchRef, error) {
	out, err := h.client.GetBranches(ctx, h.repoPath)
	if err != nil {
		return nil, err
	}
	return graph.ParseBranches(out), nil
}

// Messages implements contract.HistorySource.
func (h *GitHistory) Messages(ctx context.Context) (map[string]string, error) {
	out, err := h.client.GetCommitMessages(ctx, h.repoPath, h.start, h.end)
	if err != nil {
		return nil, err
	}
	return graph.ParseMessages(out), nil
}

// Head implements contract.HistorySource.
func (h *GitHistory) Head(ctx context.Context) (string, error) {
	return h.client.GetRepoHash(ctx, h.repoPath)
}

// NewHistorySource picks the history implementation configured by cfg.Source
// and wraps it with the history cache when one is available.
func NewHistorySource(cfg *contract.Config, client contract.GitClient, mgr contract.CacheManager) (contract.HistorySource, error) {
	var src contract.HistorySource
	switch cfg.Source {
	case schema.GoGitSource:
		gs, err := gogit.Open(cfg.RepoPath, cfg.StartTime, cfg.EndTime)
		if err != nil {
			return nil, err
		}
		src = gs
	default:
		src = NewGitHistory(client, cfg.RepoPath, cfg.StartTime, cfg.EndTime)
	}
	return newCachedHistory(src, cfg, mgr), nil
}
