package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Doubling-Open-Source/git-calculator/core/branch"
	"github.com/Doubling-Open-Source/git-calculator/core/graph"
	"github.com/Doubling-Open-Source/git-calculator/internal/contract"
	"github.com/Doubling-Open-Source/git-calculator/schema"
)

// ErrNoCommits is returned when the configured window holds no commits.
var ErrNoCommits = errors.New("no commits found")

// History is a loaded commit graph together with the source it came from.
// It may be shared between requests. Tree builds recalibrate the registry, so
// anything reading short identifiers of a tree must hold mu while it does.
type History struct {
	Source  contract.HistorySource
	Graph   *graph.Graph
	Commits []*graph.Commit // commits returned by the log, newest first

	mu sync.Mutex
}

// LoadHistory reads the commit log of src into a linked, recalibrated graph.
//
// Without a start bound the graph may fall back to src for commits the log
// did not return. A windowed graph never does: parents older than the window
// stay unresolved instead of pulling the whole history in one commit at a time.
func LoadHistory(ctx context.Context, cfg *contract.Config, src contract.HistorySource) (*History, error) {
	rows, err := src.CommitLog(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read commit log: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNoCommits
	}

	var lookup graph.Lookup
	if cfg.StartTime.IsZero() {
		lookup = src
	}
	g := graph.New(graph.NewRegistry(), lookup)
	commits := g.CreateFromBatch(rows)
	g.LinkChildren()
	g.Registry().Recalibrate()

	slog.Debug("loaded commit graph", "commits", g.Len(), "identifiers", g.Registry().Len())
	return &History{Source: src, Graph: g, Commits: commits}, nil
}

// Tree decomposes the history behind ref with strategy. The ref is resolved
// through the source first so a branch name is never read as a hash prefix.
func (h *History) Tree(ctx context.Context, ref string, strategy schema.Strategy) (*branch.Line, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.tree(ctx, ref, strategy)
}

// tree is Tree without locking; callers hold h.mu.
func (h *History) tree(ctx context.Context, ref string, strategy schema.Strategy) (*branch.Line, error) {
	if err := branch.ValidateStrategy(strategy); err != nil {
		return nil, err
	}
	if ref == "" {
		ref = contract.DefaultRef
	}

	row, err := h.Source.ShowCommit(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", graph.ErrUnresolvedRef, ref, err)
	}
	h.Graph.Add(row)
	h.Graph.LinkChildren()

	root, err := branch.Build(ctx, h.Graph, row.Hash, strategy)
	if err != nil {
		return nil, err
	}
	// lookups during the walk may have registered new identifiers
	h.Graph.Registry().Recalibrate()
	return root, nil
}
