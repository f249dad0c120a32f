package core

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/Doubling-Open-Source/git-calculator/core/agg"
	"github.com/Doubling-Open-Source/git-calculator/core/branch"
	"github.com/Doubling-Open-Source/git-calculator/internal/contract"
	"github.com/Doubling-Open-Source/git-calculator/schema"
)

// defaultPrettyLimit is the member count shown in full when no width is known.
const defaultPrettyLimit = 8

// BranchStats buckets the cycle times of the lines behind cfg.Ref.
func (h *History) BranchStats(ctx context.Context, cfg *contract.Config) ([]schema.BranchStatsRow, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	root, err := h.tree(ctx, cfg.Ref, cfg.Strategy)
	if err != nil {
		return nil, err
	}
	return agg.BranchStats(root.Lines(), cfg.BucketMode, cfg.BucketSize, cfg.Location), nil
}

// LineViews flattens the line tree behind cfg.Ref in breadth-first order.
// The lock stays held until every identifier is rendered.
func (h *History) LineViews(ctx context.Context, cfg *contract.Config) ([]schema.LineView, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	root, err := h.tree(ctx, cfg.Ref, cfg.Strategy)
	if err != nil {
		return nil, err
	}
	limit := prettyLimit(cfg.Width)
	loc := cmp.Or(cfg.Location, time.UTC)

	levels := branch.Levels(root)
	views := make([]schema.LineView, 0, len(levels))
	for _, lv := range levels {
		l := lv.Line
		ct := branch.Cycle(l)
		view := schema.LineView{
			Depth:      lv.Depth,
			Strategy:   l.Strategy,
			Start:      l.Start.Short(),
			Commits:    len(l.Commits),
			Work:       len(l.WorkCommits()),
			Pretty:     l.Pretty(limit),
			CycleStart: ct.Start.In(loc),
			RampDays:   days(ct.Ramp),
			WorkDays:   days(ct.Work),
			CloseDays:  days(ct.Close),
			TotalDays:  days(ct.Total),
		}
		if l.Merge != nil {
			view.Merge = l.Merge.Short()
		}
		if l.Departure != nil {
			view.Departure = l.Departure.Short()
		}
		views = append(views, view)
	}
	return views, nil
}

// DeltaStats buckets the commit deltas of every author in the log.
func (h *History) DeltaStats(cfg *contract.Config) []schema.DeltaStatsRow {
	return agg.DeltaStats(agg.AuthorDeltas(h.Commits), cfg.BucketMode, cfg.BucketSize, cfg.Location)
}

// Monthly computes the per-month delivery metrics of the log.
func (h *History) Monthly(ctx context.Context, cfg *contract.Config) ([]schema.MonthlyRow, error) {
	messages, err := h.Source.Messages(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read commit messages: %w", err)
	}
	return agg.Monthly(h.Commits, messages, cfg.Location), nil
}

// WeeklyAuthors counts commits per author and week of the log and ranks the
// authors by total commits.
func (h *History) WeeklyAuthors(cfg *contract.Config) []schema.AuthorActivityRow {
	return agg.WeeklyAuthors(h.Commits, cfg.Location)
}

// BranchRefs lists branch tips sorted by name.
func BranchRefs(ctx context.Context, src contract.HistorySource) ([]schema.BranchRef, error) {
	refs, err := src.Branches(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}
	slices.SortFunc(refs, func(a, b schema.BranchRef) int { return cmp.Compare(a.Ref, b.Ref) })
	return refs, nil
}

// prettyLimit derives how many members fit on one line of the given width.
func prettyLimit(width int) int {
	if width <= 0 {
		return defaultPrettyLimit
	}
	return max(2, (width-40)/8)
}

func days(d *time.Duration) *float64 {
	if d == nil {
		return nil
	}
	v := agg.Round(d.Hours()/24, 2)
	return &v
}
