package agg

import (
	"testing"
	"time"

	"github.com/Doubling-Open-Source/git-calculator/core/branch"
	"github.com/Doubling-Open-Source/git-calculator/core/graph"
	"github.com/Doubling-Open-Source/git-calculator/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// line assembles a branch line from commits given oldest first.
func line(departure, merge *graph.Commit, members ...*graph.Commit) *branch.Line {
	l := &branch.Line{Strategy: schema.TopStrategy, Merge: merge, Departure: departure}
	for i := len(members) - 1; i >= 0; i-- {
		l.Commits = append(l.Commits, members[i])
	}
	if len(l.Commits) > 0 {
		l.Start = l.Commits[0]
	}
	return l
}

func TestBranchStats(t *testing.T) {
	h := newHistory(t)
	c := func(d float64) *graph.Commit { return h.commit("ann@x.io", d) }

	// ramp 1d, work 2d, close 1d, total 4d
	first := line(c(0), c(4), c(1), c(3))
	// ramp 2d, work 2d, close 2d, total 6d
	second := line(c(2), c(8), c(4), c(5), c(6))
	// no departure, so no ramp
	root := line(nil, c(9), c(7), c(8))
	// zero ramp
	flat := line(c(1), nil, c(1))
	// no members
	empty := line(c(3), c(3))

	rows := BranchStats([]*branch.Line{second, root, flat, empty, first}, schema.CountBuckets, 2, time.UTC)
	require.Len(t, rows, 1)

	r := rows[0]
	assert.Equal(t, time.Unix(epoch, 0).UTC(), r.IntervalStart)
	assert.Equal(t, 2, r.Lines)

	assert.Equal(t, schema.Summary{Count: 2, Sum: 5, Median: 2.5, P75: 2.75, Mean: 2.5, StdDev: 0.71}, r.Commits)
	assert.Equal(t, schema.Summary{Count: 2, Sum: 8.5, Median: 4.25, P75: 4.63, Mean: 4.25, StdDev: 1.06}, r.CycleTime)
	assert.Equal(t, schema.Summary{Count: 2, Sum: 3, Median: 1.5, P75: 1.75, Mean: 1.5, StdDev: 0.71}, r.QA)
	assert.Equal(t, schema.Summary{Count: 2, Sum: 5.5, Median: 2.75, P75: 2.88, Mean: 2.75, StdDev: 0.35}, r.WorkTime)
	assert.Equal(t, schema.Summary{Count: 2, Sum: 3, Median: 1.5, P75: 1.75, Mean: 1.5, StdDev: 0.71}, r.Ramp)
}

func TestBranchStatsFromTree(t *testing.T) {
	// a <- b <- m, with x branching off a and merged into m
	g := graph.New(graph.NewRegistry(), nil)
	rows := []schema.CommitRow{
		{When: epoch + 4*day, Hash: "m1", Tree: "t1", Parents: []string{"b1", "x1"}},
		{When: epoch + 3*day, Hash: "x1", Tree: "t2", Parents: []string{"a1"}},
		{When: epoch + 2*day, Hash: "b1", Tree: "t3", Parents: []string{"a1"}},
		{When: epoch, Hash: "a1", Tree: "t4"},
	}
	g.CreateFromBatch(rows)
	g.LinkChildren()

	root, err := branch.Build(t.Context(), g, "m1", schema.TopStrategy)
	require.NoError(t, err)

	stats := BranchStats(root.Lines(), schema.CountBuckets, 0, time.UTC)
	assert.Empty(t, stats, "a single branch cannot fill a bucket")
}

func TestBranchStatsEmpty(t *testing.T) {
	assert.Empty(t, BranchStats(nil, schema.CountBuckets, 0, nil))
}
