package branch

import (
	"context"
	"testing"

	"github.com/Doubling-Open-Source/git-calculator/core/graph"
	"github.com/Doubling-Open-Source/git-calculator/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mergeGraph:
//
//	rt <- a <- b <- m
//	       \       /
//	        e <- f
func mergeGraph() *graph.Graph {
	return newGraph(
		row("m", 600, "b", "f"),
		row("f", 500, "e"),
		row("b", 400, "a"),
		row("e", 300, "a"),
		row("a", 200, "rt"),
		row("rt", 100),
	)
}

// remergeGraph merges one feature branch twice:
//
//	base <- m1 <- m2
//	   \    /     /
//	    x1 <---- x2
func remergeGraph() *graph.Graph {
	return newGraph(
		row("m2", 500, "m1", "x2"),
		row("x2", 400, "x1"),
		row("m1", 300, "base", "x1"),
		row("x1", 200, "base"),
		row("base", 100),
	)
}

// nestedGraph has a merge inside a merged branch (a2 merges b1) and a later
// branch (c1) built on top of b1.
func nestedGraph() *graph.Graph {
	return newGraph(
		row("R2", 700, "R1", "a2"),
		row("a2", 600, "a1", "b1"),
		row("a1", 500, "r"),
		row("R1", 400, "r", "c1"),
		row("c1", 300, "b1"),
		row("b1", 200, "r"),
		row("r", 100),
	)
}

func TestBuildLinear(t *testing.T) {
	g := newGraph(row("c3", 400, "c2"), row("c2", 300, "c1"), row("c1", 200, "r"), row("r", 100))
	l := mustBuild(t, g, "c3", schema.TopStrategy)

	assert.Equal(t, []string{"c3", "c2", "c1", "r"}, names(l.Commits))
	assert.Nil(t, l.Merge)
	assert.Nil(t, l.Departure)
	assert.Empty(t, l.Children)
	assert.Equal(t, 6, l.Len())
	assert.Len(t, l.Lines(), 1)
}

func TestBuildTop(t *testing.T) {
	l := mustBuild(t, mergeGraph(), "m", schema.TopStrategy)

	assert.Equal(t, []string{"m", "b", "a", "rt"}, names(l.Commits))
	require.Len(t, l.Children, 1)

	child := l.Children[0]
	assert.Equal(t, schema.TopStrategy, child.Strategy)
	assert.Equal(t, "f", name(child.Start))
	assert.Equal(t, "m", name(child.Merge))
	assert.Equal(t, "a", name(child.Departure))
	assert.Equal(t, []string{"f", "e"}, names(child.Commits))

	var timeline []*graph.Commit
	for c := range child.Timeline() {
		timeline = append(timeline, c)
	}
	assert.Equal(t, []string{"m", "f", "e", "a"}, names(timeline))
}

func TestStrategyOrder(t *testing.T) {
	t.Run("top walks newest merges first", func(t *testing.T) {
		l := mustBuild(t, remergeGraph(), "m2", schema.TopStrategy)
		assert.Equal(t, []string{"m2", "m1", "base"}, names(l.Commits))
		require.Len(t, l.Children, 2)

		assert.Equal(t, []string{"x2", "x1"}, names(l.Children[0].Commits))
		assert.Equal(t, "m2", name(l.Children[0].Merge))
		assert.Equal(t, "base", name(l.Children[0].Departure))

		empty := l.Children[1]
		assert.Empty(t, empty.Commits)
		assert.Equal(t, "m1", name(empty.Merge))
		assert.Equal(t, "x1", name(empty.Departure))
	})

	t.Run("reverse walks oldest merges first", func(t *testing.T) {
		l := mustBuild(t, remergeGraph(), "m2", schema.ReverseStrategy)
		require.Len(t, l.Children, 2)

		assert.Equal(t, []string{"x1"}, names(l.Children[0].Commits))
		assert.Equal(t, "m1", name(l.Children[0].Merge))
		assert.Equal(t, "base", name(l.Children[0].Departure))

		assert.Equal(t, []string{"x2"}, names(l.Children[1].Commits))
		assert.Equal(t, "m2", name(l.Children[1].Merge))
		assert.Equal(t, "x1", name(l.Children[1].Departure))
	})

	t.Run("stop never spawns", func(t *testing.T) {
		l := mustBuild(t, mergeGraph(), "m", schema.StopStrategy)
		assert.Equal(t, []string{"m", "b", "a", "rt"}, names(l.Commits))
		assert.Empty(t, l.Children)
	})
}

func TestNarrowGrowsLevelByLevel(t *testing.T) {
	narrow := mustBuild(t, nestedGraph(), "R2", schema.NarrowStrategy)
	require.Len(t, narrow.Children, 2)

	a, c := narrow.Children[0], narrow.Children[1]
	assert.Equal(t, []string{"a2", "a1"}, names(a.Commits))
	assert.Equal(t, []string{"c1", "b1"}, names(c.Commits), "siblings claim before grandchildren")
	assert.Equal(t, "r", name(c.Departure))

	require.Len(t, a.Children, 1)
	grandchild := a.Children[0]
	assert.Empty(t, grandchild.Commits)
	assert.Equal(t, "a2", name(grandchild.Merge))
	assert.Equal(t, "b1", name(grandchild.Departure))

	for _, l := range narrow.Lines() {
		assert.Equal(t, schema.NarrowStrategy, l.Strategy)
	}

	var depths []int
	for _, lvl := range Levels(narrow) {
		depths = append(depths, lvl.Depth)
	}
	assert.Equal(t, []int{0, 1, 1, 2}, depths)

	t.Run("top recurses depth first", func(t *testing.T) {
		top := mustBuild(t, nestedGraph(), "R2", schema.TopStrategy)
		require.Len(t, top.Children, 2)
		assert.Equal(t, []string{"b1"}, names(top.Children[0].Children[0].Commits))
		assert.Equal(t, []string{"c1"}, names(top.Children[1].Commits))
		assert.Equal(t, "b1", name(top.Children[1].Departure))
	})
}

func TestDecompositionPartitionsHistory(t *testing.T) {
	graphs := map[string]func() *graph.Graph{
		"merge":   mergeGraph,
		"remerge": remergeGraph,
		"nested":  nestedGraph,
	}
	starts := map[string]string{"merge": "m", "remerge": "m2", "nested": "R2"}
	strategies := []schema.Strategy{schema.TopStrategy, schema.ReverseStrategy, schema.NarrowStrategy}

	for gname, build := range graphs {
		for _, strategy := range strategies {
			t.Run(gname+"/"+string(strategy), func(t *testing.T) {
				g := build()
				root := mustBuild(t, g, starts[gname], strategy)

				claimed := make(map[*graph.Commit]int)
				for l := range root.Tree() {
					for _, c := range l.Commits {
						claimed[c]++
					}
				}
				for c, n := range claimed {
					assert.Equal(t, 1, n, "commit %s claimed %d times", c.Short(), n)
				}
				assert.Len(t, claimed, g.Len())
			})
		}
	}
}

func TestTreeIsRestartable(t *testing.T) {
	root := mustBuild(t, nestedGraph(), "R2", schema.TopStrategy)
	first := root.Lines()
	second := root.Lines()
	require.Len(t, first, 4)
	assert.Equal(t, first, second)
	assert.Same(t, root, first[0])

	var taken []*Line
	for l := range root.Tree() {
		taken = append(taken, l)
		if len(taken) == 2 {
			break
		}
	}
	assert.Equal(t, first[:2], taken)
}

func TestBuildErrors(t *testing.T) {
	ctx := context.Background()
	g := mergeGraph()

	_, err := Build(ctx, g, "unknown-ref", "wide")
	assert.ErrorIs(t, err, ErrUnknownStrategy, "strategy is checked before the start is resolved")

	_, err = Build(ctx, g, "unknown-ref", schema.TopStrategy)
	assert.ErrorIs(t, err, graph.ErrUnresolvedRef)

	start, err := g.Get(ctx, hash("m"))
	require.NoError(t, err)
	_, err = BuildWith(ctx, g, NewVisited(), Descriptor{Strategy: "", Start: start})
	assert.ErrorIs(t, err, ErrUnknownStrategy)

	_, err = BuildWith(ctx, g, NewVisited(), Descriptor{Strategy: schema.TopStrategy})
	assert.Error(t, err)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = Build(canceled, g, hash("m"), schema.TopStrategy)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildShallowHistory(t *testing.T) {
	g := newGraph(row("b", 200, "a"))
	l := mustBuild(t, g, "b", schema.TopStrategy)
	assert.Equal(t, []string{"b"}, names(l.Commits))
	assert.Nil(t, l.Departure)
}

func TestSharedVisitedSet(t *testing.T) {
	ctx := context.Background()
	g := mergeGraph()
	visited := NewVisited()

	m, _ := g.Get(ctx, hash("m"))
	a, _ := g.Get(ctx, hash("a"))

	first, err := BuildWith(ctx, g, visited, Descriptor{Strategy: schema.StopStrategy, Start: a})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "rt"}, names(first.Commits))
	assert.Equal(t, 2, visited.Len())

	second, err := BuildWith(ctx, g, visited, Descriptor{Strategy: schema.TopStrategy, Start: m})
	require.NoError(t, err)
	assert.Equal(t, []string{"m", "b"}, names(second.Commits))
	assert.Equal(t, "a", name(second.Departure))
	assert.True(t, visited.Contains(m))
	assert.Equal(t, 6, visited.Len())

	again, err := BuildWith(ctx, g, visited, Descriptor{Strategy: schema.StopStrategy, Start: a, Merge: m})
	require.NoError(t, err)
	assert.Empty(t, again.Commits)
	assert.Equal(t, "a", name(again.Departure))
}

func TestWorkCommits(t *testing.T) {
	g := newGraph(
		row("y", 500, "x2"),
		row("x3", 400, "x2"),
		row("x2", 300, "x1"),
		row("x1", 200, "base"),
		row("base", 100),
	)

	reverse := mustBuild(t, g, "x3", schema.ReverseStrategy)
	assert.Equal(t, []string{"x3", "x2", "x1", "base"}, names(reverse.Commits))
	assert.Equal(t, []string{"x2", "x1", "base"}, names(reverse.WorkCommits()))

	top := mustBuild(t, g, "x3", schema.TopStrategy)
	assert.Equal(t, names(top.Commits), names(top.WorkCommits()))
}

func TestPretty(t *testing.T) {
	l := mustBuild(t, mergeGraph(), "m", schema.TopStrategy)
	assert.Equal(t, "- <- [m000 ..(2).. rt00] <- -", l.Pretty(3))
	assert.Equal(t, "m000 <- [f000 e000] <- a000", l.Children[0].Pretty(3))
	assert.Equal(t, "- <- [m000 b000 a000 rt00] <- -", l.Pretty(4))
}
