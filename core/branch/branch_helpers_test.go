package branch

import (
	"context"
	"strings"
	"testing"

	"github.com/Doubling-Open-Source/git-calculator/core/graph"
	"github.com/Doubling-Open-Source/git-calculator/schema"
	"github.com/stretchr/testify/require"
)

func hash(name string) string {
	return name + strings.Repeat("0", 40-len(name))
}

func row(name string, when int64, parents ...string) schema.CommitRow {
	ps := make([]string, 0, len(parents))
	for _, p := range parents {
		ps = append(ps, hash(p))
	}
	return schema.CommitRow{When: when, Hash: hash(name), Tree: hash("ee" + name), Parents: ps, Email: name + "@x.io", Name: name}
}

func newGraph(rows ...schema.CommitRow) *graph.Graph {
	g := graph.New(graph.NewRegistry(), nil)
	g.CreateFromBatch(rows)
	g.LinkChildren()
	g.Registry().Recalibrate()
	return g
}

func mustBuild(t *testing.T, g *graph.Graph, start string, strategy schema.Strategy) *Line {
	t.Helper()
	l, err := Build(context.Background(), g, hash(start), strategy)
	require.NoError(t, err)
	return l
}

func names(commits []*graph.Commit) []string {
	out := make([]string, 0, len(commits))
	for _, c := range commits {
		out = append(out, strings.TrimRight(c.Hash(), "0"))
	}
	return out
}

func name(c *graph.Commit) string {
	if c == nil {
		return ""
	}
	return strings.TrimRight(c.Hash(), "0")
}
