package agg

import (
	"fmt"
	"testing"
	"time"

	"github.com/Doubling-Open-Source/git-calculator/core/graph"
	"github.com/Doubling-Open-Source/git-calculator/schema"
)

const day = int64(24 * 60 * 60)

var epoch = time.Date(2023, time.September, 1, 0, 0, 0, 0, time.UTC).Unix()

type history struct {
	t *testing.T
	g *graph.Graph
	n int
}

func newHistory(t *testing.T) *history {
	return &history{t: t, g: graph.New(graph.NewRegistry(), nil)}
}

// commit adds a commit by author made the given number of days after epoch.
func (h *history) commit(author string, days float64) *graph.Commit {
	h.n++
	return h.g.Add(schema.CommitRow{
		When:  epoch + int64(days*float64(day)),
		Hash:  fmt.Sprintf("%040x", h.n),
		Tree:  fmt.Sprintf("%039xf", h.n),
		Email: author,
		Name:  author,
	})
}

func minutes(rows []schema.DeltaStatsRow) [][4]float64 {
	out := make([][4]float64, 0, len(rows))
	for _, r := range rows {
		out = append(out, [4]float64{r.Sum, r.Mean, r.P75, r.StdDev})
	}
	return out
}
