package agg

import (
	"slices"
	"time"

	"github.com/Doubling-Open-Source/git-calculator/core/graph"
	"github.com/Doubling-Open-Source/git-calculator/schema"
)

// AuthorDeltas returns, for every author, the time between each commit and
// the author's previous one, anchored at the newer commit and sorted by
// anchor. Authors are keyed by email, or by name when the email is empty.
func AuthorDeltas(commits []*graph.Commit) []schema.CommitDelta {
	byAuthor := make(map[string][]*graph.Commit)
	var authors []string
	for _, c := range commits {
		a := c.Author()
		if _, ok := byAuthor[a]; !ok {
			authors = append(authors, a)
		}
		byAuthor[a] = append(byAuthor[a], c)
	}

	var deltas []schema.CommitDelta
	for _, a := range authors {
		own := byAuthor[a]
		// newest first
		slices.SortStableFunc(own, func(x, y *graph.Commit) int {
			return int(y.When - x.When)
		})
		for i := 0; i+1 < len(own); i++ {
			deltas = append(deltas, schema.CommitDelta{
				Email:   a,
				Anchor:  own[i].Time(),
				Minutes: float64(own[i].When-own[i+1].When) / 60,
			})
		}
	}

	return SortByTime(deltas, deltaAnchor)
}

func deltaAnchor(d schema.CommitDelta) time.Time {
	return d.Anchor
}

// DeltaStats buckets deltas and summarizes their minutes. P75 and StdDev are
// rounded to whole minutes, halves to even.
func DeltaStats(deltas []schema.CommitDelta, mode schema.BucketMode, size int, loc *time.Location) []schema.DeltaStatsRow {
	sorted := SortByTime(deltas, deltaAnchor)

	var rows []schema.DeltaStatsRow
	for _, b := range Group(sorted, mode, size, loc, deltaAnchor) {
		minutes := make([]float64, 0, len(b.Items))
		for _, d := range b.Items {
			minutes = append(minutes, d.Minutes)
		}
		summary, err := Summarize(minutes)
		if err != nil {
			continue
		}
		summary.P75 = roundEven(summary.P75)
		summary.StdDev = roundEven(summary.StdDev)

		start := b.Start
		if loc != nil {
			start = start.In(loc)
		}
		rows = append(rows, schema.DeltaStatsRow{
			IntervalStart: start,
			Period:        b.Key,
			Summary:       summary,
		})
	}
	return rows
}
