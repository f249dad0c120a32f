package agg

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/Doubling-Open-Source/git-calculator/core/graph"
	"github.com/Doubling-Open-Source/git-calculator/schema"
)

// WeekKey returns the Monday that starts the week of t in loc as YYYY-MM-DD.
func WeekKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	back := (int(t.Weekday()) + 6) % 7
	y, m, d := t.Date()
	return time.Date(y, m, d-back, 0, 0, 0, 0, loc).Format(time.DateOnly)
}

// PercentileRanks ranks totals with the max method: each value is ranked by
// how many values are less than or equal to it, as a percentage of all values.
func PercentileRanks(totals []int) []float64 {
	sorted := slices.Clone(totals)
	slices.Sort(sorted)

	ranks := make([]float64, len(totals))
	for i, v := range totals {
		// position of the first value above v
		n, _ := slices.BinarySearch(sorted, v+1)
		ranks[i] = Round(float64(n)/float64(len(totals))*100, 2)
	}
	return ranks
}

// WeeklyAuthors counts each author's commits per week in loc, weeks starting
// on Monday, and ranks authors by their total. Rows are ordered by percentile,
// then total, then author; weeks are ordered by date.
func WeeklyAuthors(commits []*graph.Commit, loc *time.Location) []schema.AuthorActivityRow {
	byAuthor := make(map[string]map[string]int)
	for _, c := range commits {
		weeks, ok := byAuthor[c.Author()]
		if !ok {
			weeks = make(map[string]int)
			byAuthor[c.Author()] = weeks
		}
		weeks[WeekKey(c.Time(), loc)]++
	}

	rows := make([]schema.AuthorActivityRow, 0, len(byAuthor))
	totals := make([]int, 0, len(byAuthor))
	for author, weeks := range byAuthor {
		row := schema.AuthorActivityRow{Author: author, Weeks: make([]schema.WeekCount, 0, len(weeks))}
		for week, n := range weeks {
			row.Weeks = append(row.Weeks, schema.WeekCount{Week: week, Commits: n})
			row.Commits += n
		}
		slices.SortFunc(row.Weeks, func(a, b schema.WeekCount) int {
			return strings.Compare(a.Week, b.Week)
		})
		rows = append(rows, row)
		totals = append(totals, row.Commits)
	}

	for i, p := range PercentileRanks(totals) {
		rows[i].Percentile = p
	}
	slices.SortFunc(rows, func(a, b schema.AuthorActivityRow) int {
		if c := cmp.Compare(b.Percentile, a.Percentile); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Commits, a.Commits); c != 0 {
			return c
		}
		return strings.Compare(a.Author, b.Author)
	})
	return rows
}
