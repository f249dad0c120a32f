package agg

import (
	"slices"
	"strings"
	"time"

	"github.com/Doubling-Open-Source/git-calculator/core/graph"
	"github.com/Doubling-Open-Source/git-calculator/schema"
)

// IsFix reports whether a commit message contains one of schema.FailureKeywords,
// ignoring case.
func IsFix(msg string) bool {
	msg = strings.ToLower(msg)
	for _, kw := range schema.FailureKeywords {
		if strings.Contains(msg, kw) {
			return true
		}
	}
	return false
}

// Monthly counts commits, distinct authors and fix commits per calendar month
// in loc. messages maps full hashes to commit messages; a commit without a
// message is not a fix. Rows are ordered by month.
func Monthly(commits []*graph.Commit, messages map[string]string, loc *time.Location) []schema.MonthlyRow {
	type month struct {
		row     schema.MonthlyRow
		authors map[string]struct{}
	}
	months := make(map[string]*month)

	for _, c := range commits {
		key := MonthKey(c.Time(), loc)
		m, ok := months[key]
		if !ok {
			m = &month{row: schema.MonthlyRow{Month: key}, authors: make(map[string]struct{})}
			months[key] = m
		}
		m.row.Commits++
		m.authors[c.Author()] = struct{}{}
		if IsFix(messages[c.Hash()]) {
			m.row.FixCommits++
		}
	}

	rows := make([]schema.MonthlyRow, 0, len(months))
	for _, m := range months {
		m.row.Authors = len(m.authors)
		if m.row.Authors > 0 {
			m.row.Throughput = Round(float64(m.row.Commits)/float64(m.row.Authors), 2)
		}
		if m.row.Commits > 0 {
			m.row.FailureRate = Round(float64(m.row.FixCommits)/float64(m.row.Commits)*100, 1)
		}
		rows = append(rows, m.row)
	}
	slices.SortFunc(rows, func(a, b schema.MonthlyRow) int {
		return strings.Compare(a.Month, b.Month)
	})
	return rows
}
