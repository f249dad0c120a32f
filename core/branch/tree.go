package branch

import (
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/Doubling-Open-Source/git-calculator/core/graph"
	"github.com/Doubling-Open-Source/git-calculator/schema"
)

// Tree yields l and every line below it in breadth-first order.
// The sequence is derived from the child links on each call.
func (l *Line) Tree() iter.Seq[*Line] {
	return func(yield func(*Line) bool) {
		queue := []*Line{l}
		for len(queue) > 0 {
			next := queue[0]
			queue = queue[1:]
			if !yield(next) {
				return
			}
			queue = append(queue, next.Children...)
		}
	}
}

// Lines collects Tree.
func (l *Line) Lines() []*Line {
	return slices.Collect(l.Tree())
}

// Level is a line with its breadth-first depth, the root being 0.
type Level struct {
	Line  *Line
	Depth int
}

// Levels walks the tree like Tree and records depths.
func Levels(root *Line) []Level {
	var out []Level
	queue := []Level{{Line: root}}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		out = append(out, next)
		for _, child := range next.Line.Children {
			queue = append(queue, Level{Line: child, Depth: next.Depth + 1})
		}
	}
	return out
}

// Len counts the members plus the two boundary slots.
func (l *Line) Len() int {
	return 2 + len(l.Commits)
}

// Timeline yields the merge commit, the members and the departure, skipping
// missing boundaries.
func (l *Line) Timeline() iter.Seq[*graph.Commit] {
	return func(yield func(*graph.Commit) bool) {
		if l.Merge != nil && !yield(l.Merge) {
			return
		}
		for _, c := range l.Commits {
			if !yield(c) {
				return
			}
		}
		if l.Departure != nil {
			yield(l.Departure)
		}
	}
}

// WorkCommits returns the members that count as work on the line. A reverse
// line only counts its oldest members up to the first one with more than one
// child, newest first.
func (l *Line) WorkCommits() []*graph.Commit {
	if l.Strategy != schema.ReverseStrategy {
		return l.Commits
	}
	var res []*graph.Commit
	for i := len(l.Commits) - 1; i >= 0; i-- {
		c := l.Commits[i]
		res = append(res, c)
		if len(c.Children) > 1 {
			break
		}
	}
	slices.Reverse(res)
	return res
}

// Pretty renders the line as "merge <- [members] <- departure", eliding the
// middle members when there are more than limit.
func (l *Line) Pretty(limit int) string {
	if len(l.Commits) <= limit {
		shorts := make([]string, 0, len(l.Commits))
		for _, c := range l.Commits {
			shorts = append(shorts, c.Short())
		}
		return fmt.Sprintf("%s <- [%s] <- %s", short(l.Merge), strings.Join(shorts, " "), short(l.Departure))
	}
	return fmt.Sprintf("%s <- [%s ..(%d).. %s] <- %s",
		short(l.Merge), short(l.Start), len(l.Commits)-2, short(l.Commits[len(l.Commits)-1]), short(l.Departure))
}

func short(c *graph.Commit) string {
	if c == nil {
		return "-"
	}
	return c.Short()
}
