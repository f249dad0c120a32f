// Package branch decomposes a commit graph into linear branch lines.
//
// A line starts at a commit and walks back along first parents until it
// reaches a root or a commit already claimed by another line. Lines for the
// non-first parents of member commits become child lines, in an order chosen
// by the strategy. One Visited set is shared by the whole decomposition, so a
// commit is claimed by at most one line.
package branch

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/Doubling-Open-Source/git-calculator/core/graph"
	"github.com/Doubling-Open-Source/git-calculator/schema"
)

// ErrUnknownStrategy is returned for a strategy outside top, reverse, narrow and stop.
var ErrUnknownStrategy = errors.New("unknown branch line strategy")

// ValidateStrategy checks s against the supported strategies.
func ValidateStrategy(s schema.Strategy) error {
	if _, ok := schema.ValidStrategies[s]; !ok {
		return fmt.Errorf("%w: %q (must be top, reverse, narrow or stop)", ErrUnknownStrategy, s)
	}
	return nil
}

// Visited is the set of commits claimed during one decomposition.
type Visited struct {
	seen map[*graph.Commit]struct{}
}

// NewVisited creates an empty set.
func NewVisited() *Visited {
	return &Visited{seen: make(map[*graph.Commit]struct{})}
}

// Contains reports whether c was claimed.
func (v *Visited) Contains(c *graph.Commit) bool {
	_, ok := v.seen[c]
	return ok
}

// Len returns the number of claimed commits.
func (v *Visited) Len() int {
	return len(v.seen)
}

// claim adds c and reports whether it was unclaimed before.
func (v *Visited) claim(c *graph.Commit) bool {
	if v.Contains(c) {
		return false
	}
	v.seen[c] = struct{}{}
	return true
}

// Descriptor describes a line before it is built.
type Descriptor struct {
	Strategy schema.Strategy
	Start    *graph.Commit
	Merge    *graph.Commit // commit the line feeds into, nil for a root line
}

// Line is a linear run of commits.
type Line struct {
	Strategy  schema.Strategy
	Start     *graph.Commit
	Merge     *graph.Commit
	Departure *graph.Commit   // claimed ancestor the line docks onto
	Commits   []*graph.Commit // newest first
	Children  []*Line
}

// Build resolves start and decomposes the history behind it.
func Build(ctx context.Context, g *graph.Graph, start string, strategy schema.Strategy) (*Line, error) {
	if err := ValidateStrategy(strategy); err != nil {
		return nil, err
	}
	c, err := g.Get(ctx, start)
	if err != nil {
		return nil, err
	}
	return BuildWith(ctx, g, NewVisited(), Descriptor{Strategy: strategy, Start: c})
}

// BuildWith builds the line described by d and, depending on its strategy,
// its child lines. visited is shared with every line built from this call.
func BuildWith(ctx context.Context, g *graph.Graph, visited *Visited, d Descriptor) (*Line, error) {
	if err := ValidateStrategy(d.Strategy); err != nil {
		return nil, err
	}
	if d.Start == nil {
		return nil, errors.New("branch line requires a start commit")
	}

	l := &Line{Strategy: d.Strategy, Start: d.Start, Merge: d.Merge}
	if err := l.walk(ctx, g, visited); err != nil {
		return nil, err
	}

	var err error
	switch l.Strategy {
	case schema.TopStrategy:
		err = l.spawn(ctx, g, visited, l.Commits, l.Strategy)
	case schema.ReverseStrategy:
		oldestFirst := slices.Clone(l.Commits)
		slices.Reverse(oldestFirst)
		err = l.spawn(ctx, g, visited, oldestFirst, l.Strategy)
	case schema.NarrowStrategy:
		err = l.narrow(ctx, g, visited)
	case schema.StopStrategy:
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

// walk claims the start commit and its first-parent ancestors.
// A start that is already claimed leaves the line empty, docked onto it.
func (l *Line) walk(ctx context.Context, g *graph.Graph, visited *Visited) error {
	if !visited.claim(l.Start) {
		l.Departure = l.Start
		return nil
	}
	l.Commits = append(l.Commits, l.Start)

	for o := l.Start; ; {
		if err := ctx.Err(); err != nil {
			return err
		}
		p, ok := g.Parent(ctx, o, 0)
		if !ok {
			return nil
		}
		if !visited.claim(p) {
			l.Departure = p
			return nil
		}
		l.Commits = append(l.Commits, p)
		o = p
	}
}

// spawn builds a child line for every non-first parent of members.
func (l *Line) spawn(ctx context.Context, g *graph.Graph, visited *Visited, members []*graph.Commit, strategy schema.Strategy) error {
	for _, c := range members {
		for i := 1; i < len(c.Parents); i++ {
			p, ok := g.Parent(ctx, c, i)
			if !ok {
				continue
			}
			child, err := BuildWith(ctx, g, visited, Descriptor{Strategy: strategy, Start: p, Merge: c})
			if err != nil {
				return err
			}
			l.Children = append(l.Children, child)
		}
	}
	return nil
}

// narrow grows the tree level by level: every line's direct children are
// walked before any grandchild.
func (l *Line) narrow(ctx context.Context, g *graph.Graph, visited *Visited) error {
	if err := l.spawn(ctx, g, visited, l.Commits, schema.StopStrategy); err != nil {
		return err
	}

	queue := slices.Clone(l.Children)
	for i := 0; i < len(queue); i++ {
		m := queue[i]
		if m.Strategy != schema.StopStrategy {
			continue
		}
		m.Strategy = schema.NarrowStrategy
		if err := m.spawn(ctx, g, visited, m.Commits, schema.StopStrategy); err != nil {
			return err
		}
		queue = append(queue, m.Children...)
	}
	return nil
}
