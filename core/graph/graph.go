package graph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/Doubling-Open-Source/git-calculator/schema"
)

// ErrUnresolvedRef is returned when a reference matches no commit or several.
var ErrUnresolvedRef = errors.New("unresolved reference")

// Lookup resolves a single commit by hash, prefix or symbolic ref.
type Lookup interface {
	ShowCommit(ctx context.Context, ref string) (schema.CommitRow, error)
}

// Graph owns the commit nodes of one analysis run.
type Graph struct {
	mu     sync.Mutex
	reg    *Registry
	lookup Lookup
	nodes  map[string]*Commit
	order  []*Commit
}

// New creates a graph over reg. lookup may be nil, in which case only
// commits already in the graph can be resolved.
func New(reg *Registry, lookup Lookup) *Graph {
	return &Graph{
		reg:    reg,
		lookup: lookup,
		nodes:  make(map[string]*Commit),
	}
}

// Registry returns the identifier registry shared by all nodes.
func (g *Graph) Registry() *Registry {
	return g.reg
}

// Len returns the number of commits in the graph.
func (g *Graph) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.order)
}

// Commits returns every commit in the order it was added.
func (g *Graph) Commits() []*Commit {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.order)
}

// Get resolves ref to a commit. An exact hash wins, then a unique prefix of a
// known hash, then the lookup collaborator, whose reply is cached.
func (g *Graph) Get(ctx context.Context, ref string) (*Commit, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: empty reference", ErrUnresolvedRef)
	}

	g.mu.Lock()
	c, err := g.findLocked(ref)
	g.mu.Unlock()
	if c != nil || err != nil {
		return c, err
	}

	if g.lookup == nil {
		return nil, fmt.Errorf("%w: %q is not in the loaded history", ErrUnresolvedRef, ref)
	}
	row, err := g.lookup.ShowCommit(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrUnresolvedRef, ref, err)
	}
	if row.Hash == "" {
		return nil, fmt.Errorf("%w: %q: empty lookup reply", ErrUnresolvedRef, ref)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	return g.addLocked(row), nil
}

// findLocked returns nil without error when ref is unknown to the cache.
func (g *Graph) findLocked(ref string) (*Commit, error) {
	if c, ok := g.nodes[ref]; ok {
		return c, nil
	}

	var found *Commit
	for _, c := range g.order {
		if !strings.HasPrefix(c.Hash(), ref) {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("%w: prefix %q is ambiguous (%s, %s, ...)", ErrUnresolvedRef, ref, found.Hash(), c.Hash())
		}
		found = c
	}
	return found, nil
}

// Add inserts a single row, returning the existing node if the hash is known.
func (g *Graph) Add(row schema.CommitRow) *Commit {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.addLocked(row)
}

// CreateFromBatch inserts pre-parsed rows without any lookups.
// LinkChildren must run once the whole batch is in.
func (g *Graph) CreateFromBatch(rows []schema.CommitRow) []*Commit {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]*Commit, 0, len(rows))
	for _, row := range rows {
		out = append(out, g.addLocked(row))
	}
	return out
}

func (g *Graph) addLocked(row schema.CommitRow) *Commit {
	if c, ok := g.nodes[row.Hash]; ok {
		return c
	}

	c := &Commit{
		ID:    g.reg.Register(row.Hash),
		When:  row.When,
		Email: row.Email,
		Name:  row.Name,
	}
	if row.Tree != "" {
		c.Tree = g.reg.Register(row.Tree)
	}
	for _, p := range row.Parents {
		c.Parents = append(c.Parents, g.reg.Register(p))
	}

	g.nodes[row.Hash] = c
	g.order = append(g.order, c)
	return c
}

// LinkChildren appends every commit to the child list of each of its parents.
// It is idempotent and keeps the first registration order. Parents missing
// from the graph, as in a shallow clone, are skipped.
func (g *Graph) LinkChildren() {
	g.mu.Lock()
	defer g.mu.Unlock()

	skipped := 0
	for _, c := range g.order {
		for _, p := range c.Parents {
			parent, ok := g.nodes[p.String()]
			if !ok {
				skipped++
				continue
			}
			if !slices.Contains(parent.Children, c) {
				parent.Children = append(parent.Children, c)
			}
		}
	}
	if skipped > 0 {
		slog.Debug("skipped parent edges missing from history", "edges", skipped)
	}
}

// Parent resolves the i-th parent of c. The boolean is false when c has no
// such parent or the parent cannot be resolved.
func (g *Graph) Parent(ctx context.Context, c *Commit, i int) (*Commit, bool) {
	if i >= len(c.Parents) {
		return nil, false
	}
	p, err := g.Get(ctx, c.Parents[i].String())
	if err != nil {
		slog.Debug("dropping unresolved parent edge", "commit", c.Short(), "parent", c.Parents[i].Short(), "error", err)
		return nil, false
	}
	return p, true
}
