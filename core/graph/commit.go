package graph

import (
	"fmt"
	"time"
)

// Kind tells merge commits apart from linear ones.
type Kind string

// All commit kinds.
const (
	MergeKind  Kind = "<<"
	LinearKind Kind = "<"
)

// Commit is one node of the history graph.
// Children are only known after LinkChildren has run.
type Commit struct {
	ID       *ID
	Tree     *ID
	When     int64 // committer time, seconds since epoch
	Email    string
	Name     string
	Parents  []*ID
	Children []*Commit
}

// Hash returns the full commit hash.
func (c *Commit) Hash() string {
	return c.ID.String()
}

// Short returns the minimal display form of the hash.
func (c *Commit) Short() string {
	return c.ID.Short()
}

// Kind reports whether the commit is a merge.
func (c *Commit) Kind() Kind {
	if len(c.Parents) > 1 {
		return MergeKind
	}
	return LinearKind
}

// IsMerge reports whether the commit has more than one parent.
func (c *Commit) IsMerge() bool {
	return len(c.Parents) > 1
}

// IsRoot reports whether the commit has no parents.
func (c *Commit) IsRoot() bool {
	return len(c.Parents) == 0
}

// Time returns the commit time in UTC.
func (c *Commit) Time() time.Time {
	return time.Unix(c.When, 0).UTC()
}

// Author returns the email of the author, or the name when the email is empty.
func (c *Commit) Author() string {
	if c.Email != "" {
		return c.Email
	}
	return c.Name
}

func (c *Commit) String() string {
	return fmt.Sprintf("%s %s %s %s", c.Short(), c.Kind(), c.Time().Format(time.DateTime), c.Author())
}
