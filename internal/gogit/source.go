// Package gogit reads commit history in-process with go-git instead of
// shelling out to the git binary.
package gogit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Doubling-Open-Source/git-calculator/internal/contract"
	"github.com/Doubling-Open-Source/git-calculator/schema"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	lru "github.com/hashicorp/golang-lru/v2"
)

// showCacheSize bounds the number of single-commit lookups kept in memory.
const showCacheSize = 4096

// Source implements contract.HistorySource over a go-git repository.
type Source struct {
	repo       *git.Repository
	start, end time.Time
	shown      *lru.Cache[string, schema.CommitRow]
}

var _ contract.HistorySource = &Source{} // Compile-time check

// Open opens the repository containing path. Zero start or end leave that
// side of the window unbounded.
func Open(path string, start, end time.Time) (*Source, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository %q: %w", path, err)
	}
	shown, err := lru.New[string, schema.CommitRow](showCacheSize)
	if err != nil {
		return nil, err
	}
	return &Source{repo: repo, start: start, end: end, shown: shown}, nil
}

func toRow(c *object.Commit) schema.CommitRow {
	var parents []string
	for _, p := range c.ParentHashes {
		parents = append(parents, p.String())
	}
	return schema.CommitRow{
		When:    c.Committer.When.Unix(),
		Hash:    c.Hash.String(),
		Tree:    c.TreeHash.String(),
		Parents: parents,
		Email:   c.Author.Email,
		Name:    c.Author.Name,
	}
}

// walk visits every commit reachable from any ref within the window, newest first.
func (s *Source) walk(ctx context.Context, visit func(*object.Commit)) error {
	opts := &git.LogOptions{All: true, Order: git.LogOrderCommitterTime}
	if !s.start.IsZero() {
		opts.Since = &s.start
	}
	if !s.end.IsZero() {
		opts.Until = &s.end
	}

	iter, err := s.repo.Log(opts)
	if err != nil {
		return fmt.Errorf("failed to read commit log: %w", err)
	}
	defer iter.Close()

	return iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		visit(c)
		return nil
	})
}

// CommitLog implements contract.HistorySource.
func (s *Source) CommitLog(ctx context.Context) ([]schema.CommitRow, error) {
	var rows []schema.CommitRow
	err := s.walk(ctx, func(c *object.Commit) {
		rows = append(rows, toRow(c))
	})
	return rows, err
}

// ShowCommit implements contract.HistorySource. Replies are memoized by ref.
func (s *Source) ShowCommit(ctx context.Context, ref string) (schema.CommitRow, error) {
	if err := ctx.Err(); err != nil {
		return schema.CommitRow{}, err
	}
	if row, ok := s.shown.Get(ref); ok {
		return row, nil
	}

	hash, err := s.repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return schema.CommitRow{}, fmt.Errorf("cannot resolve %q: %w", ref, err)
	}
	c, err := s.repo.CommitObject(*hash)
	if err != nil {
		return schema.CommitRow{}, fmt.Errorf("cannot read commit %s: %w", hash, err)
	}

	row := toRow(c)
	s.shown.Add(ref, row)
	return row, nil
}

// Branches implements contract.HistorySource.
func (s *Source) Branches(ctx context.Context) ([]schema.BranchRef, error) {
	iter, err := s.repo.References()
	if err != nil {
		return nil, fmt.Errorf("failed to list references: %w", err)
	}
	defer iter.Close()

	var refs []schema.BranchRef
	err = iter.ForEach(func(r *plumbing.Reference) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if r.Type() != plumbing.HashReference || !(r.Name().IsBranch() || r.Name().IsRemote()) {
			return nil
		}
		refs = append(refs, schema.BranchRef{Ref: r.Name().Short(), Hash: r.Hash().String()})
		return nil
	})
	return refs, err
}

// Messages implements contract.HistorySource.
func (s *Source) Messages(ctx context.Context) (map[string]string, error) {
	messages := make(map[string]string)
	err := s.walk(ctx, func(c *object.Commit) {
		messages[c.Hash.String()] = strings.TrimSpace(c.Message)
	})
	return messages, err
}

// Head implements contract.HistorySource.
func (s *Source) Head(_ context.Context) (string, error) {
	ref, err := s.repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return "", fmt.Errorf("repository has no commits: %w", err)
	}
	if err != nil {
		return "", err
	}
	return ref.Hash().String(), nil
}
