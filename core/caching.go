package core

import (
	"cmp"
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/Doubling-Open-Source/git-calculator/internal/contract"
	"github.com/Doubling-Open-Source/git-calculator/schema"
)

// currentCacheVersion defines the version of the cache schema
const currentCacheVersion = 1

// cachedHistory stores the bulk reads of a history source in the history cache.
// Single-commit lookups and branch listings always go to the source.
type cachedHistory struct {
	contract.HistorySource
	store contract.CacheStore
	cfg   *contract.Config
	ttl   time.Duration
	state func() (string, error)
}

// newCachedHistory returns src unchanged when no history store is configured.
func newCachedHistory(src contract.HistorySource, cfg *contract.Config, mgr contract.CacheManager) contract.HistorySource {
	if mgr == nil {
		return src
	}
	store := mgr.GetHistoryStore()
	if store == nil {
		return src
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = contract.DefaultCacheTTL
	}
	return &cachedHistory{
		HistorySource: src,
		store:         store,
		cfg:           cfg,
		ttl:           ttl,
		state: sync.OnceValues(func() (string, error) {
			return repoState(context.Background(), src)
		}),
	}
}

// CommitLog implements contract.HistorySource.
func (c *cachedHistory) CommitLog(ctx context.Context) ([]schema.CommitRow, error) {
	return cached(c, c.generateCacheKey("log"), func() ([]schema.CommitRow, error) {
		return c.HistorySource.CommitLog(ctx)
	})
}

// Messages implements contract.HistorySource.
func (c *cachedHistory) Messages(ctx context.Context) (map[string]string, error) {
	return cached(c, c.generateCacheKey("messages"), func() (map[string]string, error) {
		return c.HistorySource.Messages(ctx)
	})
}

// repoState fingerprints HEAD and every branch tip, since the log spans all refs.
func repoState(ctx context.Context, src contract.HistorySource) (string, error) {
	head, err := src.Head(ctx)
	if err != nil {
		return "", err
	}
	refs, err := src.Branches(ctx)
	if err != nil {
		return "", err
	}
	slices.SortFunc(refs, func(a, b schema.BranchRef) int { return cmp.Compare(a.Ref, b.Ref) })
	h := sha256.New()
	h.Write([]byte(head))
	for _, r := range refs {
		fmt.Fprintf(h, "\n%s %s", r.Ref, r.Hash)
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// cached returns the entry under key, or computes and stores it.
func cached[T any](c *cachedHistory, key string, compute func() (T, error)) (T, error) {
	if key != "" {
		if result, ok := checkCacheHit[T](c.store, key, c.ttl); ok {
			slog.Debug("history cache hit", "key", key[:12])
			return result, nil
		}
	}
	return computeAndStore(c.store, key, compute)
}

// checkCacheHit attempts to retrieve and validate a cached result
func checkCacheHit[T any](store contract.CacheStore, key string, ttl time.Duration) (T, bool) {
	var result T
	data, version, ts, err := store.Get(key)
	if err != nil {
		return result, false // Cache miss
	}

	// Validate version and staleness
	if version != currentCacheVersion || time.Since(time.Unix(ts, 0)) > ttl {
		return result, false
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return result, false
	}
	return result, true
}

// computeAndStore computes the result and stores it in cache
func computeAndStore[T any](store contract.CacheStore, key string, compute func() (T, error)) (T, error) {
	result, err := compute()
	if err != nil || key == "" {
		return result, err
	}

	if data, err := json.Marshal(result); err == nil {
		if err := store.Set(key, data, currentCacheVersion, time.Now().Unix()); err != nil {
			slog.Debug("history cache write failed", "error", err)
		}
	}
	return result, nil
}

// generateCacheKey creates a unique key based on the history window and the
// repository state. An empty key disables caching, which happens when the
// state cannot be read.
func (c *cachedHistory) generateCacheKey(kind string) string {
	state, err := c.state()
	if err != nil {
		return ""
	}
	key := fmt.Sprintf("%s:%d:%d:%s:%s",
		c.cfg.RepoPath,
		unixOrZero(c.cfg.StartTime),
		unixOrZero(c.cfg.EndTime),
		c.cfg.Source,
		state,
	)
	return fmt.Sprintf("%x:%s", sha256.Sum256([]byte(key)), kind)
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}
