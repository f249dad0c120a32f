package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Doubling-Open-Source/git-calculator/core"
	"github.com/Doubling-Open-Source/git-calculator/internal/contract"
	lru "github.com/hashicorp/golang-lru/v2"
)

// historyCacheSize bounds the number of loaded graphs kept between tool calls.
const historyCacheSize = 8

// openFunc loads a history for one request config.
type openFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (*core.History, error)

type historyEntry struct {
	history *core.History
	head    string
}

// historyCache keeps loaded graphs keyed by repository and window. An entry
// is reused only while HEAD still points at the commit it was loaded for.
type historyCache struct {
	mu      sync.Mutex
	entries *lru.Cache[string, historyEntry]
	open    openFunc
}

func newHistoryCache(open openFunc) *historyCache {
	entries, _ := lru.New[string, historyEntry](historyCacheSize)
	return &historyCache{entries: entries, open: open}
}

func historyKey(cfg *contract.Config) string {
	return fmt.Sprintf("%s|%s|%d|%d", cfg.RepoPath, cfg.Source, unix(cfg.StartTime), unix(cfg.EndTime))
}

// get returns a cached history for cfg or loads a fresh one.
func (c *historyCache) get(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (*core.History, error) {
	key := historyKey(cfg)

	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries.Get(key); ok {
		head, err := entry.history.Source.Head(ctx)
		if err == nil && head == entry.head {
			slog.Debug("reusing loaded history", "repo", cfg.RepoPath, "head", head)
			return entry.history, nil
		}
		c.entries.Remove(key)
	}

	h, err := c.open(ctx, cfg, mgr)
	if err != nil {
		return nil, err
	}
	head, err := h.Source.Head(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read HEAD: %w", err)
	}
	c.entries.Add(key, historyEntry{history: h, head: head})
	return h, nil
}

func unix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}
