package mcp

import (
	"context"
	"testing"
	"time"

	"github.com/Doubling-Open-Source/git-calculator/core"
	"github.com/Doubling-Open-Source/git-calculator/internal/contract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHistoryCache(t *testing.T) {
	ctx := context.Background()
	src := &contract.MockHistorySource{}
	src.On("Head", mock.Anything).Return("aaaa", nil).Times(2)
	src.On("Head", mock.Anything).Return("bbbb", nil)

	opened := 0
	cache := newHistoryCache(func(context.Context, *contract.Config, contract.CacheManager) (*core.History, error) {
		opened++
		return &core.History{Source: src}, nil
	})
	cfg := &contract.Config{RepoPath: "/repo"}

	first, err := cache.get(ctx, cfg, nil)
	require.NoError(t, err)
	second, err := cache.get(ctx, cfg, nil)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, opened)

	// HEAD moved: the entry is reloaded.
	third, err := cache.get(ctx, cfg, nil)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Equal(t, 2, opened)

	// A different window is a different entry.
	windowed := cfg.Clone()
	windowed.StartTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err = cache.get(ctx, windowed, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, opened)
}

func TestHistoryCache_OpenError(t *testing.T) {
	cache := newHistoryCache(func(context.Context, *contract.Config, contract.CacheManager) (*core.History, error) {
		return nil, core.ErrNoCommits
	})
	_, err := cache.get(context.Background(), &contract.Config{RepoPath: "/repo"}, nil)
	assert.ErrorIs(t, err, core.ErrNoCommits)
	assert.Zero(t, cache.entries.Len())
}

func TestHistoryKey(t *testing.T) {
	a := &contract.Config{RepoPath: "/repo", Source: "git"}
	b := a.Clone()
	b.Source = "gogit"
	assert.NotEqual(t, historyKey(a), historyKey(b))
	assert.Equal(t, "/repo|git|0|0", historyKey(a))
}
