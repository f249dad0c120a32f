package core

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Doubling-Open-Source/git-calculator/internal/contract"
	"github.com/Doubling-Open-Source/git-calculator/internal/iocache"
	"github.com/Doubling-Open-Source/git-calculator/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func stateSource() *contract.MockHistorySource {
	src := &contract.MockHistorySource{}
	src.On("Head", mock.Anything).Return(hZ, nil)
	src.On("Branches", mock.Anything).Return([]schema.BranchRef{{Ref: "main", Hash: hZ}}, nil)
	return src
}

func TestNewCachedHistory_NoStore(t *testing.T) {
	src := &contract.MockHistorySource{}
	assert.Same(t, src, newCachedHistory(src, testConfig(), nil))

	mgr := &iocache.MockCacheManager{}
	mgr.On("GetHistoryStore").Return(nil)
	assert.Same(t, src, newCachedHistory(src, testConfig(), mgr))
}

func TestCachedHistory_Miss(t *testing.T) {
	src := stateSource()
	src.On("CommitLog", mock.Anything).Return(featureRows(), nil)

	store := &iocache.MockCacheStore{}
	store.On("Get", mock.Anything).Return(nil, 0, int64(0), errors.New("not found"))
	store.On("Set", mock.Anything, mock.Anything, currentCacheVersion, mock.AnythingOfType("int64")).Return(nil)
	mgr := &iocache.MockCacheManager{}
	mgr.On("GetHistoryStore").Return(store)

	rows, err := newCachedHistory(src, testConfig(), mgr).CommitLog(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 8)

	src.AssertNumberOfCalls(t, "CommitLog", 1)
	store.AssertNumberOfCalls(t, "Set", 1)
}

func TestCachedHistory_Hit(t *testing.T) {
	src := stateSource()
	data, err := json.Marshal(featureRows())
	require.NoError(t, err)

	store := &iocache.MockCacheStore{}
	store.On("Get", mock.Anything).Return(data, currentCacheVersion, time.Now().Unix(), nil)
	mgr := &iocache.MockCacheManager{}
	mgr.On("GetHistoryStore").Return(store)

	rows, err := newCachedHistory(src, testConfig(), mgr).CommitLog(context.Background())
	require.NoError(t, err)
	assert.Equal(t, featureRows(), rows)
	src.AssertNotCalled(t, "CommitLog", mock.Anything)
}

func TestCachedHistory_StaleOrOldVersion(t *testing.T) {
	tests := []struct {
		name    string
		version int
		age     time.Duration
	}{
		{"stale", currentCacheVersion, 8 * day},
		{"old version", currentCacheVersion + 1, time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := stateSource()
			src.On("Messages", mock.Anything).Return(featureMessages(), nil)

			store := &iocache.MockCacheStore{}
			store.On("Get", mock.Anything).Return([]byte(`{}`), tt.version, time.Now().Add(-tt.age).Unix(), nil)
			store.On("Set", mock.Anything, mock.Anything, currentCacheVersion, mock.AnythingOfType("int64")).Return(nil)
			mgr := &iocache.MockCacheManager{}
			mgr.On("GetHistoryStore").Return(store)

			messages, err := newCachedHistory(src, testConfig(), mgr).Messages(context.Background())
			require.NoError(t, err)
			assert.Equal(t, featureMessages(), messages)
			src.AssertNumberOfCalls(t, "Messages", 1)
		})
	}
}

func TestCachedHistory_UnknownStateBypassesStore(t *testing.T) {
	src := &contract.MockHistorySource{}
	src.On("Head", mock.Anything).Return("", errors.New("no HEAD"))
	src.On("CommitLog", mock.Anything).Return(featureRows(), nil)

	store := &iocache.MockCacheStore{}
	mgr := &iocache.MockCacheManager{}
	mgr.On("GetHistoryStore").Return(store)

	_, err := newCachedHistory(src, testConfig(), mgr).CommitLog(context.Background())
	require.NoError(t, err)
	store.AssertNotCalled(t, "Get", mock.Anything)
	store.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGenerateCacheKey(t *testing.T) {
	newKey := func(cfg *contract.Config, tip string, kind string) string {
		src := &contract.MockHistorySource{}
		src.On("Head", mock.Anything).Return(hZ, nil)
		src.On("Branches", mock.Anything).Return([]schema.BranchRef{{Ref: "feature", Hash: tip}}, nil)
		mgr := &iocache.MockCacheManager{}
		mgr.On("GetHistoryStore").Return(&iocache.MockCacheStore{})
		return newCachedHistory(src, cfg, mgr).(*cachedHistory).generateCacheKey(kind)
	}

	base := newKey(testConfig(), hW2, "log")
	assert.Equal(t, base, newKey(testConfig(), hW2, "log"))
	assert.NotEqual(t, base, newKey(testConfig(), hF1, "log"), "a moved branch tip changes the key")
	assert.NotEqual(t, base, newKey(testConfig(), hW2, "messages"))

	windowed := testConfig()
	windowed.StartTime = epoch
	assert.NotEqual(t, base, newKey(windowed, hW2, "log"))
}
