package contract

import (
	"context"
	"time"

	"github.com/Doubling-Open-Source/git-calculator/schema"
	"github.com/stretchr/testify/mock"
)

// MockGitClient is a mock type for the GitClient type.
type MockGitClient struct {
	mock.Mock
}

var _ GitClient = &MockGitClient{} // Compile-time check

// Run implements the GitClient interface.
func (m *MockGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	mockArgs := []any{ctx, repoPath}
	for _, arg := range args {
		mockArgs = append(mockArgs, arg)
	}
	ret := m.Called(mockArgs...)
	output, _ := ret.Get(0).([]byte)
	return output, ret.Error(1)
}

// GetRepoHash implements the GitClient interface.
func (m *MockGitClient) GetRepoHash(ctx context.Context, repoPath string) (string, error) {
	ret := m.Called(ctx, repoPath)
	return ret.String(0), ret.Error(1)
}

// GetRepoRoot implements the GitClient interface.
func (m *MockGitClient) GetRepoRoot(ctx context.Context, contextPath string) (string, error) {
	ret := m.Called(ctx, contextPath)
	return ret.String(0), ret.Error(1)
}

// GetCommitLog implements the GitClient interface.
func (m *MockGitClient) GetCommitLog(ctx context.Context, repoPath string, startTime, endTime time.Time) ([]byte, error) {
	ret := m.Called(ctx, repoPath, startTime, endTime)
	output, _ := ret.Get(0).([]byte)
	return output, ret.Error(1)
}

// ShowCommit implements the GitClient interface.
func (m *MockGitClient) ShowCommit(ctx context.Context, repoPath string, ref string) ([]byte, error) {
	ret := m.Called(ctx, repoPath, ref)
	output, _ := ret.Get(0).([]byte)
	return output, ret.Error(1)
}

// GetBranches implements the GitClient interface.
func (m *MockGitClient) GetBranches(ctx context.Context, repoPath string) ([]byte, error) {
	ret := m.Called(ctx, repoPath)
	output, _ := ret.Get(0).([]byte)
	return output, ret.Error(1)
}

// GetCommitMessages implements the GitClient interface.
func (m *MockGitClient) GetCommitMessages(ctx context.Context, repoPath string, startTime, endTime time.Time) ([]byte, error) {
	ret := m.Called(ctx, repoPath, startTime, endTime)
	output, _ := ret.Get(0).([]byte)
	return output, ret.Error(1)
}

// MockHistorySource is a mock type for the HistorySource type.
type MockHistorySource struct {
	mock.Mock
}

var _ HistorySource = &MockHistorySource{} // Compile-time check

// CommitLog implements the HistorySource interface.
func (m *MockHistorySource) CommitLog(ctx context.Context) ([]schema.CommitRow, error) {
	ret := m.Called(ctx)
	rows, _ := ret.Get(0).([]schema.CommitRow)
	return rows, ret.Error(1)
}

// ShowCommit implements the HistorySource interface.
func (m *MockHistorySource) ShowCommit(ctx context.Context, ref string) (schema.CommitRow, error) {
	ret := m.Called(ctx, ref)
	row, _ := ret.Get(0).(schema.CommitRow)
	return row, ret.Error(1)
}

// Branches implements the HistorySource interface.
func (m *MockHistorySource) Branches(ctx context.Context) ([]schema.BranchRef, error) {
	ret := m.Called(ctx)
	refs, _ := ret.Get(0).([]schema.BranchRef)
	return refs, ret.Error(1)
}

// Messages implements the HistorySource interface.
func (m *MockHistorySource) Messages(ctx context.Context) (map[string]string, error) {
	ret := m.Called(ctx)
	messages, _ := ret.Get(0).(map[string]string)
	return messages, ret.Error(1)
}

// Head implements the HistorySource interface.
func (m *MockHistorySource) Head(ctx context.Context) (string, error) {
	ret := m.Called(ctx)
	return ret.String(0), ret.Error(1)
}
