// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/Doubling-Open-Source/git-calculator/schema"
)

// CommitLogFormat is the git pretty format of one commit row:
// unix time, hash, tree, parents, author email and author name.
const CommitLogFormat = "%ct|%H|%T|%P|%ae|%an"

// GitClient defines the necessary operations for commit graph analysis.
// This allows the core analysis logic to be tested without needing a real git executable.
type GitClient interface {
	// --- Generic / Low-Level ---

	// Run executes a git command and returns its output.
	// Its use should be minimized in favor of the explicit methods below.
	Run(ctx context.Context, repoPath string, args ...string) ([]byte, error)

	// --- Reference Resolution ---

	// GetRepoHash returns the current HEAD commit hash of the repository.
	GetRepoHash(ctx context.Context, repoPath string) (string, error)

	// GetRepoRoot returns the absolute path to the root of the Git repository
	// containing the given context path.
	GetRepoRoot(ctx context.Context, contextPath string) (string, error)

	// --- Commit Graph ---

	// GetCommitLog returns one CommitLogFormat line per commit reachable from any ref.
	GetCommitLog(ctx context.Context, repoPath string, startTime, endTime time.Time) ([]byte, error)

	// ShowCommit returns the CommitLogFormat line of a single commit.
	ShowCommit(ctx context.Context, repoPath string, ref string) ([]byte, error)

	// GetBranches returns "<hash> <refname>" lines for local and remote branches.
	GetBranches(ctx context.Context, repoPath string) ([]byte, error)

	// GetCommitMessages returns hash and message pairs separated by \x1f, one
	// record per commit terminated by \x1e.
	GetCommitMessages(ctx context.Context, repoPath string, startTime, endTime time.Time) ([]byte, error)
}

// HistorySource is a parsed view of a repository's commit history.
type HistorySource interface {
	// CommitLog returns every commit in the configured window, newest first.
	CommitLog(ctx context.Context) ([]schema.CommitRow, error)

	// ShowCommit resolves a single commit, even outside the configured window.
	ShowCommit(ctx context.Context, ref string) (schema.CommitRow, error)

	// Branches lists branch names and the commits they point at.
	Branches(ctx context.Context) ([]schema.BranchRef, error)

	// Messages maps full commit hashes to commit messages.
	Messages(ctx context.Context) (map[string]string, error)

	// Head returns the full hash of HEAD.
	Head(ctx context.Context) (string, error)
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetHistoryStore() CacheStore
	GetAnalysisStore() AnalysisStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// AnalysisStore defines the interface for tracking analysis runs and the rows they produce.
type AnalysisStore interface {
	// BeginAnalysis creates a new analysis run and returns its unique ID
	BeginAnalysis(command string, startTime time.Time, configParams map[string]any) (int64, error)

	// EndAnalysis updates the analysis run with completion data
	EndAnalysis(analysisID int64, endTime time.Time, totalRows int) error

	// RecordBucketStats stores the summaries of one run
	RecordBucketStats(analysisID int64, records []schema.BucketStatsRecord) error

	// GetStatus returns status information about the analysis store
	GetStatus() (schema.AnalysisStatus, error)

	// GetAllAnalysisRuns returns every recorded run
	GetAllAnalysisRuns() ([]schema.AnalysisRunRecord, error)

	// GetAllBucketStats returns every recorded bucket summary
	GetAllBucketStats() ([]schema.BucketStatsRecord, error)

	// Close closes the underlying connection
	Close() error
}
