//go:build integration

// Package integration contains integration tests for gitcalc.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags integration ./integration
package integration

import (
	"encoding/json"
	"os/exec"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/Doubling-Open-Source/git-calculator/internal/gittest"
	"github.com/Doubling-Open-Source/git-calculator/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var featureBase = time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

// TestMonthlyVerification compares monthly commit totals with git rev-list.
func TestMonthlyVerification(t *testing.T) {
	repo := gittest.NewFeature(t, featureBase)

	out, err := runGitcalc(t, repo.Dir, "monthly", "--output", "json", "--cache-backend", "none")
	require.NoError(t, err)

	var rows []schema.MonthlyRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))

	total := 0
	for _, r := range rows {
		total += r.Commits
	}
	want, err := strconv.Atoi(repo.Git("rev-list", "--all", "--count"))
	require.NoError(t, err)
	assert.Equal(t, want, total)
}

// TestAuthorsVerification compares weekly author totals with git rev-list.
func TestAuthorsVerification(t *testing.T) {
	repo := gittest.NewFeature(t, featureBase)

	out, err := runGitcalc(t, repo.Dir, "authors", "--output", "json", "--cache-backend", "none")
	require.NoError(t, err)

	var rows []schema.AuthorActivityRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))

	total := 0
	for _, r := range rows {
		weekly := 0
		for _, w := range r.Weeks {
			weekly += w.Commits
		}
		assert.Equal(t, r.Commits, weekly, r.Author)
		total += r.Commits
	}
	want, err := strconv.Atoi(repo.Git("rev-list", "--all", "--count"))
	require.NoError(t, err)
	assert.Equal(t, want, total)
}

// TestSourcesAgree runs lines with both history sources and expects identical output.
func TestSourcesAgree(t *testing.T) {
	repo := gittest.NewFeature(t, featureBase)

	viaGit, err := runGitcalc(t, repo.Dir, "lines", "--output", "json", "--cache-backend", "none", "--source", "git")
	require.NoError(t, err)
	viaGoGit, err := runGitcalc(t, repo.Dir, "lines", "--output", "json", "--cache-backend", "none", "--source", "gogit")
	require.NoError(t, err)

	assert.JSONEq(t, viaGit, viaGoGit)
}

// TestCachedRunsAgree expects a warm sqlite cache to reproduce the cold result.
func TestCachedRunsAgree(t *testing.T) {
	repo := gittest.NewFeature(t, featureBase)
	db := t.TempDir() + "/cache.db"

	cold, err := runGitcalc(t, repo.Dir, "branches", "--output", "csv", "--cache-db-connect", db)
	require.NoError(t, err)
	warm, err := runGitcalc(t, repo.Dir, "branches", "--output", "csv", "--cache-db-connect", db)
	require.NoError(t, err)
	assert.Equal(t, cold, warm)

	status, err := runGitcalc(t, repo.Dir, "cache", "status", "--cache-db-connect", db)
	require.NoError(t, err)
	assert.Contains(t, status, "sqlite")
}

// TestExternalRepoVerification clones a small public repo and checks that
// every line reported behind HEAD starts at a commit git knows about.
func TestExternalRepoVerification(t *testing.T) {
	dir := t.TempDir()
	if err := exec.Command("git", "clone", "-q", "https://github.com/mitchellh/go-homedir", dir).Run(); err != nil {
		t.Skipf("failed to clone test repo: %v", err)
	}

	out, err := runGitcalc(t, dir, "lines", "--output", "json", "--cache-backend", "none")
	require.NoError(t, err)

	var result struct {
		Lines []schema.LineView `json:"lines"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.NotEmpty(t, result.Lines)
	assert.Equal(t, 0, result.Lines[0].Depth)

	for _, l := range result.Lines {
		cmd := exec.Command("git", "cat-file", "-t", l.Start)
		cmd.Dir = dir
		kind, err := cmd.Output()
		require.NoError(t, err, "unknown start %s", l.Start)
		assert.Equal(t, "commit", strings.TrimSpace(string(kind)))
	}
}
