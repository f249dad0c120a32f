// Package gittest builds throwaway git repositories with controlled
// timestamps for tests.
package gittest

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// Repo is a git repository in a temporary directory.
type Repo struct {
	t   testing.TB
	Dir string
	n   int
}

// New initializes an empty repository on branch main. The test is skipped
// when git is not installed.
func New(t testing.TB) *Repo {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skipf("git binary not found in PATH: %v", err)
	}
	r := &Repo{t: t, Dir: t.TempDir()}
	r.Git("init", "-q", "-b", "main")
	r.Git("config", "user.name", "Test")
	r.Git("config", "user.email", "test@example.com")
	r.Git("config", "commit.gpgsign", "false")
	return r
}

// Git runs a git command in the repository and returns its trimmed output.
func (r *Repo) Git(args ...string) string {
	r.t.Helper()
	return r.gitAt(time.Time{}, "", args...)
}

func (r *Repo) gitAt(at time.Time, author string, args ...string) string {
	r.t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = r.Dir
	cmd.Env = append(os.Environ(), "GIT_CONFIG_NOSYSTEM=1", "HOME="+r.Dir)
	if !at.IsZero() {
		stamp := at.UTC().Format(time.RFC3339)
		cmd.Env = append(cmd.Env, "GIT_AUTHOR_DATE="+stamp, "GIT_COMMITTER_DATE="+stamp)
	}
	if author != "" {
		name, _, _ := strings.Cut(author, "@")
		cmd.Env = append(cmd.Env, "GIT_AUTHOR_NAME="+name, "GIT_AUTHOR_EMAIL="+author)
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		r.t.Fatalf("git %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return strings.TrimSpace(string(out))
}

// Commit records a change authored by author at the given time and returns
// the new commit hash.
func (r *Repo) Commit(msg string, at time.Time, author string) string {
	r.t.Helper()
	r.n++
	name := filepath.Join(r.Dir, fmt.Sprintf("file%d.txt", r.n))
	if err := os.WriteFile(name, []byte(msg+"\n"), 0o644); err != nil {
		r.t.Fatalf("write %s: %v", name, err)
	}
	r.Git("add", "-A")
	r.gitAt(at, author, "commit", "-q", "-m", msg)
	return r.Git("rev-parse", "HEAD")
}

// Branch creates a branch at HEAD and checks it out.
func (r *Repo) Branch(name string) {
	r.t.Helper()
	r.Git("checkout", "-q", "-b", name)
}

// Checkout switches to an existing branch.
func (r *Repo) Checkout(name string) {
	r.t.Helper()
	r.Git("checkout", "-q", name)
}

// Merge merges branch into the current branch with a merge commit and
// returns its hash.
func (r *Repo) Merge(branch, msg string, at time.Time) string {
	r.t.Helper()
	r.gitAt(at, "", "merge", "-q", "--no-ff", "-m", msg, branch)
	return r.Git("rev-parse", "HEAD")
}

// Feature is the history built by NewFeature.
type Feature struct {
	*Repo
	Root, Main, Work1, Work2, Merged string
}

// NewFeature builds root <- main <- merge on main with feature commits
// work1 <- work2 branching off root and merged back:
//
//	day 0 root, day 1 work1, day 2 main, day 3 work2 (fix), day 4 merge
func NewFeature(t testing.TB, base time.Time) *Feature {
	t.Helper()
	day := 24 * time.Hour
	f := &Feature{Repo: New(t)}
	f.Root = f.Commit("initial import", base, "ann@example.com")
	f.Branch("feature")
	f.Work1 = f.Commit("add parser", base.Add(day), "bob@example.com")
	f.Checkout("main")
	f.Main = f.Commit("update docs", base.Add(2*day), "ann@example.com")
	f.Checkout("feature")
	f.Work2 = f.Commit("fix parser bug", base.Add(3*day), "bob@example.com")
	f.Checkout("main")
	f.Merged = f.Merge("feature", "merge feature", base.Add(4*day))
	return f
}
