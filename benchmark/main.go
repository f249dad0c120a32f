// Package main times gitcalc commands against a set of local repositories.
// Each command runs first with the cache disabled and then with a fresh
// sqlite cache, where the first run is cold and the rest are averaged as warm.
// Results are written to a timestamped CSV file.
//
// Prerequisites:
// - gitcalc binary installed and available in PATH
// - Test repositories cloned to the specified base directory
//
// Usage: go run benchmark/main.go [repo-base-dir]
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// suite is one gitcalc invocation to time.
type suite struct {
	Command string
	Args    []string
}

// benchmarkResult holds the timings of one suite on one repository.
type benchmarkResult struct {
	Repository  string
	Command     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// benchmarkConfig holds configuration for the benchmark run.
type benchmarkConfig struct {
	RepoBase    string
	Timeout     time.Duration
	NoCacheRuns int
	CacheRuns   int
	Repos       []string
	Suites      []suite
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [repo-base-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := benchmarkConfig{
		RepoBase:    os.Args[1],
		Timeout:     5 * time.Minute,
		NoCacheRuns: 3,
		CacheRuns:   4,
		Repos:       []string{"csv-parser", "fd", "git", "kubernetes"},
		Suites: []suite{
			{Command: "branches", Args: []string{"--bucket", "50"}},
			{Command: "branches", Args: []string{"--by", "month", "--strategy", "reverse"}},
			{Command: "deltas", Args: []string{"--by", "month"}},
			{Command: "monthly"},
			{Command: "authors"},
			{Command: "lines", Args: []string{"--output", "csv"}},
		},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}
	printSummary(results)
}

// checkPrerequisites verifies that the gitcalc binary and test repositories exist.
func checkPrerequisites(config benchmarkConfig) error {
	if _, err := exec.LookPath("gitcalc"); err != nil {
		return errors.New("gitcalc binary not found in PATH")
	}
	for _, repo := range config.Repos {
		repoPath := filepath.Join(config.RepoBase, repo)
		if _, err := os.Stat(repoPath); os.IsNotExist(err) {
			return fmt.Errorf("repository %s not found at %s", repo, repoPath)
		}
	}
	return nil
}

// runBenchmarks executes every suite on every repository.
func runBenchmarks(config benchmarkConfig) []benchmarkResult {
	fmt.Printf("Starting benchmark: %d repos, %d suites, %v timeout, no-cache: %d runs, cache: %d runs\n",
		len(config.Repos), len(config.Suites), config.Timeout, config.NoCacheRuns, config.CacheRuns)

	var results []benchmarkResult
	for _, repo := range config.Repos {
		repoPath := filepath.Join(config.RepoBase, repo)
		for _, s := range config.Suites {
			results = append(results, runSuite(config, repo, repoPath, s))
		}
	}
	return results
}

// runSuite times one suite without cache and then with a fresh sqlite cache.
func runSuite(config benchmarkConfig, repo, repoPath string, s suite) benchmarkResult {
	name := strings.TrimSpace(s.Command + " " + strings.Join(s.Args, " "))
	fmt.Printf("Running %s on %s\n", name, repo)

	ncFirst, ncRest := runTimes(config, repoPath, s, []string{"--cache-backend", "none"}, config.NoCacheRuns)

	cacheDB := filepath.Join(os.TempDir(), fmt.Sprintf("gitcalc_bench_%s.db", repo))
	_ = os.Remove(cacheDB)
	defer func() { _ = os.Remove(cacheDB) }()
	cold, warm := runTimes(config, repoPath, s, []string{"--cache-backend", "sqlite", "--cache-db-connect", cacheDB}, config.CacheRuns)

	result := benchmarkResult{
		Repository:  repo,
		Command:     name,
		NoCacheTime: average(append(ncFirst, ncRest...)),
		ColdTime:    "TIMEOUT",
		WarmTime:    average(warm),
	}
	if len(cold) > 0 {
		result.ColdTime = fmt.Sprintf("%.3fs", cold[0])
	}
	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", result.NoCacheTime, result.ColdTime, result.WarmTime)
	return result
}

// runTimes runs a suite n times and splits the successful timings into the
// first run and the rest.
func runTimes(config benchmarkConfig, repoPath string, s suite, backendArgs []string, n int) (first, rest []float64) {
	args := append(append([]string{s.Command}, s.Args...), backendArgs...)

	var times []float64
	for range n {
		if secs, ok := timeRun(config.Timeout, repoPath, args); ok {
			times = append(times, secs)
		}
	}
	if len(times) == 0 {
		return nil, nil
	}
	return times[:1], times[1:]
}

// timeRun runs gitcalc once and reports whether it completed within timeout.
func timeRun(timeout time.Duration, repoPath string, args []string) (float64, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	start := time.Now()
	cmd := exec.CommandContext(ctx, "gitcalc", args...)
	cmd.Dir = repoPath
	if err := cmd.Run(); err != nil {
		return 0, false
	}
	return time.Since(start).Seconds(), true
}

func average(times []float64) string {
	if len(times) == 0 {
		return "TIMEOUT"
	}
	var sum float64
	for _, t := range times {
		sum += t
	}
	return fmt.Sprintf("%.3fs", sum/float64(len(times)))
}

// saveResults writes benchmark results to a timestamped CSV file.
func saveResults(results []benchmarkResult) error {
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("gitcalc_benchmark_%s.csv", time.Now().Format("20060102_150405")))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"repo", "cmd", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range results {
		if err := writer.Write([]string{r.Repository, r.Command, r.NoCacheTime, r.ColdTime, r.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results grouped by command.
func printSummary(results []benchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	seen := map[string]bool{}
	for _, r := range results {
		if seen[r.Command] {
			continue
		}
		seen[r.Command] = true
		fmt.Printf("%s:\n", r.Command)
		for _, other := range results {
			if other.Command == r.Command {
				fmt.Printf("  %-12s: No-cache: %s, Cold: %s, Warm: %s\n", other.Repository, other.NoCacheTime, other.ColdTime, other.WarmTime)
			}
		}
	}
}
