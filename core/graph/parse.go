package graph

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/Doubling-Open-Source/git-calculator/schema"
)

// ParseLogRow parses one "%ct|%H|%T|%P|%ae|%an" line.
// The author name is the last field and may itself contain '|'.
func ParseLogRow(line string) (schema.CommitRow, error) {
	parts := strings.SplitN(strings.TrimRight(line, "\r"), "|", 6)
	if len(parts) < 6 {
		return schema.CommitRow{}, fmt.Errorf("malformed log row %q: expected 6 fields, got %d", line, len(parts))
	}

	when, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return schema.CommitRow{}, fmt.Errorf("malformed timestamp in log row %q: %w", line, err)
	}
	hash := strings.TrimSpace(parts[1])
	if hash == "" {
		return schema.CommitRow{}, fmt.Errorf("malformed log row %q: empty hash", line)
	}

	// Root commits keep nil parents, matching rows decoded from the cache.
	var parents []string
	if fields := strings.Fields(parts[3]); len(fields) > 0 {
		parents = fields
	}

	return schema.CommitRow{
		When:    when,
		Hash:    hash,
		Tree:    strings.TrimSpace(parts[2]),
		Parents: parents,
		Email:   strings.TrimSpace(parts[4]),
		Name:    strings.TrimSpace(parts[5]),
	}, nil
}

// ParseLog parses the output of git log with the row format, skipping blank lines.
func ParseLog(out []byte) ([]schema.CommitRow, error) {
	var rows []schema.CommitRow
	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		row, err := ParseLogRow(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan git log output: %w", err)
	}
	return rows, nil
}

// ParseBranches parses "%(objectname) %(refname)" lines into branch refs.
// Symbolic HEAD entries are dropped and ref prefixes are stripped.
func ParseBranches(out []byte) []schema.BranchRef {
	var refs []schema.BranchRef
	for line := range strings.Lines(string(out)) {
		hash, ref, ok := strings.Cut(strings.TrimSpace(line), " ")
		if !ok || hash == "" {
			continue
		}
		ref = strings.TrimPrefix(ref, "refs/heads/")
		ref = strings.TrimPrefix(ref, "refs/remotes/")
		if ref == "HEAD" || strings.HasSuffix(ref, "/HEAD") {
			continue
		}
		refs = append(refs, schema.BranchRef{Ref: ref, Hash: hash})
	}
	return refs
}

// ParseMessages parses "%H%x1f%B%x1e" records into a hash to message map.
func ParseMessages(out []byte) map[string]string {
	messages := make(map[string]string)
	for record := range strings.SplitSeq(string(out), "\x1e") {
		hash, body, ok := strings.Cut(strings.TrimSpace(record), "\x1f")
		if !ok || hash == "" {
			continue
		}
		messages[hash] = strings.TrimSpace(body)
	}
	return messages
}
