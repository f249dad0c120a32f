package core

import (
	"strings"
	"time"

	"github.com/Doubling-Open-Source/git-calculator/internal/contract"
	"github.com/Doubling-Open-Source/git-calculator/schema"
)

const day = 24 * time.Hour

var epoch = time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

// Two feature branches merged into main:
//
//	R -- M ------ X -- M2 ----- Z
//	 \           /      \      /
//	  W1 ---- W2         F1 --
const (
	hR  = "1111111111111111111111111111111111111111"
	hW1 = "2222222222222222222222222222222222222222"
	hM  = "3333333333333333333333333333333333333333"
	hW2 = "4444444444444444444444444444444444444444"
	hX  = "5555555555555555555555555555555555555555"
	hM2 = "6666666666666666666666666666666666666666"
	hF1 = "7777777777777777777777777777777777777777"
	hZ  = "8888888888888888888888888888888888888888"
)

func row(hash string, days int, author string, parents ...string) schema.CommitRow {
	name, _, _ := strings.Cut(author, "@")
	return schema.CommitRow{
		When:    epoch.Add(time.Duration(days) * day).Unix(),
		Hash:    hash,
		Tree:    strings.Repeat("f", 40),
		Parents: parents,
		Email:   author,
		Name:    name,
	}
}

// featureRows returns the history above, newest first.
func featureRows() []schema.CommitRow {
	return []schema.CommitRow{
		row(hZ, 7, "ann@example.com", hM2, hF1),
		row(hF1, 6, "bob@example.com", hX),
		row(hM2, 5, "ann@example.com", hX),
		row(hX, 4, "ann@example.com", hM, hW2),
		row(hW2, 3, "bob@example.com", hW1),
		row(hM, 2, "ann@example.com", hR),
		row(hW1, 1, "bob@example.com", hR),
		row(hR, 0, "ann@example.com"),
	}
}

func featureMessages() map[string]string {
	return map[string]string{
		hZ:  "Merge branch 'feature2'",
		hF1: "Revert config change",
		hM2: "update docs",
		hX:  "Merge branch 'feature'",
		hW2: "fix parser bug",
		hM:  "update readme",
		hW1: "add parser",
		hR:  "initial import",
	}
}

func testConfig() *contract.Config {
	return &contract.Config{
		RepoPath:   "/test/repo",
		Ref:        "HEAD",
		Strategy:   schema.TopStrategy,
		BucketMode: schema.CountBuckets,
		BucketSize: 2,
		Source:     schema.GitSource,
		Location:   time.UTC,
		CacheTTL:   contract.DefaultCacheTTL,
	}
}
