package schema

import "time"

// CommitRow is one commit as reported by a history source.
// Parents are ordered: the first parent is the mainline parent.
type CommitRow struct {
	When    int64    `json:"when"`
	Hash    string   `json:"hash"`
	Tree    string   `json:"tree"`
	Parents []string `json:"parents,omitempty"`
	Email   string   `json:"email"`
	Name    string   `json:"name"`
}

// Summary holds distribution statistics for one bucket of observations.
type Summary struct {
	Count  int     `json:"count"`
	Sum    float64 `json:"sum"`
	Median float64 `json:"p50"`
	P75    float64 `json:"p75"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std"`
}

// BranchStatsRow is one bucket of branch lines. Durations are in days.
type BranchStatsRow struct {
	IntervalStart time.Time `json:"interval_start"`
	Lines         int       `json:"lines"`
	Commits       Summary   `json:"commits"`
	CycleTime     Summary   `json:"cycle_time"`
	QA            Summary   `json:"qa_time"`
	WorkTime      Summary   `json:"work_time"`
	Ramp          Summary   `json:"ramp_time"`
}

// CommitDelta is the time between two consecutive commits of one author.
// Anchor is the time of the newer commit.
type CommitDelta struct {
	Email   string    `json:"email"`
	Anchor  time.Time `json:"anchor"`
	Minutes float64   `json:"minutes"`
}

// DeltaStatsRow is one bucket of author commit deltas, in minutes.
// P75 and StdDev are rounded to whole minutes.
type DeltaStatsRow struct {
	IntervalStart time.Time `json:"interval_start"`
	Period        string    `json:"period,omitempty"`
	Summary
}

// MonthlyRow holds per-month delivery metrics.
type MonthlyRow struct {
	Month       string  `json:"month"`
	Commits     int     `json:"commits"`
	Authors     int     `json:"authors"`
	Throughput  float64 `json:"throughput"`
	FixCommits  int     `json:"fix_commits"`
	FailureRate float64 `json:"failure_rate"`
}

// WeekCount is the number of commits made in the week starting on Week, a Monday.
type WeekCount struct {
	Week    string `json:"week"`
	Commits int    `json:"commits"`
}

// AuthorActivityRow holds an author's weekly commit counts and their
// percentile rank by total commits among all authors of the log.
type AuthorActivityRow struct {
	Author     string      `json:"author"`
	Commits    int         `json:"commits"`
	Percentile float64     `json:"percentile"`
	Weeks      []WeekCount `json:"weeks"`
}

// LineView is a flattened branch line for listings. Durations are in days.
type LineView struct {
	Depth      int       `json:"depth"`
	Strategy   Strategy  `json:"strategy"`
	Start      string    `json:"start"`
	Merge      string    `json:"merge,omitempty"`
	Departure  string    `json:"departure,omitempty"`
	Commits    int       `json:"commits"`
	Work       int       `json:"work_commits"` // members counted as work; fewer than Commits only on reverse lines
	Pretty     string    `json:"pretty"`
	CycleStart time.Time `json:"cycle_start"`
	RampDays   *float64  `json:"ramp_days"`
	WorkDays   *float64  `json:"work_days"`
	CloseDays  *float64  `json:"close_days"`
	TotalDays  *float64  `json:"total_days"`
}

// BranchRef maps a branch name to the commit it points at.
type BranchRef struct {
	Ref  string `json:"ref"`
	Hash string `json:"hash"`
}
