package agg

import (
	"cmp"
	"slices"
	"time"

	"github.com/Doubling-Open-Source/git-calculator/core/branch"
	"github.com/Doubling-Open-Source/git-calculator/schema"
)

type span struct {
	line   *branch.Line
	raw    branch.CycleTime
	report branch.Report
}

func (s span) start() time.Time { return s.raw.Start }

// BranchStats buckets lines by cycle start and summarizes each bucket in days.
// Only lines with members and a non-zero ramp take part. Work and cycle time
// follow the half-ramp convention of branch.Report; QA is the close time.
func BranchStats(lines []*branch.Line, mode schema.BucketMode, size int, loc *time.Location) []schema.BranchStatsRow {
	var spans []span
	for _, l := range lines {
		ct := branch.Cycle(l)
		if len(l.Commits) == 0 || ct.Ramp == nil || *ct.Ramp == 0 {
			continue
		}
		spans = append(spans, span{line: l, raw: ct, report: ct.Apportioned()})
	}
	slices.SortStableFunc(spans, func(a, b span) int {
		if c := a.raw.Start.Compare(b.raw.Start); c != 0 {
			return c
		}
		return cmp.Compare(*a.raw.Ramp, *b.raw.Ramp)
	})

	var rows []schema.BranchStatsRow
	for _, b := range Group(spans, mode, size, loc, span.start) {
		var commits, cycle, qa, work, ramp []float64
		for _, s := range b.Items {
			commits = append(commits, float64(len(s.line.Commits)))
			cycle = append(cycle, days(s.report.Total))
			qa = append(qa, Round(s.report.Close.Hours()/24, 2))
			work = append(work, Round(s.report.Work.Hours()/24, 2))
			ramp = append(ramp, Round(s.report.Ramp.Hours()/24, 2))
		}

		row := schema.BranchStatsRow{
			IntervalStart: b.Start,
			Lines:         len(b.Items),
		}
		if loc != nil {
			row.IntervalStart = row.IntervalStart.In(loc)
		}
		// Buckets hold at least MinBucketSize items, so Summarize cannot fail.
		row.Commits, _ = Summarize(commits)
		row.CycleTime, _ = Summarize(cycle)
		row.QA, _ = Summarize(qa)
		row.WorkTime, _ = Summarize(work)
		row.Ramp, _ = Summarize(ramp)

		row.Commits = roundSummary(row.Commits, 2)
		row.CycleTime = roundSummary(row.CycleTime, 2)
		row.QA = roundSummary(row.QA, 2)
		row.WorkTime = roundSummary(row.WorkTime, 2)
		row.Ramp = roundSummary(row.Ramp, 2)
		rows = append(rows, row)
	}
	return rows
}

func days(d *time.Duration) float64 {
	if d == nil {
		return 0
	}
	return Round(d.Hours()/24, 2)
}
