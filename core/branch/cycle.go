package branch

import (
	"slices"
	"time"
)

// CycleTime holds the raw durations of one line. A nil duration is undefined:
// Ramp needs a departure and members, Close a merge and members, Work
// members, and Total at least two timestamps.
type CycleTime struct {
	Start time.Time // earliest timestamp on the line, zero when there is none
	Ramp  *time.Duration
	Work  *time.Duration
	Close *time.Duration
	Total *time.Duration
}

// Cycle evaluates l from the timestamps of its merge, members and departure.
// Ramp runs from the departure to the oldest member, Close from the newest
// member to the merge, and Work spans the members.
func Cycle(l *Line) CycleTime {
	var ct CycleTime

	ts := make([]int64, 0, l.Len())
	for c := range l.Timeline() {
		ts = append(ts, c.When)
	}
	if len(ts) == 0 {
		return ct
	}

	lo, hi := slices.Min(ts), slices.Max(ts)
	ct.Start = time.Unix(lo, 0).UTC()
	if len(ts) > 1 {
		ct.Total = seconds(hi - lo)
	}
	if len(l.Commits) == 0 {
		return ct
	}

	first, last := l.Commits[0].When, l.Commits[0].When
	for _, c := range l.Commits[1:] {
		first = min(first, c.When)
		last = max(last, c.When)
	}
	if l.Departure != nil {
		ct.Ramp = seconds(first - l.Departure.When)
	}
	if l.Merge != nil {
		ct.Close = seconds(l.Merge.When - last)
	}
	ct.Work = seconds(last - first)
	return ct
}

func seconds(s int64) *time.Duration {
	d := time.Duration(s) * time.Second
	return &d
}

func orZero(d *time.Duration) time.Duration {
	if d == nil {
		return 0
	}
	return *d
}

// Report is a cycle time as reported: undefined ramp, work and close count as
// zero, and half of the ramp moves from waiting into work, so Work gains
// Ramp/2 and Total loses Ramp/2. Total stays nil when undefined.
type Report struct {
	Start time.Time
	Ramp  time.Duration
	Work  time.Duration
	Close time.Duration
	Total *time.Duration
}

// Apportioned applies the half-ramp convention.
func (ct CycleTime) Apportioned() Report {
	ramp := orZero(ct.Ramp)
	r := Report{
		Start: ct.Start,
		Ramp:  ramp,
		Work:  orZero(ct.Work) + ramp/2,
		Close: orZero(ct.Close),
	}
	if ct.Total != nil {
		total := *ct.Total - ramp/2
		r.Total = &total
	}
	return r
}
