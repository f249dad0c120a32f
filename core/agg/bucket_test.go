package agg

import (
	"testing"
	"time"

	"github.com/Doubling-Open-Source/git-calculator/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type obs struct {
	at time.Time
	v  int
}

func obsAt(o obs) time.Time { return o.at }

func series(days ...int) []obs {
	base := time.Date(2024, time.January, 30, 12, 0, 0, 0, time.UTC)
	out := make([]obs, 0, len(days))
	for i, d := range days {
		out = append(out, obs{at: base.AddDate(0, 0, d), v: i})
	}
	return out
}

func values[T any](buckets []Bucket[T], f func(T) int) [][]int {
	var out [][]int
	for _, b := range buckets {
		var vs []int
		for _, item := range b.Items {
			vs = append(vs, f(item))
		}
		out = append(out, vs)
	}
	return out
}

func obsValue(o obs) int { return o.v }

func TestSortByTimeIsStable(t *testing.T) {
	in := series(3, 1, 1, 0)
	sorted := SortByTime(in, obsAt)
	assert.Equal(t, []int{3, 1, 2, 0}, []int{sorted[0].v, sorted[1].v, sorted[2].v, sorted[3].v})
	assert.Equal(t, 0, in[0].v, "input is left untouched")
}

func TestByCount(t *testing.T) {
	sorted := series(0, 1, 2, 3, 4, 5, 6)

	buckets := ByCount(sorted, 3, obsAt)
	assert.Equal(t, [][]int{{0, 1, 2}, {3, 4, 5}}, values(buckets, obsValue), "trailing singleton is dropped")
	assert.Equal(t, sorted[3].at, buckets[1].Start)

	assert.Empty(t, ByCount(sorted, 1, obsAt), "single observations cannot be summarized")
	assert.Empty(t, ByCount[obs](nil, 4, obsAt))
}

func TestByIntervals(t *testing.T) {
	sorted := series(0, 1, 2, 3, 4, 5, 6, 7, 8)
	assert.Equal(t, [][]int{{0, 1, 2, 3}, {4, 5, 6, 7}}, values(ByIntervals(sorted, 2, obsAt), obsValue))
	assert.Equal(t, [][]int{{0, 1, 2}, {3, 4, 5}, {6, 7, 8}}, values(ByIntervals(sorted, 3, obsAt), obsValue))
}

func TestByKeyMonths(t *testing.T) {
	// Jan 30, Jan 31, Feb 1, Feb 2, Feb 3, Mar 1
	sorted := series(0, 1, 2, 3, 4, 31)
	buckets := ByKey(sorted, func(o obs) string { return MonthKey(o.at, time.UTC) }, obsAt)

	require.Len(t, buckets, 2)
	assert.Equal(t, "2024-01", buckets[0].Key)
	assert.Equal(t, "2024-02", buckets[1].Key)
	assert.Equal(t, [][]int{{0, 1}, {2, 3, 4}}, values(buckets, obsValue))
}

func TestMonthKeyLocation(t *testing.T) {
	at := time.Date(2024, time.March, 1, 2, 0, 0, 0, time.UTC)
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	assert.Equal(t, "2024-03", MonthKey(at, nil))
	assert.Equal(t, "2024-02", MonthKey(at, ny))
}

func TestGroup(t *testing.T) {
	sorted := series(0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23)

	assert.Len(t, Group(sorted, schema.CountBuckets, 0, nil, obsAt), 12, "default step gives twelve buckets")
	assert.Len(t, Group(sorted, schema.CountBuckets, 5, nil, obsAt), 5)
	assert.Len(t, Group(sorted, schema.IntervalBuckets, 3, nil, obsAt), 3)
	assert.Len(t, Group(sorted, schema.IntervalBuckets, 0, nil, obsAt), 12)
	assert.Len(t, Group(sorted, schema.MonthBuckets, 0, time.UTC, obsAt), 2)
}

func TestDefaultStep(t *testing.T) {
	assert.Equal(t, 1, DefaultStep(0))
	assert.Equal(t, 1, DefaultStep(11))
	assert.Equal(t, 2, DefaultStep(24))
	assert.Equal(t, 8, DefaultStep(100))
}
