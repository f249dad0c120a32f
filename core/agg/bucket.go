package agg

import (
	"slices"
	"time"

	"github.com/Doubling-Open-Source/git-calculator/schema"
)

// Bucket is a contiguous run of time-sorted observations.
type Bucket[T any] struct {
	Key   string    // calendar key when grouped by period
	Start time.Time // anchor of the earliest observation
	Items []T
}

// SortByTime returns a copy of items in ascending anchor order. Ties keep
// their input order.
func SortByTime[T any](items []T, at func(T) time.Time) []T {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b T) int {
		return at(a).Compare(at(b))
	})
	return sorted
}

// ByCount splits sorted items into buckets of size observations. Buckets
// smaller than MinBucketSize are dropped.
func ByCount[T any](sorted []T, size int, at func(T) time.Time) []Bucket[T] {
	size = max(size, 1)
	var out []Bucket[T]
	for i := 0; i < len(sorted); i += size {
		items := sorted[i:min(i+size, len(sorted))]
		if len(items) < MinBucketSize {
			continue
		}
		out = append(out, Bucket[T]{Start: at(items[0]), Items: items})
	}
	return out
}

// ByIntervals splits sorted items into roughly n equal buckets of
// max(1, len/n) observations each.
func ByIntervals[T any](sorted []T, n int, at func(T) time.Time) []Bucket[T] {
	return ByCount(sorted, max(1, len(sorted)/max(n, 1)), at)
}

// ByKey starts a new bucket whenever key changes along sorted items.
func ByKey[T any](sorted []T, key func(T) string, at func(T) time.Time) []Bucket[T] {
	var out []Bucket[T]
	flush := func(b Bucket[T]) {
		if len(b.Items) >= MinBucketSize {
			out = append(out, b)
		}
	}

	var cur Bucket[T]
	for _, item := range sorted {
		k := key(item)
		if len(cur.Items) > 0 && k != cur.Key {
			flush(cur)
			cur = Bucket[T]{}
		}
		if len(cur.Items) == 0 {
			cur.Key = k
			cur.Start = at(item)
		}
		cur.Items = append(cur.Items, item)
	}
	if len(cur.Items) > 0 {
		flush(cur)
	}
	return out
}

// MonthKey formats t as "YYYY-MM" in loc.
func MonthKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("2006-01")
}

// Group buckets sorted items according to mode. size is the bucket size for
// count mode and the bucket count for interval mode; a size below one aims
// for twelve buckets. Month mode groups by MonthKey in loc.
func Group[T any](sorted []T, mode schema.BucketMode, size int, loc *time.Location, at func(T) time.Time) []Bucket[T] {
	switch mode {
	case schema.IntervalBuckets:
		if size < 1 {
			size = 12
		}
		return ByIntervals(sorted, size, at)
	case schema.MonthBuckets:
		return ByKey(sorted, func(item T) string { return MonthKey(at(item), loc) }, at)
	default:
		if size < 1 {
			size = DefaultStep(len(sorted))
		}
		return ByCount(sorted, size, at)
	}
}

// DefaultStep returns the bucket size giving about twelve buckets.
func DefaultStep(n int) int {
	return max(1, n/12)
}
