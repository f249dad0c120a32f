// Package agg groups timestamped observations into buckets and summarizes them.
package agg

import (
	"errors"
	"math"
	"slices"

	"github.com/Doubling-Open-Source/git-calculator/schema"
)

// MinBucketSize is the smallest bucket that can be summarized, since the
// sample standard deviation needs two observations.
const MinBucketSize = 2

// ErrInsufficientData is returned when fewer than MinBucketSize values are given.
var ErrInsufficientData = errors.New("at least two observations are required")

// Sum adds values.
func Sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

// Mean returns the arithmetic mean, or 0 for no values.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return Sum(values) / float64(len(values))
}

// Median returns the middle value, averaging the middle pair for even counts.
func Median(values []float64) float64 {
	return Percentile(values, 0.5)
}

// Percentile uses the inclusive method: the p-th percentile sits at position
// p*(n-1) of the sorted values, interpolated linearly between neighbors.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	if lo < 0 {
		return sorted[0]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// StdDev returns the sample standard deviation (n-1 denominator).
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Mean(values)
	var sq float64
	for _, v := range values {
		sq += (v - mean) * (v - mean)
	}
	return math.Sqrt(sq / float64(len(values)-1))
}

// Summarize computes the statistics of one bucket.
func Summarize(values []float64) (schema.Summary, error) {
	if len(values) < MinBucketSize {
		return schema.Summary{}, ErrInsufficientData
	}
	return schema.Summary{
		Count:  len(values),
		Sum:    Sum(values),
		Median: Median(values),
		P75:    Percentile(values, 0.75),
		Mean:   Mean(values),
		StdDev: StdDev(values),
	}, nil
}

// Round rounds v to the given number of decimal places, halves away from zero.
func Round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

func roundSummary(s schema.Summary, places int) schema.Summary {
	s.Sum = Round(s.Sum, places)
	s.Median = Round(s.Median, places)
	s.P75 = Round(s.P75, places)
	s.Mean = Round(s.Mean, places)
	s.StdDev = Round(s.StdDev, places)
	return s
}

func roundEven(v float64) float64 {
	return math.RoundToEven(v)
}
