// Package parquet provides data structures and functions for exporting
// calculator results and analysis history to Parquet files using
// github.com/parquet-go/parquet-go.
package parquet

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Doubling-Open-Source/git-calculator/schema"
	"github.com/parquet-go/parquet-go"
)

// AnalysisRun represents a single recorded command run.
// This struct maps to the gitcalc_analysis_runs database table.
type AnalysisRun struct {
	AnalysisID int64 `parquet:"analysis_id,snappy"`

	// Command is the calculator command that produced the run (branches, deltas, ...)
	Command string `parquet:"command,dict,snappy"`

	StartTime time.Time  `parquet:"start_time,snappy"`
	EndTime   *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is nil while the run is still open
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	TotalRows int32 `parquet:"total_rows,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// BucketStats is one bucket summary of one tracked quantity.
// This struct maps to the gitcalc_bucket_stats database table.
type BucketStats struct {
	AnalysisID    int64     `parquet:"analysis_id,snappy"`
	RowIndex      int32     `parquet:"row_index,snappy"`
	Quantity      string    `parquet:"quantity,dict,snappy"`
	IntervalStart time.Time `parquet:"interval_start,snappy"`
	Period        *string   `parquet:"period,optional,snappy"`
	Count         int64     `parquet:"count,snappy"`
	Sum           float64   `parquet:"sum,snappy"`
	P50           float64   `parquet:"p50,snappy"`
	P75           float64   `parquet:"p75,snappy"`
	Mean          float64   `parquet:"mean,snappy"`
	Std           float64   `parquet:"std,snappy"`
}

// BranchStats is one flattened bucket of the branches command.
type BranchStats struct {
	IntervalStart time.Time `parquet:"interval_start,snappy"`
	Lines         int64     `parquet:"lines,snappy"`
	CommitsSum    float64   `parquet:"commits_sum,snappy"`
	CommitsP50    float64   `parquet:"commits_p50,snappy"`
	CycleTimeSum  float64   `parquet:"cycle_time_sum,snappy"`
	CycleTimeP50  float64   `parquet:"cycle_time_p50,snappy"`
	CycleTimeP75  float64   `parquet:"cycle_time_p75,snappy"`
	CycleTimeMean float64   `parquet:"cycle_time_mean,snappy"`
	CycleTimeStd  float64   `parquet:"cycle_time_std,snappy"`
	QASum         float64   `parquet:"qa_time_sum,snappy"`
	QAP50         float64   `parquet:"qa_time_p50,snappy"`
	WorkTimeSum   float64   `parquet:"work_time_sum,snappy"`
	WorkTimeP50   float64   `parquet:"work_time_p50,snappy"`
	RampSum       float64   `parquet:"ramp_time_sum,snappy"`
	RampP50       float64   `parquet:"ramp_time_p50,snappy"`
}

// Monthly is one month of the monthly command.
type Monthly struct {
	Month       string  `parquet:"month,snappy"`
	Commits     int64   `parquet:"commits,snappy"`
	Authors     int64   `parquet:"authors,snappy"`
	Throughput  float64 `parquet:"throughput,snappy"`
	FixCommits  int64   `parquet:"fix_commits,snappy"`
	FailureRate float64 `parquet:"failure_rate,snappy"`
	Label       string  `parquet:"label,dict,snappy"`
}

// AuthorWeek is one week of one author in the authors command, repeated with
// the author's total and percentile.
type AuthorWeek struct {
	Author     string  `parquet:"author,dict,snappy"`
	Week       string  `parquet:"week,snappy"`
	Commits    int64   `parquet:"commits,snappy"`
	Total      int64   `parquet:"total_commits,snappy"`
	Percentile float64 `parquet:"percentile,snappy"`
}

// Line is one branch line of the lines command.
type Line struct {
	Depth      int32     `parquet:"depth,snappy"`
	Strategy   string    `parquet:"strategy,dict,snappy"`
	Start      string    `parquet:"start,snappy"`
	Merge      *string   `parquet:"merge,optional,snappy"`
	Departure  *string   `parquet:"departure,optional,snappy"`
	Commits    int64     `parquet:"commits,snappy"`
	Work       int64     `parquet:"work_commits,snappy"`
	CycleStart time.Time `parquet:"cycle_start,snappy"`
	RampDays   *float64  `parquet:"ramp_days,optional,snappy"`
	WorkDays   *float64  `parquet:"work_days,optional,snappy"`
	CloseDays  *float64  `parquet:"close_days,optional,snappy"`
	TotalDays  *float64  `parquet:"total_days,optional,snappy"`
}

// Write encodes rows to w using the schema inferred from T's struct tags.
func Write[T any](w io.Writer, rows []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to flush parquet file: %w", err)
	}
	return nil
}

// WriteFile creates outputPath and writes rows to it.
func WriteFile[T any](rows []T, outputPath string) (err error) {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { err = errors.Join(err, file.Close()) }()
	return Write(file, rows)
}

// Read decodes every row of a Parquet stream.
func Read[T any](r io.ReaderAt, size int64) ([]T, error) {
	rows, err := parquet.Read[T](r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet data: %w", err)
	}
	return rows, nil
}

// ConvertAnalysisRunRecords converts stored runs for Parquet export.
func ConvertAnalysisRunRecords(records []schema.AnalysisRunRecord) []AnalysisRun {
	result := make([]AnalysisRun, len(records))
	for i, record := range records {
		result[i] = AnalysisRun{
			AnalysisID:    record.AnalysisID,
			Command:       record.Command,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			TotalRows:     record.TotalRows,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertBucketStatsRecords converts stored bucket summaries for Parquet export.
func ConvertBucketStatsRecords(records []schema.BucketStatsRecord) []BucketStats {
	result := make([]BucketStats, len(records))
	for i, r := range records {
		result[i] = BucketStats{
			AnalysisID:    r.AnalysisID,
			RowIndex:      r.RowIndex,
			Quantity:      r.Quantity,
			IntervalStart: r.IntervalStart,
			Period:        optional(r.Period),
			Count:         int64(r.Count),
			Sum:           r.Sum,
			P50:           r.Median,
			P75:           r.P75,
			Mean:          r.Mean,
			Std:           r.StdDev,
		}
	}
	return result
}

// ConvertBranchStatsRows flattens branch buckets into one Parquet row each.
func ConvertBranchStatsRows(rows []schema.BranchStatsRow) []BranchStats {
	result := make([]BranchStats, len(rows))
	for i, r := range rows {
		result[i] = BranchStats{
			IntervalStart: r.IntervalStart,
			Lines:         int64(r.Lines),
			CommitsSum:    r.Commits.Sum,
			CommitsP50:    r.Commits.Median,
			CycleTimeSum:  r.CycleTime.Sum,
			CycleTimeP50:  r.CycleTime.Median,
			CycleTimeP75:  r.CycleTime.P75,
			CycleTimeMean: r.CycleTime.Mean,
			CycleTimeStd:  r.CycleTime.StdDev,
			QASum:         r.QA.Sum,
			QAP50:         r.QA.Median,
			WorkTimeSum:   r.WorkTime.Sum,
			WorkTimeP50:   r.WorkTime.Median,
			RampSum:       r.Ramp.Sum,
			RampP50:       r.Ramp.Median,
		}
	}
	return result
}

// ConvertDeltaStatsRows converts author delta buckets. Rows carry no
// analysis id, so AnalysisID stays zero and Quantity is fixed.
func ConvertDeltaStatsRows(rows []schema.DeltaStatsRow) []BucketStats {
	result := make([]BucketStats, len(rows))
	for i, r := range rows {
		result[i] = BucketStats{
			RowIndex:      int32(i),
			Quantity:      "delta_minutes",
			IntervalStart: r.IntervalStart,
			Period:        optional(r.Period),
			Count:         int64(r.Count),
			Sum:           r.Sum,
			P50:           r.Median,
			P75:           r.P75,
			Mean:          r.Mean,
			Std:           r.StdDev,
		}
	}
	return result
}

// ConvertMonthlyRows converts monthly metrics. label classifies a failure rate.
func ConvertMonthlyRows(rows []schema.MonthlyRow, label func(float64) string) []Monthly {
	result := make([]Monthly, len(rows))
	for i, r := range rows {
		result[i] = Monthly{
			Month:       r.Month,
			Commits:     int64(r.Commits),
			Authors:     int64(r.Authors),
			Throughput:  r.Throughput,
			FixCommits:  int64(r.FixCommits),
			FailureRate: r.FailureRate,
			Label:       label(r.FailureRate),
		}
	}
	return result
}

// ConvertAuthorRows flattens author activity into one record per author and week.
func ConvertAuthorRows(rows []schema.AuthorActivityRow) []AuthorWeek {
	var result []AuthorWeek
	for _, r := range rows {
		for _, w := range r.Weeks {
			result = append(result, AuthorWeek{
				Author:     r.Author,
				Week:       w.Week,
				Commits:    int64(w.Commits),
				Total:      int64(r.Commits),
				Percentile: r.Percentile,
			})
		}
	}
	return result
}

// ConvertLineViews converts branch line listings.
func ConvertLineViews(views []schema.LineView) []Line {
	result := make([]Line, len(views))
	for i, v := range views {
		result[i] = Line{
			Depth:      int32(v.Depth),
			Strategy:   string(v.Strategy),
			Start:      v.Start,
			Merge:      optional(v.Merge),
			Departure:  optional(v.Departure),
			Commits:    int64(v.Commits),
			Work:       int64(v.Work),
			CycleStart: v.CycleStart,
			RampDays:   v.RampDays,
			WorkDays:   v.WorkDays,
			CloseDays:  v.CloseDays,
			TotalDays:  v.TotalDays,
		}
	}
	return result
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
