package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/Doubling-Open-Source/git-calculator/internal/contract"
	"github.com/Doubling-Open-Source/git-calculator/internal/parquet"
	"github.com/Doubling-Open-Source/git-calculator/schema"
	"github.com/dustin/go-humanize"
)

// branchQuantities names the summaries of a BranchStatsRow in column order.
var branchQuantities = []string{"commits", "cycle_time", "qa_time", "work_time", "ramp_time"}

func branchSummaries(r schema.BranchStatsRow) []schema.Summary {
	return []schema.Summary{r.Commits, r.CycleTime, r.QA, r.WorkTime, r.Ramp}
}

// PrintBranchStatsResults outputs bucketed branch cycle times in the configured format.
func PrintBranchStatsResults(rows []schema.BranchStatsRow, cfg *contract.Config, duration time.Duration) error {
	return dispatch{
		text: func(w io.Writer) error { return writeBranchStatsTable(w, rows, cfg, duration) },
		csv:  func(w io.Writer) error { return writeBranchStatsCSV(w, rows) },
		json: func(w io.Writer) error { return writeJSON(w, rows) },
		parquet: func(w io.Writer) error {
			return writeParquet(parquet.ConvertBranchStatsRows(rows))(w)
		},
	}.run(cfg)
}

func writeBranchStatsTable(w io.Writer, rows []schema.BranchStatsRow, cfg *contract.Config, duration time.Duration) error {
	headers := []string{"Bucket", "Interval Start", "Lines", "Commits", "Cycle P50", "Cycle P75", "Cycle Mean", "QA P50", "Work P50", "Ramp P50"}
	data := make([][]string, 0, len(rows))
	lines := 0
	for i, r := range rows {
		data = append(data, []string{
			humanize.Ordinal(i + 1),
			r.IntervalStart.Format(time.DateOnly),
			humanize.Comma(int64(r.Lines)),
			humanize.Comma(int64(r.Commits.Sum)),
			fmtFloat(r.CycleTime.Median),
			fmtFloat(r.CycleTime.P75),
			fmtFloat(r.CycleTime.Mean),
			fmtFloat(r.QA.Median),
			fmtFloat(r.WorkTime.Median),
			fmtFloat(r.Ramp.Median),
		})
		lines += r.Lines
	}
	title := fmt.Sprintf("Branch cycle time in days (%s, strategy %s)", cfg.Ref, cfg.Strategy)
	if err := renderTable(w, cfg, title, headers, data); err != nil {
		return err
	}
	summary := fmt.Sprintf("Showing %d buckets over %s lines", len(rows), humanize.Comma(int64(lines)))
	return footer(w, cfg, summary, duration)
}

func writeBranchStatsCSV(w io.Writer, rows []schema.BranchStatsRow) error {
	header := []string{"interval_start", "lines"}
	for _, q := range branchQuantities {
		header = append(header, summaryHeader(q)...)
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range rows {
			record := []string{fmtTime(r.IntervalStart), strconv.Itoa(r.Lines)}
			for _, s := range branchSummaries(r) {
				record = append(record, summaryFields(s)...)
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
		return nil
	})
}

// summaryHeader returns the CSV columns of one summary, prefixed when prefix is set.
func summaryHeader(prefix string) []string {
	cols := []string{"count", "sum", "p50", "p75", "mean", "std"}
	if prefix == "" {
		return cols
	}
	for i, c := range cols {
		cols[i] = prefix + "_" + c
	}
	return cols
}

func summaryFields(s schema.Summary) []string {
	return []string{
		strconv.Itoa(s.Count),
		csvFloat(s.Sum),
		csvFloat(s.Median),
		csvFloat(s.P75),
		csvFloat(s.Mean),
		csvFloat(s.StdDev),
	}
}
