package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/Doubling-Open-Source/git-calculator/internal/contract"
	"github.com/Doubling-Open-Source/git-calculator/internal/parquet"
	"github.com/Doubling-Open-Source/git-calculator/schema"
	"github.com/dustin/go-humanize"
)

// PrintDeltaStatsResults outputs bucketed author commit deltas in the configured format.
func PrintDeltaStatsResults(rows []schema.DeltaStatsRow, cfg *contract.Config, duration time.Duration) error {
	return dispatch{
		text: func(w io.Writer) error { return writeDeltaStatsTable(w, rows, cfg, duration) },
		csv:  func(w io.Writer) error { return writeDeltaStatsCSV(w, rows) },
		json: func(w io.Writer) error { return writeJSON(w, rows) },
		parquet: func(w io.Writer) error {
			return writeParquet(parquet.ConvertDeltaStatsRows(rows))(w)
		},
	}.run(cfg)
}

func writeDeltaStatsTable(w io.Writer, rows []schema.DeltaStatsRow, cfg *contract.Config, duration time.Duration) error {
	headers := []string{"Bucket", "Interval Start", "Deltas", "Sum", "P50", "P75", "Mean", "Std"}
	data := make([][]string, 0, len(rows))
	deltas := 0
	for i, r := range rows {
		bucket := humanize.Ordinal(i + 1)
		if r.Period != "" {
			bucket = r.Period
		}
		data = append(data, []string{
			bucket,
			r.IntervalStart.Format(time.DateOnly),
			humanize.Comma(int64(r.Count)),
			humanize.CommafWithDigits(r.Sum, 0),
			fmtFloat(r.Median),
			fmtFloat(r.P75),
			fmtFloat(r.Mean),
			fmtFloat(r.StdDev),
		})
		deltas += r.Count
	}
	if err := renderTable(w, cfg, "Author commit deltas in minutes", headers, data); err != nil {
		return err
	}
	summary := fmt.Sprintf("Showing %d buckets over %s deltas", len(rows), humanize.Comma(int64(deltas)))
	return footer(w, cfg, summary, duration)
}

func writeDeltaStatsCSV(w io.Writer, rows []schema.DeltaStatsRow) error {
	header := append([]string{"interval_start", "period"}, summaryHeader("")...)
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range rows {
			record := append([]string{fmtTime(r.IntervalStart), r.Period}, summaryFields(r.Summary)...)
			if err := cw.Write(record); err != nil {
				return err
			}
		}
		return nil
	})
}
