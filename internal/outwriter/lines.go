package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Doubling-Open-Source/git-calculator/internal/contract"
	"github.com/Doubling-Open-Source/git-calculator/internal/parquet"
	"github.com/Doubling-Open-Source/git-calculator/schema"
)

// PrintLineViews outputs the branch line tree, followed by the branch tips when refs is non-empty.
func PrintLineViews(views []schema.LineView, refs []schema.BranchRef, cfg *contract.Config, duration time.Duration) error {
	return dispatch{
		text: func(w io.Writer) error { return writeLinesTable(w, views, refs, cfg, duration) },
		csv:  func(w io.Writer) error { return writeLinesCSV(w, views) },
		json: func(w io.Writer) error { return writeLinesJSON(w, views, refs) },
		parquet: func(w io.Writer) error {
			return writeParquet(parquet.ConvertLineViews(views))(w)
		},
	}.run(cfg)
}

func writeLinesTable(w io.Writer, views []schema.LineView, refs []schema.BranchRef, cfg *contract.Config, duration time.Duration) error {
	headers := []string{"Depth", "Strategy", "Line", "Commits", "Counted", "Cycle Start", "Ramp", "Work", "Close", "Total"}
	data := make([][]string, 0, len(views))
	for _, v := range views {
		data = append(data, []string{
			strconv.Itoa(v.Depth),
			string(v.Strategy),
			strings.Repeat("  ", v.Depth) + v.Pretty,
			strconv.Itoa(v.Commits),
			strconv.Itoa(v.Work),
			v.CycleStart.Format(time.DateTime),
			fmtDays(v.RampDays),
			fmtDays(v.WorkDays),
			fmtDays(v.CloseDays),
			fmtDays(v.TotalDays),
		})
	}
	if err := renderTable(w, cfg, fmt.Sprintf("Branch lines behind %s (days)", cfg.Ref), headers, data); err != nil {
		return err
	}

	if len(refs) > 0 {
		refRows := make([][]string, len(refs))
		for i, r := range refs {
			refRows[i] = []string{r.Ref, r.Hash}
		}
		if err := renderTable(w, cfg, "Branches", []string{"Ref", "Hash"}, refRows); err != nil {
			return err
		}
	}
	return footer(w, cfg, fmt.Sprintf("Showing %d lines", len(views)), duration)
}

func writeLinesJSON(w io.Writer, views []schema.LineView, refs []schema.BranchRef) error {
	out := struct {
		Lines    []schema.LineView  `json:"lines"`
		Branches []schema.BranchRef `json:"branches,omitempty"`
	}{views, refs}
	return writeJSON(w, out)
}

func writeLinesCSV(w io.Writer, views []schema.LineView) error {
	header := []string{"depth", "strategy", "start", "merge", "departure", "commits", "work_commits", "pretty",
		"cycle_start", "ramp_days", "work_days", "close_days", "total_days"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, v := range views {
			if err := cw.Write([]string{
				strconv.Itoa(v.Depth),
				string(v.Strategy),
				v.Start,
				v.Merge,
				v.Departure,
				strconv.Itoa(v.Commits),
				strconv.Itoa(v.Work),
				v.Pretty,
				fmtTime(v.CycleStart),
				csvDays(v.RampDays),
				csvDays(v.WorkDays),
				csvDays(v.CloseDays),
				csvDays(v.TotalDays),
			}); err != nil {
				return err
			}
		}
		return nil
	})
}
