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

// PrintAuthorResults outputs weekly author activity in the configured format.
// Text output summarizes each author; the other formats list every week.
func PrintAuthorResults(rows []schema.AuthorActivityRow, cfg *contract.Config, duration time.Duration) error {
	return dispatch{
		text: func(w io.Writer) error { return writeAuthorsTable(w, rows, cfg, duration) },
		csv:  func(w io.Writer) error { return writeAuthorsCSV(w, rows) },
		json: func(w io.Writer) error { return writeJSON(w, rows) },
		parquet: func(w io.Writer) error {
			return writeParquet(parquet.ConvertAuthorRows(rows))(w)
		},
	}.run(cfg)
}

// peakWeek returns the earliest week with the most commits.
func peakWeek(weeks []schema.WeekCount) schema.WeekCount {
	var peak schema.WeekCount
	for _, w := range weeks {
		if w.Commits > peak.Commits {
			peak = w
		}
	}
	return peak
}

func writeAuthorsTable(w io.Writer, rows []schema.AuthorActivityRow, cfg *contract.Config, duration time.Duration) error {
	headers := []string{"Author", "Commits", "Active Weeks", "Peak Week", "Peak Commits", "Percentile"}
	data := make([][]string, 0, len(rows))
	commits := 0
	for _, r := range rows {
		peak := peakWeek(r.Weeks)
		data = append(data, []string{
			r.Author,
			humanize.Comma(int64(r.Commits)),
			humanize.Comma(int64(len(r.Weeks))),
			peak.Week,
			humanize.Comma(int64(peak.Commits)),
			fmtFloat(r.Percentile),
		})
		commits += r.Commits
	}
	if err := renderTable(w, cfg, "Weekly commits per author", headers, data); err != nil {
		return err
	}
	summary := fmt.Sprintf("Showing %d authors over %s commits", len(rows), humanize.Comma(int64(commits)))
	return footer(w, cfg, summary, duration)
}

func writeAuthorsCSV(w io.Writer, rows []schema.AuthorActivityRow) error {
	header := []string{"author", "week", "commits", "total_commits", "percentile"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range rows {
			for _, week := range r.Weeks {
				if err := cw.Write([]string{
					r.Author,
					week.Week,
					strconv.Itoa(week.Commits),
					strconv.Itoa(r.Commits),
					csvFloat(r.Percentile),
				}); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
