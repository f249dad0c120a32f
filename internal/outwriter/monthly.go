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

// PrintMonthlyResults outputs the monthly delivery metrics in the configured format.
func PrintMonthlyResults(rows []schema.MonthlyRow, cfg *contract.Config, duration time.Duration) error {
	return dispatch{
		text: func(w io.Writer) error { return writeMonthlyTable(w, rows, cfg, duration) },
		csv:  func(w io.Writer) error { return writeMonthlyCSV(w, rows) },
		json: func(w io.Writer) error { return writeMonthlyJSON(w, rows) },
		parquet: func(w io.Writer) error {
			return writeParquet(parquet.ConvertMonthlyRows(rows, contract.GetPlainLabel))(w)
		},
	}.run(cfg)
}

func writeMonthlyTable(w io.Writer, rows []schema.MonthlyRow, cfg *contract.Config, duration time.Duration) error {
	headers := []string{"Month", "Commits", "Authors", "Throughput", "Fixes", "Failure %", "Label"}
	data := make([][]string, 0, len(rows))
	commits := 0
	for _, r := range rows {
		data = append(data, []string{
			r.Month,
			humanize.Comma(int64(r.Commits)),
			humanize.Comma(int64(r.Authors)),
			fmtFloat(r.Throughput),
			humanize.Comma(int64(r.FixCommits)),
			strconv.FormatFloat(r.FailureRate, 'f', 1, 64),
			label(cfg, r.FailureRate),
		})
		commits += r.Commits
	}
	if err := renderTable(w, cfg, "Monthly throughput and change failure rate", headers, data); err != nil {
		return err
	}
	summary := fmt.Sprintf("Showing %d months over %s commits", len(rows), humanize.Comma(int64(commits)))
	return footer(w, cfg, summary, duration)
}

func writeMonthlyJSON(w io.Writer, rows []schema.MonthlyRow) error {
	type jsonMonthly struct {
		schema.MonthlyRow
		Label string `json:"label"`
	}
	out := make([]jsonMonthly, len(rows))
	for i, r := range rows {
		out[i] = jsonMonthly{MonthlyRow: r, Label: contract.GetPlainLabel(r.FailureRate)}
	}
	return writeJSON(w, out)
}

func writeMonthlyCSV(w io.Writer, rows []schema.MonthlyRow) error {
	header := []string{"month", "commits", "authors", "throughput", "fix_commits", "failure_rate", "label"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range rows {
			if err := cw.Write([]string{
				r.Month,
				strconv.Itoa(r.Commits),
				strconv.Itoa(r.Authors),
				csvFloat(r.Throughput),
				strconv.Itoa(r.FixCommits),
				csvFloat(r.FailureRate),
				contract.GetPlainLabel(r.FailureRate),
			}); err != nil {
				return err
			}
		}
		return nil
	})
}
