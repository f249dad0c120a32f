// Package outwriter renders calculator results as text tables, CSV, JSON or Parquet.
package outwriter

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Doubling-Open-Source/git-calculator/internal/contract"
	"github.com/Doubling-Open-Source/git-calculator/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"golang.org/x/term"
)

// defaultTermWidth is used when stdout is not a terminal.
const defaultTermWidth = 80

// TerminalWidth returns the width override from cfg, else the width of the
// terminal attached to stdout.
func TerminalWidth(cfg *contract.Config) int {
	if cfg.Width > 0 {
		return cfg.Width
	}
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return defaultTermWidth
	}
	return width
}

// dispatch routes one result set to the writer for the configured output mode.
type dispatch struct {
	text    func(io.Writer) error
	csv     func(io.Writer) error
	json    func(io.Writer) error
	parquet func(io.Writer) error
}

func (d dispatch) run(cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, d.json, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, d.csv, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return fmt.Errorf("--output-file is required for %s output", schema.ParquetOut)
		}
		if err := writeWithFile(cfg.OutputFile, d.parquet, "Wrote Parquet"); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		if err := writeWithFile(cfg.OutputFile, d.text, "Wrote text"); err != nil {
			return fmt.Errorf("error writing table output: %w", err)
		}
	}
	return nil
}

// renderTable writes a right-aligned table with a bold title line above it.
func renderTable(w io.Writer, cfg *contract.Config, title string, headers []string, rows [][]string) error {
	if _, err := fmt.Fprintln(w, headerText(cfg, title)); err != nil {
		return err
	}
	table := tablewriter.NewWriter(w)
	table.Header(headers)
	table.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignRight
	})
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

// footer prints the run summary under a table.
func footer(w io.Writer, cfg *contract.Config, summary string, duration time.Duration) error {
	_, err := fmt.Fprintf(w, "%s\nCompleted in %v. Cache backend: %s\n", summary, duration.Round(time.Millisecond), cfg.CacheBackend)
	return err
}

func headerText(cfg *contract.Config, s string) string {
	if cfg.UseColors {
		return contract.HeaderColor.Sprint(s)
	}
	return s
}

func label(cfg *contract.Config, rate float64) string {
	if cfg.UseColors {
		return contract.GetColorLabel(rate)
	}
	return contract.GetPlainLabel(rate)
}
