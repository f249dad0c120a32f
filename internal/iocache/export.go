package iocache

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Doubling-Open-Source/git-calculator/internal/contract"
	"github.com/Doubling-Open-Source/git-calculator/internal/parquet"
)

// ExecuteAnalysisExport writes every recorded run and bucket summary to
// <outputFile>.analysis_runs.parquet and <outputFile>.bucket_stats.parquet.
func ExecuteAnalysisExport(outputFile string) error {
	return exportAnalysis(os.Stdout, Manager.GetAnalysisStore(), outputFile)
}

func exportAnalysis(w io.Writer, store contract.AnalysisStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("analysis tracking is not enabled")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get analysis status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no analysis data found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total analysis runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total bucket records: %d\n", status.TableSizes[bucketStatsTable])

	analysisRuns, err := store.GetAllAnalysisRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve analysis runs: %w", err)
	}
	bucketStats, err := store.GetAllBucketStats()
	if err != nil {
		return fmt.Errorf("failed to retrieve bucket stats: %w", err)
	}

	runs := parquet.ConvertAnalysisRunRecords(analysisRuns)
	runsFile := outputFile + ".analysis_runs.parquet"
	if err := parquet.WriteFile(runs, runsFile); err != nil {
		return fmt.Errorf("failed to write analysis runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d analysis runs to: %s\n", len(runs), runsFile)

	stats := parquet.ConvertBucketStatsRecords(bucketStats)
	statsFile := outputFile + ".bucket_stats.parquet"
	if err := parquet.WriteFile(stats, statsFile); err != nil {
		return fmt.Errorf("failed to write bucket stats: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d bucket records to: %s\n", len(stats), statsFile)
	return nil
}
