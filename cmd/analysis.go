package cmd

import (
	"cmp"
	"fmt"
	"os"

	"github.com/Doubling-Open-Source/git-calculator/internal/contract"
	"github.com/Doubling-Open-Source/git-calculator/internal/iocache"
	"github.com/Doubling-Open-Source/git-calculator/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// analysisBackend reads the analysis backend settings; an empty backend means none.
func analysisBackend() (schema.DatabaseBackend, string, error) {
	if err := loadConfigFile(); err != nil {
		return "", "", err
	}
	backend := schema.DatabaseBackend(cmp.Or(viper.GetString("analysis-backend"), string(schema.NoneBackend)))
	connStr := viper.GetString("analysis-db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// analysisSetup loads minimal configuration needed for analysis operations.
func analysisSetup() error {
	backend, connStr, err := analysisBackend()
	if err != nil {
		return err
	}

	// Analysis commands never touch the history cache.
	if err := iocache.InitStores(schema.NoneBackend, "", backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize analysis: %w", err)
	}

	cfg.AnalysisBackend = backend
	cfg.AnalysisDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// analysisSetupWrapper wraps analysisSetup to provide PreRunE for analysis commands.
func analysisSetupWrapper(_ *cobra.Command, _ []string) error {
	return analysisSetup()
}

// analysisMigrateSetup resolves the backend without opening the store, so
// migrations can run against a fresh database.
func analysisMigrateSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := analysisBackend()
	if err != nil {
		return err
	}
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = iocache.GetAnalysisDBFilePath()
	}
	cfg.AnalysisBackend = backend
	cfg.AnalysisDBConnect = connStr
	return nil
}

// analysisCmd focused on analysis data management.
var analysisCmd = &cobra.Command{
	Use:   "analysis",
	Short: "Manage analysis run tracking and exports",
	Long: `Manage the record of past analysis runs.

When --analysis-backend is set, every branches, lines, deltas and monthly run
stores its configuration, duration and the bucket statistics it produced in
gitcalc_analysis_runs and gitcalc_bucket_stats.

Subcommands:
  status  - Show tracking statistics
  export  - Export data to Parquet
  clear   - Remove all tracking data
  migrate - Run database schema migrations

Examples:
  gitcalc analysis status --analysis-backend sqlite
  gitcalc analysis export --analysis-backend sqlite --output-file runs`,
}

// analysisClearCmd clears the analysis data.
var analysisClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all analysis tracking data",
	Long: `Delete all stored analysis runs and bucket statistics.

This action cannot be undone. Consider exporting data first.`,
	PreRunE: analysisSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearAnalysis(cfg.AnalysisBackend, iocache.GetAnalysisDBFilePath(), cfg.AnalysisDBConnect); err != nil {
			contract.LogFatal("Failed to clear analysis data", err)
		}
		fmt.Println("Analysis data cleared successfully.")
	},
}

// analysisStatusCmd shows analysis status.
var analysisStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display analysis tracking statistics and connection details",
	Long: `Show the analysis backend, its connection state, the number of runs and
recorded rows, the newest and oldest run and the table sizes.`,
	PreRunE: analysisSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetAnalysisStore()
		if store == nil {
			contract.LogFatal("Failed to get analysis status", fmt.Errorf("analysis backend %q is not initialized", cfg.AnalysisBackend))
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get analysis status", err)
		}
		iocache.PrintAnalysisStatus(os.Stdout, status)
	},
}

// analysisExportCmd exports analysis data to Parquet files.
var analysisExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export analysis runs and bucket statistics to Parquet",
	Long: `Write two Parquet files next to --output-file:
<output-file>.analysis_runs.parquet and <output-file>.bucket_stats.parquet.

Examples:
  gitcalc analysis export --analysis-backend sqlite --output-file gitcalc
  duckdb -c "SELECT * FROM read_parquet('gitcalc.bucket_stats.parquet') LIMIT 10"`,
	PreRunE: analysisSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteAnalysisExport(cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export analysis data", err)
		}
	},
}

// analysisMigrateCmd runs database migrations for the analysis store.
var analysisMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Move the analysis store schema to a given version. By default, migrates
to the latest version.

Examples:
  gitcalc analysis migrate --analysis-backend sqlite
  gitcalc analysis migrate --analysis-backend sqlite --target-version 1
  gitcalc analysis migrate --analysis-backend sqlite --target-version 0`,
	PreRunE: analysisMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.MigrateAnalysis(cfg.AnalysisBackend, cfg.AnalysisDBConnect, viper.GetInt("target-version")); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
