// Package cmd defines the command-line interface for gitcalc.
package cmd

import (
	"github.com/Doubling-Open-Source/git-calculator/internal/contract"
	"github.com/Doubling-Open-Source/git-calculator/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(branchesCmd)
	rootCmd.AddCommand(linesCmd)
	rootCmd.AddCommand(deltasCmd)
	rootCmd.AddCommand(monthlyCmd)
	rootCmd.AddCommand(authorsCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(analysisCmd)
	rootCmd.AddCommand(mcpCmd)

	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	analysisCmd.AddCommand(analysisClearCmd)
	analysisCmd.AddCommand(analysisStatusCmd)
	analysisCmd.AddCommand(analysisExportCmd)
	analysisCmd.AddCommand(analysisMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	flags := rootCmd.PersistentFlags()
	flags.String("ref", contract.DefaultRef, "Git reference the analysis starts from")
	flags.String("strategy", string(schema.TopStrategy), "Branch line strategy: top or reverse or narrow or stop")
	flags.String("source", string(schema.GitSource), "History source: git or gogit")
	flags.String("start", "", "Start date in ISO8601 or time ago")
	flags.String("end", "", "End date in ISO8601 or time ago")
	flags.String("timezone", "UTC", "IANA time zone used for dates and calendar months")
	flags.String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	flags.String("output-file", "", "Optional path to write output to")
	flags.Int("width", 0, "Terminal width override (0 = auto-detect)")
	flags.String("cache-backend", string(schema.SQLiteBackend), "Cache backend: sqlite or mysql or postgresql or none")
	flags.String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	flags.String("cache-ttl", "7 days", "How long cached history stays valid")
	flags.String("analysis-backend", "", "Analysis tracking backend: sqlite or mysql or postgresql or none")
	flags.String("analysis-db-connect", "", "Database connection string for analysis tracking (must differ from cache-db-connect)")
	flags.String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	flags.String("log-level", contract.DefaultLogLevel, "Diagnostic log level: debug or info or warn or error")
	flags.String("profile", "", "Enable profiling and write profiles to files with this prefix")
	flags.String("config", "", "Path to config file")
	if err := viper.BindPFlags(flags); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bucketing flags are shared by the statistics commands, so they are
	// bound to viper by sharedSetup for the command that actually runs.
	for _, c := range []*cobra.Command{branchesCmd, deltasCmd} {
		c.Flags().String("by", string(schema.CountBuckets), "Bucket mode: count or intervals or month")
		c.Flags().Int("bucket", 0, "Observations per bucket, or bucket count with --by intervals (0 = automatic)")
	}
	linesCmd.Flags().Bool("branches", false, "Also list branch names and the commits they point at")

	analysisMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(analysisMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding analysis migrate flags", err)
	}
}
