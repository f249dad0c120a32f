package contract

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Doubling-Open-Source/git-calculator/schema"
)

// Default values for configuration.
const (
	DefaultRef       = "HEAD"
	DefaultCacheTTL  = 7 * 24 * time.Hour
	DefaultLogLevel  = "warn"
	DefaultIntervals = 12
	MaxBucketSize    = 100000
)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for the analysis.
// This struct remains the "final, validated" config.
type Config struct {
	RepoPath  string
	StartTime time.Time // zero means the beginning of history
	EndTime   time.Time // zero means now
	Location  *time.Location

	Ref        string
	Strategy   schema.Strategy
	BucketMode schema.BucketMode
	BucketSize int // observations per bucket, or bucket count for intervals; 0 = automatic
	Source     schema.SourceKind

	Output       schema.OutputMode
	OutputFile   string
	Width        int // Terminal width override (0 = auto-detect)
	ShowBranches bool

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext
	CacheTTL       time.Duration

	AnalysisBackend   schema.DatabaseBackend
	AnalysisDBConnect string // Please use env var as this is plaintext

	LogLevel  slog.Level
	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	RepoPathStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	Start             string `mapstructure:"start"`
	End               string `mapstructure:"end"`
	Timezone          string `mapstructure:"timezone"`
	Source            string `mapstructure:"source"`
	Output            string `mapstructure:"output"`
	OutputFile        string `mapstructure:"output-file"`
	Width             int    `mapstructure:"width"`
	CacheBackend      string `mapstructure:"cache-backend"`
	CacheDBConnect    string `mapstructure:"cache-db-connect"`
	CacheTTL          string `mapstructure:"cache-ttl"`
	AnalysisBackend   string `mapstructure:"analysis-backend"`
	AnalysisDBConnect string `mapstructure:"analysis-db-connect"`
	Color             string `mapstructure:"color"`
	LogLevel          string `mapstructure:"log-level"`

	// --- Fields from the analysis commands ---
	Ref      string `mapstructure:"ref"`
	Strategy string `mapstructure:"strategy"`
	By       string `mapstructure:"by"`
	Bucket   int    `mapstructure:"bucket"`
	Branches bool   `mapstructure:"branches"`
}

// Clone returns a copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processAnalysisInputs(cfg, input); err != nil {
		return err
	}
	if err := processTimeRange(cfg, input, time.Now()); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	return resolveGitPath(ctx, cfg, client, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and analysis backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(cmp.Or(input.CacheBackend, string(schema.SQLiteBackend))))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return fmt.Errorf("cache-db-connect: %w", err)
	}

	cfg.CacheTTL = DefaultCacheTTL
	if input.CacheTTL != "" {
		ttl, err := ParseLookbackDuration(input.CacheTTL)
		if err != nil {
			return fmt.Errorf("invalid --cache-ttl: %w", err)
		}
		cfg.CacheTTL = ttl
	}

	cfg.AnalysisBackend = schema.DatabaseBackend(strings.ToLower(input.AnalysisBackend))
	if cfg.AnalysisBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.AnalysisBackend]; !ok {
		return fmt.Errorf("invalid analysis backend '%s'. must be sqlite, mysql, postgresql, none", input.AnalysisBackend)
	}
	cfg.AnalysisDBConnect = input.AnalysisDBConnect
	if err := ValidateDatabaseConnectionString(cfg.AnalysisBackend, cfg.AnalysisDBConnect); err != nil {
		return fmt.Errorf("analysis-db-connect: %w", err)
	}

	// The two stores must not share a SQLite file.
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.AnalysisBackend == schema.SQLiteBackend {
		cacheDBPath := cmp.Or(cfg.CacheDBConnect, GetCacheDBFilePath())
		analysisDBPath := cmp.Or(cfg.AnalysisDBConnect, GetAnalysisDBFilePath())
		if cacheDBPath == analysisDBPath {
			return fmt.Errorf("cache and analysis storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
		}
	}
	return nil
}

// validateSimpleInputs processes and validates output and presentation fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.ShowBranches = input.Branches

	colors, err := ParseBoolString(cmp.Or(input.Color, "yes"))
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if err := cfg.LogLevel.UnmarshalText([]byte(cmp.Or(input.LogLevel, DefaultLogLevel))); err != nil {
		return fmt.Errorf("invalid --log-level '%s'. must be debug, info, warn, error", input.LogLevel)
	}

	cfg.Output = schema.OutputMode(strings.ToLower(cmp.Or(input.Output, string(schema.TextOut))))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}
	if cfg.Width < 0 {
		return fmt.Errorf("width cannot be negative (received %d)", cfg.Width)
	}
	return nil
}

// processAnalysisInputs validates the start reference, strategy, bucketing and source.
func processAnalysisInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.Ref = cmp.Or(strings.TrimSpace(input.Ref), DefaultRef)

	cfg.Strategy = schema.Strategy(strings.ToLower(cmp.Or(input.Strategy, string(schema.TopStrategy))))
	if _, ok := schema.ValidStrategies[cfg.Strategy]; !ok {
		return fmt.Errorf("invalid strategy '%s'. must be top, reverse, narrow, stop", input.Strategy)
	}

	cfg.BucketMode = schema.BucketMode(strings.ToLower(cmp.Or(input.By, string(schema.CountBuckets))))
	if _, ok := schema.ValidBucketModes[cfg.BucketMode]; !ok {
		return fmt.Errorf("invalid bucket mode '%s'. must be count, intervals, month", input.By)
	}

	if input.Bucket < 0 || input.Bucket > MaxBucketSize {
		return fmt.Errorf("bucket must be between 0 and %d (received %d)", MaxBucketSize, input.Bucket)
	}
	cfg.BucketSize = input.Bucket

	cfg.Source = schema.SourceKind(strings.ToLower(cmp.Or(input.Source, string(schema.GitSource))))
	if _, ok := schema.ValidSources[cfg.Source]; !ok {
		return fmt.Errorf("invalid source '%s'. must be git, gogit", input.Source)
	}

	loc, err := time.LoadLocation(cmp.Or(input.Timezone, "UTC"))
	if err != nil {
		return fmt.Errorf("invalid timezone '%s': %w", input.Timezone, err)
	}
	cfg.Location = loc
	return nil
}

// processTimeRange parses the optional history window.
func processTimeRange(cfg *Config, input *ConfigRawInput, now time.Time) error {
	cfg.StartTime, cfg.EndTime = time.Time{}, time.Time{}

	if input.Start != "" {
		t, err := ParseTimeBound(input.Start, now, cfg.Location)
		if err != nil {
			return fmt.Errorf("invalid --start: %w", err)
		}
		cfg.StartTime = t
	}
	if input.End != "" {
		t, err := ParseTimeBound(input.End, now, cfg.Location)
		if err != nil {
			return fmt.Errorf("invalid --end: %w", err)
		}
		cfg.EndTime = t
	}

	if !cfg.StartTime.IsZero() && !cfg.EndTime.IsZero() && cfg.StartTime.After(cfg.EndTime) {
		return fmt.Errorf("start time (%s) cannot be after end time (%s)", cfg.StartTime.Format(DateTimeFormat), cfg.EndTime.Format(DateTimeFormat))
	}
	return nil
}

// RevalidateAnalysis reapplies the analysis inputs of one request to a cloned
// config. The window is only replaced when the request names a bound.
func RevalidateAnalysis(cfg *Config, input *ConfigRawInput) error {
	if err := processAnalysisInputs(cfg, input); err != nil {
		return err
	}
	if input.Start == "" && input.End == "" {
		return nil
	}
	return processTimeRange(cfg, input, time.Now())
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
}

// resolveGitPath resolves the repository root containing the given path.
func resolveGitPath(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) error {
	absSearchPath, err := filepath.Abs(cmp.Or(input.RepoPathStr, "."))
	if err != nil {
		return err
	}
	absSearchPath = filepath.Clean(absSearchPath)

	gitContextPath := absSearchPath
	if info, statErr := os.Stat(absSearchPath); statErr == nil && !info.IsDir() {
		gitContextPath = filepath.Dir(absSearchPath)
	}

	gitRoot, err := client.GetRepoRoot(ctx, gitContextPath)
	if err != nil {
		return err
	}
	cfg.RepoPath = gitRoot
	return nil
}
