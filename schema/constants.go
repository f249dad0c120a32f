package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching.
	DatabaseBackend string

	// Strategy represents how a branch line spawns child lines.
	Strategy string

	// SourceKind represents the implementation used to read history.
	SourceKind string

	// BucketMode represents how observations are grouped into buckets.
	BucketMode string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All branch line strategies supported.
const (
	TopStrategy     Strategy = "top" // default
	ReverseStrategy Strategy = "reverse"
	NarrowStrategy  Strategy = "narrow"
	StopStrategy    Strategy = "stop"
)

// All history sources supported.
const (
	GitSource   SourceKind = "git" // default
	GoGitSource SourceKind = "gogit"
)

// All bucket modes supported.
const (
	CountBuckets    BucketMode = "count" // default
	IntervalBuckets BucketMode = "intervals"
	MonthBuckets    BucketMode = "month"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidStrategies lists all valid branch line strategies.
var ValidStrategies = map[Strategy]struct{}{
	TopStrategy:     {},
	ReverseStrategy: {},
	NarrowStrategy:  {},
	StopStrategy:    {},
}

// ValidSources lists all valid history sources.
var ValidSources = map[SourceKind]struct{}{
	GitSource:   {},
	GoGitSource: {},
}

// ValidBucketModes lists all valid bucket modes.
var ValidBucketModes = map[BucketMode]struct{}{
	CountBuckets:    {},
	IntervalBuckets: {},
	MonthBuckets:    {},
}

// FailureKeywords mark a commit message as a fix for an earlier change.
var FailureKeywords = []string{"revert", "hotfix", "bugfix", "bug", "fix", "problem", "issue"}
