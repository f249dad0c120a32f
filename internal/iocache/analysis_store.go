package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Doubling-Open-Source/git-calculator/internal/contract"
	"github.com/Doubling-Open-Source/git-calculator/schema"
)

// Table names for analysis tracking.
const (
	analysisRunsTable = "gitcalc_analysis_runs"
	bucketStatsTable  = "gitcalc_bucket_stats"
)

// AnalysisStoreImpl implements the AnalysisStore interface.
type AnalysisStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.AnalysisStore = &AnalysisStoreImpl{} // Compile-time check

// NewAnalysisStore creates a new AnalysisStore with the specified backend.
func NewAnalysisStore(backend schema.DatabaseBackend, connStr string) (contract.AnalysisStore, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled tracking
		return &AnalysisStoreImpl{backend: backend}, nil
	}

	db, err := openDatabase(backend, connStr, GetAnalysisDBFilePath())
	if err != nil {
		return nil, err
	}

	if err := createAnalysisTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create analysis tables: %w", err)
	}
	return &AnalysisStoreImpl{db: db, backend: backend}, nil
}

// createAnalysisTables creates the analysis tracking tables.
func createAnalysisTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{analysisRunsTable, getCreateAnalysisRunsQuery(backend)},
		{bucketStatsTable, getCreateBucketStatsQuery(backend)},
	}
	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

// getCreateAnalysisRunsQuery returns the CREATE TABLE query for gitcalc_analysis_runs.
func getCreateAnalysisRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(analysisRunsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				command VARCHAR(32) NOT NULL,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				total_rows INT,
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id BIGSERIAL PRIMARY KEY,
				command TEXT NOT NULL,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				total_rows INT,
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id INTEGER PRIMARY KEY AUTOINCREMENT,
				command TEXT NOT NULL,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				total_rows INTEGER,
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// getCreateBucketStatsQuery returns the CREATE TABLE query for gitcalc_bucket_stats.
func getCreateBucketStatsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(bucketStatsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id BIGINT NOT NULL,
				row_index INT NOT NULL,
				quantity VARCHAR(32) NOT NULL,
				interval_start DATETIME(6) NOT NULL,
				period VARCHAR(16),
				obs_count INT NOT NULL,
				obs_sum DOUBLE NOT NULL,
				p50 DOUBLE NOT NULL,
				p75 DOUBLE NOT NULL,
				mean DOUBLE NOT NULL,
				std DOUBLE NOT NULL,
				PRIMARY KEY (analysis_id, row_index, quantity)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id BIGINT NOT NULL,
				row_index INT NOT NULL,
				quantity TEXT NOT NULL,
				interval_start TIMESTAMPTZ NOT NULL,
				period TEXT,
				obs_count INT NOT NULL,
				obs_sum DOUBLE PRECISION NOT NULL,
				p50 DOUBLE PRECISION NOT NULL,
				p75 DOUBLE PRECISION NOT NULL,
				mean DOUBLE PRECISION NOT NULL,
				std DOUBLE PRECISION NOT NULL,
				PRIMARY KEY (analysis_id, row_index, quantity)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id INTEGER NOT NULL,
				row_index INTEGER NOT NULL,
				quantity TEXT NOT NULL,
				interval_start TEXT NOT NULL,
				period TEXT,
				obs_count INTEGER NOT NULL,
				obs_sum REAL NOT NULL,
				p50 REAL NOT NULL,
				p75 REAL NOT NULL,
				mean REAL NOT NULL,
				std REAL NOT NULL,
				PRIMARY KEY (analysis_id, row_index, quantity)
			);
		`, quotedTableName)
	}
}

// BeginAnalysis creates a new analysis run and returns its unique ID.
func (as *AnalysisStoreImpl) BeginAnalysis(command string, startTime time.Time, configParams map[string]any) (int64, error) {
	// Skip for NoneBackend
	if as.backend == schema.NoneBackend || as.db == nil {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := quoteTableName(analysisRunsTable, as.backend)
	args := []any{command, formatTime(startTime, as.backend), string(configJSON)}

	var analysisID int64
	switch as.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (command, start_time, config_params) VALUES ($1, $2, $3) RETURNING analysis_id`, quotedTableName)
		err = as.db.QueryRow(query, args...).Scan(&analysisID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (command, start_time, config_params) VALUES (?, ?, ?)`, quotedTableName)
		var result sql.Result
		result, err = as.db.Exec(query, args...)
		if err == nil {
			analysisID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert analysis run: %w", err)
	}
	return analysisID, nil
}

// EndAnalysis updates the analysis run with completion data.
func (as *AnalysisStoreImpl) EndAnalysis(analysisID int64, endTime time.Time, totalRows int) error {
	// Skip for NoneBackend
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(analysisRunsTable, as.backend)
	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE analysis_id = %s`, quotedTableName, placeholders(as.backend, 1))

	var startTime time.Time
	if err := as.db.QueryRow(query, analysisID).Scan(dbTime{&startTime}); err != nil {
		return fmt.Errorf("failed to get start_time for analysis %d: %w", analysisID, err)
	}
	durationMs := endTime.Sub(startTime).Milliseconds()

	var updateQuery string
	switch as.backend {
	case schema.PostgreSQLBackend:
		updateQuery = fmt.Sprintf(`UPDATE %s SET end_time = $1, run_duration_ms = $2, total_rows = $3 WHERE analysis_id = $4`, quotedTableName)
	default: // SQLite and MySQL
		updateQuery = fmt.Sprintf(`UPDATE %s SET end_time = ?, run_duration_ms = ?, total_rows = ? WHERE analysis_id = ?`, quotedTableName)
	}
	if _, err := as.db.Exec(updateQuery, formatTime(endTime, as.backend), durationMs, totalRows, analysisID); err != nil {
		return fmt.Errorf("failed to update analysis run: %w", err)
	}
	return nil
}

// RecordBucketStats stores the bucket summaries of one run in a single transaction.
func (as *AnalysisStoreImpl) RecordBucketStats(analysisID int64, records []schema.BucketStatsRecord) error {
	// Skip for NoneBackend
	if as.backend == schema.NoneBackend || as.db == nil || len(records) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (analysis_id, row_index, quantity, interval_start, period,
		                obs_count, obs_sum, p50, p75, mean, std)
		VALUES (%s)
	`, quoteTableName(bucketStatsTable, as.backend), placeholders(as.backend, 11))

	tx, err := as.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare bucket stats insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range records {
		var period *string
		if r.Period != "" {
			period = &r.Period
		}
		if _, err := stmt.Exec(
			analysisID, r.RowIndex, r.Quantity, formatTime(r.IntervalStart, as.backend), period,
			r.Count, r.Sum, r.Median, r.P75, r.Mean, r.StdDev,
		); err != nil {
			return fmt.Errorf("failed to insert bucket stats for row %d (%s): %w", r.RowIndex, r.Quantity, err)
		}
	}
	return tx.Commit()
}

// Close closes the underlying connection.
func (as *AnalysisStoreImpl) Close() error {
	if as.db != nil {
		return as.db.Close()
	}
	return nil
}

// GetStatus returns status information about the analysis store.
func (as *AnalysisStoreImpl) GetStatus() (schema.AnalysisStatus, error) {
	status := schema.AnalysisStatus{
		Backend:    string(as.backend),
		Connected:  as.db != nil,
		TableSizes: make(map[string]int64),
	}
	if as.backend == schema.NoneBackend || as.db == nil {
		return status, nil
	}

	runs := quoteTableName(analysisRunsTable, as.backend)
	row := as.db.QueryRow(fmt.Sprintf("SELECT COUNT(*), COALESCE(SUM(total_rows), 0) FROM %s", runs))
	if err := row.Scan(&status.TotalRuns, &status.TotalRowsRecorded); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		row = as.db.QueryRow(fmt.Sprintf("SELECT analysis_id, start_time FROM %s ORDER BY analysis_id DESC LIMIT 1", runs))
		if err := row.Scan(&status.LastRunID, dbTime{&status.LastRunTime}); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		row = as.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY analysis_id ASC LIMIT 1", runs))
		if err := row.Scan(dbTime{&status.OldestRunTime}); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
	}

	for _, table := range []string{analysisRunsTable, bucketStatsTable} {
		var count int64
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, as.backend))
		if err := as.db.QueryRow(countQuery).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	return status, nil
}

// GetAllAnalysisRuns retrieves all analysis runs from the store.
func (as *AnalysisStoreImpl) GetAllAnalysisRuns() ([]schema.AnalysisRunRecord, error) {
	// Skip for NoneBackend
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT analysis_id, command, start_time, end_time, run_duration_ms, total_rows, config_params
		FROM %s ORDER BY analysis_id`, quoteTableName(analysisRunsTable, as.backend))
	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.AnalysisRunRecord
	for rows.Next() {
		var record schema.AnalysisRunRecord
		var totalRows *int32
		if err := rows.Scan(&record.AnalysisID, &record.Command, dbTime{&record.StartTime}, nullDBTime{&record.EndTime},
			&record.RunDurationMs, &totalRows, &record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan analysis run: %w", err)
		}
		if totalRows != nil {
			record.TotalRows = *totalRows
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analysis runs: %w", err)
	}
	return results, nil
}

// GetAllBucketStats retrieves all bucket summaries from the store.
func (as *AnalysisStoreImpl) GetAllBucketStats() ([]schema.BucketStatsRecord, error) {
	// Skip for NoneBackend
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT analysis_id, row_index, quantity, interval_start, period,
		obs_count, obs_sum, p50, p75, mean, std
		FROM %s ORDER BY analysis_id, row_index, quantity`, quoteTableName(bucketStatsTable, as.backend))
	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query bucket stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.BucketStatsRecord
	for rows.Next() {
		var r schema.BucketStatsRecord
		var period sql.NullString
		if err := rows.Scan(&r.AnalysisID, &r.RowIndex, &r.Quantity, dbTime{&r.IntervalStart}, &period,
			&r.Count, &r.Sum, &r.Median, &r.P75, &r.Mean, &r.StdDev); err != nil {
			return nil, fmt.Errorf("failed to scan bucket stats: %w", err)
		}
		r.Period = period.String
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bucket stats: %w", err)
	}
	return results, nil
}

// formatTime converts a time.Time to the appropriate format for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	switch backend {
	case schema.SQLiteBackend:
		return t.UTC().Format(time.RFC3339Nano)
	default:
		return t
	}
}

// dbTime scans a timestamp stored natively or as RFC3339 text.
type dbTime struct{ t *time.Time }

// Scan implements sql.Scanner.
func (d dbTime) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*d.t = v
		return nil
	case string:
		return d.parse(v)
	case []byte:
		return d.parse(string(v))
	default:
		return fmt.Errorf("cannot scan %T into a timestamp", src)
	}
}

func (d dbTime) parse(s string) error {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("failed to parse timestamp %q: %w", s, err)
	}
	*d.t = t
	return nil
}

// nullDBTime is dbTime for nullable columns.
type nullDBTime struct{ t **time.Time }

// Scan implements sql.Scanner.
func (d nullDBTime) Scan(src any) error {
	if src == nil {
		*d.t = nil
		return nil
	}
	var t time.Time
	if err := (dbTime{&t}).Scan(src); err != nil {
		return err
	}
	*d.t = &t
	return nil
}
