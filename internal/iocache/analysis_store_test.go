package iocache

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/Doubling-Open-Source/git-calculator/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var runStart = time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

func newSQLiteAnalysisStore(t *testing.T) *AnalysisStoreImpl {
	t.Helper()
	store, err := NewAnalysisStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store.(*AnalysisStoreImpl)
}

func bucketRecords() []schema.BucketStatsRecord {
	return []schema.BucketStatsRecord{
		{RowIndex: 0, Quantity: "cycle_time", IntervalStart: runStart,
			Summary: schema.Summary{Count: 2, Sum: 5.5, Median: 2.75, P75: 3.5, Mean: 2.75, StdDev: 1.06}},
		{RowIndex: 0, Quantity: "ramp_time", IntervalStart: runStart,
			Summary: schema.Summary{Count: 2, Sum: 3, Median: 1.5, P75: 2, Mean: 1.5, StdDev: 0.71}},
		{RowIndex: 1, Quantity: "cycle_time", IntervalStart: runStart.AddDate(0, 1, 0), Period: "2024-04",
			Summary: schema.Summary{Count: 1, Sum: 2, Median: 2, P75: 2, Mean: 2}},
	}
}

func TestAnalysisStore_NoneBackend(t *testing.T) {
	store, err := NewAnalysisStore(schema.NoneBackend, "")
	require.NoError(t, err)

	id, err := store.BeginAnalysis("branches", runStart, map[string]any{"ref": "HEAD"})
	assert.NoError(t, err)
	assert.Zero(t, id)
	assert.NoError(t, store.RecordBucketStats(1, bucketRecords()))
	assert.NoError(t, store.EndAnalysis(1, runStart, 3))

	runs, err := store.GetAllAnalysisRuns()
	assert.NoError(t, err)
	assert.Empty(t, runs)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Connected)
	assert.NoError(t, store.Close())
}

func TestAnalysisStore_RunLifecycle(t *testing.T) {
	store := newSQLiteAnalysisStore(t)

	params := map[string]any{"repo_path": "/repo", "by": "count", "bucket": 12}
	id, err := store.BeginAnalysis("branches", runStart, params)
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	require.NoError(t, store.RecordBucketStats(id, bucketRecords()))
	require.NoError(t, store.EndAnalysis(id, runStart.Add(1500*time.Millisecond), 2))

	runs, err := store.GetAllAnalysisRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	run := runs[0]
	assert.Equal(t, id, run.AnalysisID)
	assert.Equal(t, "branches", run.Command)
	assert.True(t, runStart.Equal(run.StartTime))
	require.NotNil(t, run.EndTime)
	assert.True(t, runStart.Add(1500*time.Millisecond).Equal(*run.EndTime))
	require.NotNil(t, run.RunDurationMs)
	assert.Equal(t, int32(1500), *run.RunDurationMs)
	assert.Equal(t, int32(2), run.TotalRows)

	require.NotNil(t, run.ConfigParams)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(*run.ConfigParams), &decoded))
	assert.Equal(t, "count", decoded["by"])

	stats, err := store.GetAllBucketStats()
	require.NoError(t, err)
	require.Len(t, stats, 3)
	assert.Equal(t, "cycle_time", stats[0].Quantity)
	assert.Equal(t, "ramp_time", stats[1].Quantity)
	assert.Equal(t, int32(1), stats[2].RowIndex)
	assert.Equal(t, "2024-04", stats[2].Period)
	assert.Empty(t, stats[0].Period)
	assert.Equal(t, id, stats[0].AnalysisID)
	assert.InDelta(t, 1.06, stats[0].StdDev, 1e-9)
	assert.True(t, runStart.AddDate(0, 1, 0).Equal(stats[2].IntervalStart))
}

func TestAnalysisStore_OpenRun(t *testing.T) {
	store := newSQLiteAnalysisStore(t)

	_, err := store.BeginAnalysis("deltas", runStart, nil)
	require.NoError(t, err)

	runs, err := store.GetAllAnalysisRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Nil(t, runs[0].EndTime)
	assert.Nil(t, runs[0].RunDurationMs)
	assert.Zero(t, runs[0].TotalRows)
}

func TestAnalysisStore_EndUnknownRun(t *testing.T) {
	store := newSQLiteAnalysisStore(t)
	err := store.EndAnalysis(42, runStart, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "analysis 42")
}

func TestAnalysisStore_DuplicateBucketRollsBack(t *testing.T) {
	store := newSQLiteAnalysisStore(t)
	id, err := store.BeginAnalysis("branches", runStart, nil)
	require.NoError(t, err)

	records := bucketRecords()
	records = append(records, records[0])
	require.Error(t, store.RecordBucketStats(id, records))

	stats, err := store.GetAllBucketStats()
	require.NoError(t, err)
	assert.Empty(t, stats, "failed batch should not leave partial rows")
}

func TestAnalysisStore_Status(t *testing.T) {
	store := newSQLiteAnalysisStore(t)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Zero(t, status.TotalRuns)
	assert.Equal(t, int64(0), status.TableSizes[analysisRunsTable])

	first, err := store.BeginAnalysis("branches", runStart, nil)
	require.NoError(t, err)
	require.NoError(t, store.RecordBucketStats(first, bucketRecords()))
	require.NoError(t, store.EndAnalysis(first, runStart.Add(time.Second), 2))

	second, err := store.BeginAnalysis("monthly", runStart.Add(time.Hour), nil)
	require.NoError(t, err)
	require.NoError(t, store.EndAnalysis(second, runStart.Add(time.Hour+time.Second), 5))

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 2, status.TotalRuns)
	assert.Equal(t, 7, status.TotalRowsRecorded)
	assert.Equal(t, second, status.LastRunID)
	assert.True(t, runStart.Add(time.Hour).Equal(status.LastRunTime))
	assert.True(t, runStart.Equal(status.OldestRunTime))
	assert.Equal(t, int64(2), status.TableSizes[analysisRunsTable])
	assert.Equal(t, int64(3), status.TableSizes[bucketStatsTable])
}

func TestAnalysisStore_FileBacked(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "analysis.db")
	store, err := NewAnalysisStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	_, err = store.BeginAnalysis("lines", runStart, nil)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := NewAnalysisStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()
	runs, err := reopened.GetAllAnalysisRuns()
	require.NoError(t, err)
	assert.Len(t, runs, 1)

	require.NoError(t, ClearAnalysis(schema.SQLiteBackend, dbPath, ""))
}

func TestExportAnalysis(t *testing.T) {
	store := newSQLiteAnalysisStore(t)
	var out bytes.Buffer

	assert.Error(t, exportAnalysis(&out, store, ""), "output file is required")
	assert.Error(t, exportAnalysis(&out, nil, "x"), "tracking must be enabled")
	err := exportAnalysis(&out, store, filepath.Join(t.TempDir(), "export"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no analysis data")

	id, err := store.BeginAnalysis("branches", runStart, nil)
	require.NoError(t, err)
	require.NoError(t, store.RecordBucketStats(id, bucketRecords()))
	require.NoError(t, store.EndAnalysis(id, runStart.Add(time.Second), 2))

	prefix := filepath.Join(t.TempDir(), "export")
	require.NoError(t, exportAnalysis(&out, store, prefix))
	assert.FileExists(t, prefix+".analysis_runs.parquet")
	assert.FileExists(t, prefix+".bucket_stats.parquet")
	assert.Contains(t, out.String(), "Exported 1 analysis runs")
	assert.Contains(t, out.String(), "Exported 3 bucket records")
}

func TestPrintStatus(t *testing.T) {
	var out bytes.Buffer
	PrintCacheStatus(&out, schema.CacheStatus{Backend: "none"})
	assert.Equal(t, "Cache Backend: none\nConnected: false\n", out.String())

	out.Reset()
	PrintCacheStatus(&out, schema.CacheStatus{Backend: "sqlite", Connected: true, TotalEntries: 2,
		LastEntryTime: runStart, OldestEntryTime: runStart, TableSizeBytes: 8192})
	assert.Contains(t, out.String(), "Total Entries: 2")
	assert.Contains(t, out.String(), "Table Size: 8.2 kB")

	out.Reset()
	PrintAnalysisStatus(&out, schema.AnalysisStatus{Backend: "sqlite", Connected: true, TotalRuns: 1,
		LastRunID: 1, TotalRowsRecorded: 1200,
		TableSizes: map[string]int64{bucketStatsTable: 5, analysisRunsTable: 1}})
	text := out.String()
	assert.Contains(t, text, "Total Rows Recorded: 1,200")
	assert.Less(t, bytes.Index(out.Bytes(), []byte(analysisRunsTable)), bytes.Index(out.Bytes(), []byte(bucketStatsTable)))
}
