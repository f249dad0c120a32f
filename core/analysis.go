package core

import (
	"time"

	"github.com/Doubling-Open-Source/git-calculator/internal/contract"
	"github.com/Doubling-Open-Source/git-calculator/schema"
)

// Tracked quantities of bucket statistics.
const (
	quantityCommits = "commits"
	quantityCycle   = "cycle_time"
	quantityQA      = "qa_time"
	quantityWork    = "work_time"
	quantityRamp    = "ramp_time"
	quantityDelta   = "delta_minutes"
)

// tracker records one command run in the analysis store. A nil store or a
// failed BeginAnalysis turns every method into a no-op.
type tracker struct {
	store contract.AnalysisStore
	id    int64
}

// beginAnalysis starts tracking a command run, if analysis tracking is configured.
func beginAnalysis(mgr contract.CacheManager, command string, cfg *contract.Config) *tracker {
	t := &tracker{}
	if mgr == nil {
		return t
	}
	store := mgr.GetAnalysisStore()
	if store == nil {
		return t
	}
	id, err := store.BeginAnalysis(command, time.Now(), analysisParams(cfg))
	if err != nil {
		contract.LogWarn("Analysis tracking initialization failed", err)
		return t
	}
	t.store, t.id = store, id
	return t
}

func (t *tracker) active() bool {
	return t.store != nil && t.id > 0
}

// record stores bucket summaries for the run.
func (t *tracker) record(records []schema.BucketStatsRecord) {
	if !t.active() || len(records) == 0 {
		return
	}
	if err := t.store.RecordBucketStats(t.id, records); err != nil {
		contract.LogWarn("Failed to record bucket statistics", err)
	}
}

// end finalizes the run with the number of rows it produced.
func (t *tracker) end(totalRows int) {
	if !t.active() {
		return
	}
	if err := t.store.EndAnalysis(t.id, time.Now(), totalRows); err != nil {
		contract.LogWarn("Failed to finalize analysis tracking", err)
	}
}

func analysisParams(cfg *contract.Config) map[string]any {
	params := map[string]any{
		"repo_path": cfg.RepoPath,
		"ref":       cfg.Ref,
		"strategy":  string(cfg.Strategy),
		"by":        string(cfg.BucketMode),
		"bucket":    cfg.BucketSize,
		"source":    string(cfg.Source),
	}
	if cfg.Location != nil {
		params["timezone"] = cfg.Location.String()
	}
	if !cfg.StartTime.IsZero() {
		params["start"] = cfg.StartTime.Format(time.RFC3339)
	}
	if !cfg.EndTime.IsZero() {
		params["end"] = cfg.EndTime.Format(time.RFC3339)
	}
	return params
}

// branchStatsRecords flattens each row into one record per quantity.
func branchStatsRecords(rows []schema.BranchStatsRow) []schema.BucketStatsRecord {
	records := make([]schema.BucketStatsRecord, 0, 5*len(rows))
	for i, row := range rows {
		for _, q := range []struct {
			name    string
			summary schema.Summary
		}{
			{quantityCommits, row.Commits},
			{quantityCycle, row.CycleTime},
			{quantityQA, row.QA},
			{quantityWork, row.WorkTime},
			{quantityRamp, row.Ramp},
		} {
			records = append(records, schema.BucketStatsRecord{
				RowIndex:      int32(i),
				Quantity:      q.name,
				IntervalStart: row.IntervalStart,
				Summary:       q.summary,
			})
		}
	}
	return records
}

func deltaStatsRecords(rows []schema.DeltaStatsRow) []schema.BucketStatsRecord {
	records := make([]schema.BucketStatsRecord, 0, len(rows))
	for i, row := range rows {
		records = append(records, schema.BucketStatsRecord{
			RowIndex:      int32(i),
			Quantity:      quantityDelta,
			IntervalStart: row.IntervalStart,
			Period:        row.Period,
			Summary:       row.Summary,
		})
	}
	return records
}
