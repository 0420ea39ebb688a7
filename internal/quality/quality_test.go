// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package quality

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/pdiddy/transparency-engine/internal/facts"
	"github.com/pdiddy/transparency-engine/pkg/types"
)

func testAggregator() *Aggregator {
	return NewAggregator(types.DefaultQualityConfig())
}

func batchOf(verified, suspicious, filtered int) types.BatchResult {
	return types.BatchResult{
		Total:      verified + suspicious + filtered,
		Verified:   verified,
		Suspicious: suspicious,
		Filtered:   filtered,
	}
}

func TestScoreBoundaries(t *testing.T) {
	tests := []struct {
		name       string
		batch      types.BatchResult
		score      int
		confidence types.ConfidenceLabel
		quality    types.QualityLabel
	}{
		{"all verified", batchOf(10, 0, 0), 100, types.ConfidenceHigh, types.QualityExcellent},
		{"exactly 90", batchOf(9, 1, 0), 90, types.ConfidenceHigh, types.QualityExcellent},
		{"just below 90", batchOf(89, 11, 0), 89, types.ConfidenceMedium, types.QualityGood},
		{"exactly 70", batchOf(7, 0, 3), 70, types.ConfidenceMedium, types.QualityGood},
		{"just below 70", batchOf(69, 31, 0), 69, types.ConfidenceLow, types.QualityQuestionable},
		{"nothing verified", batchOf(0, 2, 3), 0, types.ConfidenceLow, types.QualityQuestionable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := testAggregator().Score(tt.batch)
			if report.Score != tt.score {
				t.Errorf("score = %d, want %d", report.Score, tt.score)
			}
			if report.Confidence != tt.confidence {
				t.Errorf("confidence = %s, want %s", report.Confidence, tt.confidence)
			}
			if report.Quality != tt.quality {
				t.Errorf("quality = %s, want %s", report.Quality, tt.quality)
			}
		})
	}
}

func TestScoreRounds(t *testing.T) {
	// 2 of 3 = 66.67 rounds to 67, not truncated to 66.
	report := testAggregator().Score(batchOf(2, 1, 0))
	if report.Score != 67 {
		t.Errorf("score = %d, want 67", report.Score)
	}
}

func TestScoreEmptyBatch(t *testing.T) {
	report := testAggregator().Score(types.BatchResult{})

	if report.Score != types.ScoreNoData {
		t.Errorf("score = %d, want sentinel %d", report.Score, types.ScoreNoData)
	}
	if report.Quality != types.QualityNoData {
		t.Errorf("quality = %s, want %s", report.Quality, types.QualityNoData)
	}
}

func TestScoreCollectsWarningsAndErrors(t *testing.T) {
	batch := batchOf(1, 1, 1)
	batch.Records = []types.VerifiedRecord{
		{Outcome: types.Outcome{Verified: true, Confidence: 0.9}},
		{Outcome: types.Outcome{Verified: false, Confidence: 0.6, Issues: []string{"flagged issue"}}},
	}
	batch.RejectedIssues = []string{"rejected issue"}

	report := testAggregator().Score(batch)

	if len(report.Warnings) != 1 || report.Warnings[0] != "flagged issue" {
		t.Errorf("warnings = %v, want flagged issue only", report.Warnings)
	}
	if len(report.Errors) != 1 || report.Errors[0] != "rejected issue" {
		t.Errorf("errors = %v, want rejected issue", report.Errors)
	}
}

func TestHistoryRingAndTrend(t *testing.T) {
	agg := NewAggregator(types.QualityConfig{HistorySize: 3})

	for _, verified := range []int{5, 6, 7, 8} { // of 10; oldest (50) falls out
		agg.Score(batchOf(verified, 10-verified, 0))
	}

	if got := len(agg.History()); got != 3 {
		t.Fatalf("history length = %d, want 3", got)
	}

	summary := agg.Summarize()
	if summary.Trend != 20 {
		t.Errorf("trend = %d, want 20 (80 - 60 after eviction)", summary.Trend)
	}
	if summary.Checks != 3 {
		t.Errorf("checks = %d, want 3", summary.Checks)
	}
}

func TestSummarizeSkipsEmptyBatches(t *testing.T) {
	agg := testAggregator()
	agg.Score(types.BatchResult{})
	agg.Score(batchOf(8, 2, 0))

	summary := agg.Summarize()
	if summary.Checks != 1 {
		t.Errorf("checks = %d, want 1 (sentinel reports excluded)", summary.Checks)
	}
	if summary.AverageScore != 80 {
		t.Errorf("average = %v, want 80", summary.AverageScore)
	}
}

func TestRecommendationsFromFailedChecks(t *testing.T) {
	batch := batchOf(0, 3, 0)
	for i := 0; i < 3; i++ {
		batch.Records = append(batch.Records, types.VerifiedRecord{
			Outcome: types.Outcome{FailedChecks: []string{types.CheckStructural}},
		})
	}

	recs := Recommendations(Summary{Checks: 1, AverageScore: 85}, batch)

	if !containsSubstring(recs, "Vollständigkeit") {
		t.Errorf("recommendations = %v, want completeness advice", recs)
	}
}

func TestRecommendationsSatisfactory(t *testing.T) {
	recs := Recommendations(Summary{Checks: 1, AverageScore: 95}, batchOf(10, 0, 0))
	if len(recs) != 1 || !strings.Contains(recs[0], "zufriedenstellend") {
		t.Errorf("recommendations = %v, want single satisfactory note", recs)
	}
}

func TestFormatReport(t *testing.T) {
	var buf bytes.Buffer
	report := testAggregator().Score(batchOf(9, 1, 0))
	FormatReport(&buf, report)

	out := buf.String()
	for _, want := range []string{"90%", "hoch", "ausgezeichnet"} {
		if !strings.Contains(out, want) {
			t.Errorf("report output missing %q:\n%s", want, out)
		}
	}
}

func TestMonitorTickRaisesAlerts(t *testing.T) {
	cfg := types.DefaultQualityConfig()
	agg := NewAggregator(cfg)
	agg.Score(batchOf(3, 7, 0)) // score 30, below the 80 threshold

	mon := NewMonitor(agg, nil, cfg, nil)
	mon.Tick(context.Background())

	alerts := mon.Alerts()
	if len(alerts) != 1 {
		t.Fatalf("alerts = %v, want one data_quality alert", alerts)
	}
	if alerts[0].Type != "data_quality" {
		t.Errorf("alert type = %s, want data_quality", alerts[0].Type)
	}
	if alerts[0].ID == "" {
		t.Error("alert ID must be set")
	}

	status := mon.Status()
	if status.OpenAlerts != 1 {
		t.Errorf("open alerts = %d, want 1", status.OpenAlerts)
	}
	if status.Score != 30 {
		t.Errorf("status score = %v, want 30", status.Score)
	}
}

func TestMonitorTickWithStore(t *testing.T) {
	store, err := facts.NewStore(types.FactsStoreConfig{DataDir: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	cfg := types.DefaultQualityConfig()
	agg := NewAggregator(cfg)
	agg.Score(batchOf(9, 1, 0))

	mon := NewMonitor(agg, store, cfg, nil)
	mon.Tick(context.Background())

	if got := mon.Alerts(); len(got) != 0 {
		t.Errorf("alerts = %v, want none for a healthy store", got)
	}
}

func containsSubstring(list []string, substr string) bool {
	for _, s := range list {
		if strings.Contains(s, substr) {
			return true
		}
	}
	return false
}
