// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package quality scores verification batches and tracks score history.
// Implements: prd004-quality (R1-R4);
//
//	docs/ARCHITECTURE.md § Quality.
package quality

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/pdiddy/transparency-engine/pkg/types"
)

// Aggregator turns batch verification results into quality reports and
// keeps a bounded history of recent scores. Safe for concurrent use.
type Aggregator struct {
	mu      sync.Mutex
	history []types.Report
	size    int
	now     func() time.Time
}

// NewAggregator returns an Aggregator keeping the last cfg.HistorySize
// reports.
func NewAggregator(cfg types.QualityConfig) *Aggregator {
	size := cfg.HistorySize
	if size <= 0 {
		size = types.DefaultQualityConfig().HistorySize
	}
	return &Aggregator{size: size, now: time.Now}
}

// Score builds the quality report for one batch and appends it to the
// history ring (R1.1-R1.5, R3.1). An empty batch yields the no_data
// sentinel, not an error.
func (a *Aggregator) Score(batch types.BatchResult) types.Report {
	report := types.Report{
		Total:      batch.Total,
		Verified:   batch.Verified,
		Suspicious: batch.Suspicious,
		Filtered:   batch.Filtered,
		Timestamp:  a.now(),
	}

	if batch.Total == 0 {
		report.Score = types.ScoreNoData
		report.Confidence = types.ConfidenceLow
		report.Quality = types.QualityNoData
	} else {
		report.Score = int(math.Round(100 * float64(batch.Verified) / float64(batch.Total)))
		report.Confidence, report.Quality = grade(report.Score)
	}

	for _, vr := range batch.Records {
		if !vr.Outcome.Verified {
			report.Warnings = append(report.Warnings, vr.Outcome.Issues...)
		}
	}
	report.Errors = append(report.Errors, batch.RejectedIssues...)

	a.mu.Lock()
	a.history = append(a.history, report)
	if len(a.history) > a.size {
		a.history = a.history[len(a.history)-a.size:]
	}
	a.mu.Unlock()

	return report
}

// grade maps a score to its confidence and quality labels. The cut points
// are exact: 90 is high, 70 is medium (R2.1).
func grade(score int) (types.ConfidenceLabel, types.QualityLabel) {
	switch {
	case score >= 90:
		return types.ConfidenceHigh, types.QualityExcellent
	case score >= 70:
		return types.ConfidenceMedium, types.QualityGood
	default:
		return types.ConfidenceLow, types.QualityQuestionable
	}
}

// Summary condenses the score history (R3.2). Trend is the difference
// between the newest and oldest retained score; empty-batch sentinel
// reports do not take part.
type Summary struct {
	AverageScore float64 `json:"average_score"`
	Trend        int     `json:"trend"`
	Checks       int     `json:"checks"`
	Excellent    int     `json:"excellent"`
	Good         int     `json:"good"`
	Questionable int     `json:"questionable"`
}

// Summarize reports over the retained history. The zero Summary means no
// scored batches yet.
func (a *Aggregator) Summarize() Summary {
	a.mu.Lock()
	defer a.mu.Unlock()

	var s Summary
	var scored []int
	for _, r := range a.history {
		if r.Score == types.ScoreNoData {
			continue
		}
		scored = append(scored, r.Score)
		switch r.Quality {
		case types.QualityExcellent:
			s.Excellent++
		case types.QualityGood:
			s.Good++
		default:
			s.Questionable++
		}
	}
	s.Checks = len(scored)
	if len(scored) == 0 {
		return s
	}

	sum := 0
	for _, sc := range scored {
		sum += sc
	}
	s.AverageScore = float64(sum) / float64(len(scored))
	s.Trend = scored[len(scored)-1] - scored[0]
	return s
}

// History returns a copy of the retained reports, oldest first.
func (a *Aggregator) History() []types.Report {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]types.Report, len(a.history))
	copy(out, a.history)
	return out
}

// Recommendations derives operator guidance from the average quality and
// from which checks fail most often across a batch (R4.1, R4.2).
func Recommendations(summary Summary, batch types.BatchResult) []string {
	var recs []string

	if summary.Checks > 0 {
		switch {
		case summary.AverageScore < 60:
			recs = append(recs, "Datenqualität ist kritisch - sofortige Überprüfung erforderlich")
		case summary.AverageScore < 80:
			recs = append(recs, "Datenqualität sollte verbessert werden")
		}
	}

	counts := failureCounts(batch)
	for _, check := range sortedChecks(counts) {
		if counts[check] < 3 {
			continue
		}
		switch check {
		case types.CheckStructural:
			recs = append(recs, "Vollständigkeit der Datenfelder verbessern")
		case types.CheckRange:
			recs = append(recs, "Wertebereiche der Quelldaten überprüfen")
		case types.CheckPlausibility:
			recs = append(recs, "Datenvalidierung bei der Eingabe verstärken")
		case types.CheckPattern:
			recs = append(recs, "Quelldaten auf Platzhalter- und Testeinträge prüfen")
		case types.CheckConsistency:
			recs = append(recs, "Faktenspeicher mit verifizierten Einträgen auffüllen")
		case types.CheckRelevance:
			recs = append(recs, "Suchanfrage präzisieren oder Indexabdeckung erweitern")
		}
	}

	if len(recs) == 0 {
		recs = append(recs, "Datenqualität ist zufriedenstellend")
	}
	return recs
}

func failureCounts(batch types.BatchResult) map[string]int {
	counts := make(map[string]int)
	for _, vr := range batch.Records {
		for _, c := range vr.Outcome.FailedChecks {
			counts[c]++
		}
	}
	for _, c := range batch.RejectedChecks {
		counts[c]++
	}
	return counts
}

func sortedChecks(counts map[string]int) []string {
	checks := make([]string, 0, len(counts))
	for c := range counts {
		checks = append(checks, c)
	}
	sort.Slice(checks, func(i, j int) bool {
		if counts[checks[i]] != counts[checks[j]] {
			return counts[checks[i]] > counts[checks[j]]
		}
		return checks[i] < checks[j]
	})
	return checks
}
