// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ConfidenceLabel grades a quality score. Per prd004-quality R2.1 the
// thresholds are exact cut points: high at score >= 90, medium at >= 70.
type ConfidenceLabel string

const (
	ConfidenceHigh   ConfidenceLabel = "high"
	ConfidenceMedium ConfidenceLabel = "medium"
	ConfidenceLow    ConfidenceLabel = "low"
)

// QualityLabel describes the data quality tier matching a ConfidenceLabel.
type QualityLabel string

const (
	QualityExcellent    QualityLabel = "excellent"
	QualityGood         QualityLabel = "good"
	QualityQuestionable QualityLabel = "questionable"

	// QualityNoData is the sentinel for an empty batch. Not an error
	// (prd004-quality R1.4).
	QualityNoData QualityLabel = "no_data"
)

// ScoreNoData is the score sentinel for an empty batch.
const ScoreNoData = -1

// Report summarizes the verification of one search batch. Read-only after
// creation. Per prd004-quality R1.
type Report struct {
	// Counts satisfy Verified + Suspicious + Filtered == Total for every
	// batch, including the empty one (R1.2).
	Total      int `json:"total" yaml:"total"`
	Verified   int `json:"verified" yaml:"verified"`
	Suspicious int `json:"suspicious" yaml:"suspicious"`
	Filtered   int `json:"filtered" yaml:"filtered"`

	// Score is round(100 * Verified / Total), or ScoreNoData when Total is
	// zero (R1.3, R1.4).
	Score int `json:"score" yaml:"score"`

	// Confidence and Quality are derived from Score (R2.1).
	Confidence ConfidenceLabel `json:"confidence" yaml:"confidence"`
	Quality    QualityLabel    `json:"data_quality" yaml:"data_quality"`

	// Warnings collects issues from flagged records, Errors from rejected
	// ones (R1.5).
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Errors   []string `json:"errors,omitempty" yaml:"errors,omitempty"`

	// Timestamp records when the batch was scored.
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}
