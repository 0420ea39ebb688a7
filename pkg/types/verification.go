// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Check names identify the independent verification checks. Outcome.Methods
// and Outcome.FailedChecks use these values. Per prd003-verification R1.
const (
	CheckStructural   = "structural"
	CheckRange        = "range"
	CheckPlausibility = "plausibility"
	CheckPattern      = "pattern"
	CheckConsistency  = "consistency"
	CheckRelevance    = "relevance"
)

// Outcome is the result of verifying a single record against the rule set,
// the known-facts store, and the originating query. Outcomes are immutable:
// re-verifying produces a new Outcome. Per prd003-verification R2.
type Outcome struct {
	// Verified is true when Confidence met the acceptance threshold and the
	// issue count stayed within the cap. Both conditions are required (R2.3).
	Verified bool `json:"is_verified" yaml:"is_verified"`

	// Confidence in [0,1] is the product of per-check factors; a single
	// failing check can dominate (R2.1).
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// Issues lists each concrete problem found, in check order.
	Issues []string `json:"issues,omitempty" yaml:"issues,omitempty"`

	// Methods lists the checks that ran.
	Methods []string `json:"verification_method" yaml:"verification_method"`

	// FailedChecks lists the checks that applied a penalty. The quality
	// aggregator tabulates these for failure-frequency reporting
	// (prd004-quality R4.1).
	FailedChecks []string `json:"failed_checks,omitempty" yaml:"failed_checks,omitempty"`
}

// VerifiedRecord pairs a record with its verification outcome.
type VerifiedRecord struct {
	Record  Record  `json:"record" yaml:"record"`
	Outcome Outcome `json:"fact_check" yaml:"fact_check"`
}

// BatchResult holds the three-way split of a verification batch
// (prd003-verification R4): accepted and flagged records stay in Records,
// rejected records are dropped and counted in Filtered.
type BatchResult struct {
	// Records contains accepted (Outcome.Verified) and flagged
	// (!Verified, confidence above the flag threshold) records, in input
	// order. Rejected records are not included.
	Records []VerifiedRecord `json:"records" yaml:"records"`

	Total      int `json:"total" yaml:"total"`
	Verified   int `json:"verified" yaml:"verified"`
	Suspicious int `json:"suspicious" yaml:"suspicious"`
	Filtered   int `json:"filtered" yaml:"filtered"`

	// RejectedIssues preserves the issue strings of filtered records, which
	// are otherwise dropped from Records. The quality report surfaces them
	// as errors.
	RejectedIssues []string `json:"rejected_issues,omitempty" yaml:"rejected_issues,omitempty"`

	// RejectedChecks preserves the failed-check names of filtered records
	// for failure-frequency tabulation.
	RejectedChecks []string `json:"rejected_checks,omitempty" yaml:"rejected_checks,omitempty"`
}
