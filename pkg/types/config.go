package types

// VerifierConfig holds the verification thresholds and penalty factors.
// The values mirror long-observed production tuning rather than principled
// constants; they are configurable so deployments can retune without a
// rebuild, but the defaults should be changed together with the acceptance
// tests that encode them. Per prd003-verification R2.5.
type VerifierConfig struct {
	// MinConfidence is the acceptance threshold (default 0.7).
	MinConfidence float64 `json:"min_confidence" yaml:"min_confidence"`

	// MaxIssues caps the number of issues an accepted record may carry
	// (default 2). Acceptance requires both conditions.
	MaxIssues int `json:"max_issues" yaml:"max_issues"`

	// FlagThreshold separates flagged from rejected records (default 0.5):
	// an unverified record with confidence above it is kept and annotated.
	FlagThreshold float64 `json:"flag_threshold" yaml:"flag_threshold"`

	// StoreThreshold is the write-through bar (default 0.9): a verified
	// record at or above it is persisted as a known fact.
	StoreThreshold float64 `json:"store_threshold" yaml:"store_threshold"`

	// Penalty factors per check, multiplied into the confidence product.
	StructuralPenalty   float64 `json:"structural_penalty" yaml:"structural_penalty"`
	RangePenalty        float64 `json:"range_penalty" yaml:"range_penalty"`
	PlausibilityPenalty float64 `json:"plausibility_penalty" yaml:"plausibility_penalty"`
	PatternPenalty      float64 `json:"pattern_penalty" yaml:"pattern_penalty"`
	RelevancePenalty    float64 `json:"relevance_penalty" yaml:"relevance_penalty"`

	// MinRelevance is the token-overlap ratio below which a record counts
	// as not relevant to the query (default 0.3). Advisory only.
	MinRelevance float64 `json:"min_relevance" yaml:"min_relevance"`
}

// DefaultVerifierConfig returns the production thresholds.
func DefaultVerifierConfig() VerifierConfig {
	return VerifierConfig{
		MinConfidence:       0.7,
		MaxIssues:           2,
		FlagThreshold:       0.5,
		StoreThreshold:      0.9,
		StructuralPenalty:   0.7,
		RangePenalty:        0.6,
		PlausibilityPenalty: 0.8,
		PatternPenalty:      0.3,
		RelevancePenalty:    0.9,
		MinRelevance:        0.3,
	}
}

// FactsStoreConfig holds settings for the known-facts store.
// Per prd005-facts R2.1.
type FactsStoreConfig struct {
	// DataDir is the directory holding facts.db (default "data").
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// QualityConfig holds settings for the quality aggregator and monitor.
// Per prd004-quality R3.1, R5.2.
type QualityConfig struct {
	// HistorySize bounds the in-memory score history ring (default 10).
	HistorySize int `json:"history_size" yaml:"history_size"`

	// MinScore is the monitor alert threshold for the batch quality score
	// (default 80).
	MinScore int `json:"min_score" yaml:"min_score"`

	// MinConfidence is the monitor alert threshold for average stored-fact
	// confidence (default 0.7).
	MinConfidence float64 `json:"min_confidence" yaml:"min_confidence"`

	// Schedule is the cron expression driving monitor ticks
	// (default "0 */5 * * * *", with seconds field).
	Schedule string `json:"schedule" yaml:"schedule"`
}

// DefaultQualityConfig returns the production monitor settings.
func DefaultQualityConfig() QualityConfig {
	return QualityConfig{
		HistorySize:   10,
		MinScore:      80,
		MinConfidence: 0.7,
		Schedule:      "0 */5 * * * *",
	}
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Verifier VerifierConfig   `json:"verifier" yaml:"verifier"`
	Facts    FactsStoreConfig `json:"facts" yaml:"facts"`
	Quality  QualityConfig    `json:"quality" yaml:"quality"`

	// RulesFile optionally overrides the compiled-in plausibility rules
	// (prd002-rules R6.1).
	RulesFile string `json:"rules_file" yaml:"rules_file"`
}
