// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the transparency-engine
// verification pipeline.
// Implements: prd001-interpretation (Interpretation, R4.1-R4.5);
//
//	prd003-verification (Record, Outcome, R1.1, R2.1-R2.4);
//	prd004-quality (Report, R1.1-R1.5).
//
// See docs/ARCHITECTURE.md § Pipeline Interface, § Data Structures.
package types

// Intent classifies what a natural-language query is asking for.
// Per prd001-interpretation R2.1, the set is closed.
type Intent string

const (
	IntentFinancial  Intent = "financial_search"
	IntentDocument   Intent = "document_search"
	IntentProtocol   Intent = "protocol_search"
	IntentStatistics Intent = "statistics_search"
	IntentGeneral    Intent = "general_search"
)

// QueryType is a coarser classification derived from intent and extracted
// entities. It deliberately overlaps with Intent: a query with an amount
// entity is classified financial even under a general intent, to maximize
// recall for financial queries (prd001-interpretation R4.5).
type QueryType string

const (
	QueryFinancial  QueryType = "financial"
	QueryDocuments  QueryType = "documents"
	QueryProtocols  QueryType = "protocols"
	QueryStatistics QueryType = "statistics"
	QueryGeneral    QueryType = "general"
)

// Entities holds the structured values extracted from a query.
// Every field is optional; absence means the query did not mention it.
// Per prd001-interpretation R3.1-R3.4.
type Entities struct {
	// Years lists the budget years the query refers to, ascending.
	// Range phrases ("zwischen 2020 und 2023") expand to the inclusive range.
	Years []int `json:"years,omitempty" yaml:"years,omitempty"`

	// Amount is an exact amount in euro, when the query names one without
	// a comparison context word.
	Amount *float64 `json:"amount,omitempty" yaml:"amount,omitempty"`

	// AmountMin is a lower bound ("über 10.000 Euro").
	AmountMin *float64 `json:"amount_min,omitempty" yaml:"amount_min,omitempty"`

	// AmountMax is an upper bound ("unter 500 Euro").
	AmountMax *float64 `json:"amount_max,omitempty" yaml:"amount_max,omitempty"`

	// Categories lists matched budget categories from the closed vocabulary
	// (prd002-rules R2.1). Multiple categories may match one query.
	Categories []string `json:"categories,omitempty" yaml:"categories,omitempty"`

	// DocumentTypes lists matched document types (protokoll, vertrag, ...).
	DocumentTypes []string `json:"document_types,omitempty" yaml:"document_types,omitempty"`
}

// HasAmount reports whether any amount entity was extracted.
func (e Entities) HasAmount() bool {
	return e.Amount != nil || e.AmountMin != nil || e.AmountMax != nil
}

// IsEmpty reports whether no entity of any kind was extracted.
func (e Entities) IsEmpty() bool {
	return len(e.Years) == 0 && !e.HasAmount() &&
		len(e.Categories) == 0 && len(e.DocumentTypes) == 0
}

// Interpretation is the structured reading of a free-text query. It is
// created once per query and never mutated; the search collaborator and the
// verifier both consume it. Per prd001-interpretation R4.1-R4.5.
type Interpretation struct {
	// OriginalQuery is the raw input, unmodified.
	OriginalQuery string `json:"original_query" yaml:"original_query"`

	// NormalizedQuery is the lowercased, whitespace-collapsed, umlaut-folded
	// form used for matching. Folding never alters OriginalQuery (R1.3).
	NormalizedQuery string `json:"normalized_query" yaml:"normalized_query"`

	// Intent is the detected query intent.
	Intent Intent `json:"intent" yaml:"intent"`

	// Entities holds the extracted structured values.
	Entities Entities `json:"entities" yaml:"entities"`

	// Keywords are the stopword-filtered search terms, lowercased,
	// deduplicated preserving first-seen order (R3.5).
	Keywords []string `json:"keywords" yaml:"keywords"`

	// QueryType is the derived coarse classification (R4.5).
	QueryType QueryType `json:"query_type" yaml:"query_type"`

	// Confidence is a value in [0,1] built additively from which entity
	// groups were found (R4.2).
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// Note records a degradation reason when interpretation fell back to a
	// general search (R5.1). Empty on a normal interpretation.
	Note string `json:"note,omitempty" yaml:"note,omitempty"`
}
