// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline wires the interpretation, verification, and quality
// stages into the end-to-end query flow.
// Implements: prd006-pipeline (R1-R3);
//
//	docs/ARCHITECTURE.md § Pipeline Interface.
package pipeline

import (
	"context"
	"log/slog"

	"github.com/pdiddy/transparency-engine/internal/interpret"
	"github.com/pdiddy/transparency-engine/internal/quality"
	"github.com/pdiddy/transparency-engine/internal/verify"
	"github.com/pdiddy/transparency-engine/pkg/types"
)

// Searcher produces candidate results for an interpreted query. The portal's
// search backends implement this; tests and the CLI use StaticSearcher.
type Searcher interface {
	Search(ctx context.Context, interp types.Interpretation) ([]map[string]any, error)
}

// Pipeline runs a query end to end: interpret, search, verify, score.
type Pipeline struct {
	interpreter *interpret.Interpreter
	searcher    Searcher
	checker     *verify.Checker
	aggregator  *quality.Aggregator
	log         *slog.Logger
}

// Output is the complete answer to one query.
type Output struct {
	Interpretation types.Interpretation   `json:"interpretation"`
	Records        []types.VerifiedRecord `json:"records"`
	Report         types.Report           `json:"report"`
}

// New assembles a Pipeline from its stages.
func New(it *interpret.Interpreter, searcher Searcher, checker *verify.Checker, agg *quality.Aggregator, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{interpreter: it, searcher: searcher, checker: checker, aggregator: agg, log: log}
}

// Run executes the full flow for one query (R1.1). A search failure is
// logged and treated as zero results; the caller still receives a complete
// report (R2.1).
func (p *Pipeline) Run(ctx context.Context, query string) Output {
	interp := p.interpreter.Interpret(query)
	p.log.Info("query interpreted",
		"intent", interp.Intent, "type", interp.QueryType, "confidence", interp.Confidence)

	var raws []map[string]any
	if p.searcher != nil {
		var err error
		raws, err = p.searcher.Search(ctx, interp)
		if err != nil {
			p.log.Error("search backend failed", "error", err)
			raws = nil
		}
	}

	batch := p.checker.VerifyBatch(ctx, raws, query)
	report := p.aggregator.Score(batch)

	return Output{
		Interpretation: interp,
		Records:        batch.Records,
		Report:         report,
	}
}

// StaticSearcher serves a fixed result set, ignoring the interpretation.
type StaticSearcher struct {
	Results []map[string]any
}

// Search implements Searcher.
func (s StaticSearcher) Search(_ context.Context, _ types.Interpretation) ([]map[string]any, error) {
	return s.Results, nil
}
