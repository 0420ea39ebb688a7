// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package verify checks candidate search results for factual plausibility.
// Implements: prd003-verification (R1-R5);
//
//	docs/ARCHITECTURE.md § Verification.
//
// Six independent checks each contribute a multiplicative confidence factor
// in [0,1] and zero or more issue strings. Findings are values, never
// errors: an implausible record lowers confidence and grows the issue list,
// it does not fail the call.
package verify

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/pdiddy/transparency-engine/internal/facts"
	"github.com/pdiddy/transparency-engine/internal/rules"
	"github.com/pdiddy/transparency-engine/pkg/types"
)

// FactSource is the slice of the known-facts store the checker consults.
// A nil FactSource disables the consistency cache; verification still runs.
type FactSource interface {
	Lookup(ctx context.Context, fingerprint string) (facts.Lookup, error)
	StoreVerified(ctx context.Context, fingerprint string, rec types.Record, confidence float64, methods []string) error
	FlagSuspicious(ctx context.Context, fingerprint string, rec types.Record, reasons []string) error
}

// Checker verifies records against the rule set, the known-facts store, and
// the originating query. It is safe for concurrent use once constructed.
type Checker struct {
	rules *rules.Set
	facts FactSource
	cfg   types.VerifierConfig
	log   *slog.Logger
}

// New returns a Checker. source may be nil to run without a facts store.
func New(rs *rules.Set, source FactSource, cfg types.VerifierConfig, log *slog.Logger) *Checker {
	if log == nil {
		log = slog.Default()
	}
	return &Checker{rules: rs, facts: source, cfg: cfg, log: log}
}

// Verify coerces a raw collaborator document into a Record and runs all six
// checks against it (R2.1-R2.4). The boundary coercion happens exactly once,
// here; downstream code sees only the typed record.
func (c *Checker) Verify(ctx context.Context, raw map[string]any, query string) (types.Record, types.Outcome) {
	rec, coercionIssues := types.RecordFromMap(raw)

	confidence := 1.0
	var issues []string
	var methods []string
	var failed []string

	apply := func(name string, factor float64, found []string) {
		methods = append(methods, name)
		if factor < 1.0 {
			confidence *= factor
			failed = append(failed, name)
		}
		issues = append(issues, found...)
	}

	factor, found := c.checkStructural(rec, coercionIssues)
	apply(types.CheckStructural, factor, found)

	factor, found = c.checkRange(rec)
	apply(types.CheckRange, factor, found)

	factor, found = c.checkPlausibility(rec)
	apply(types.CheckPlausibility, factor, found)

	factor, found = c.checkPattern(rec)
	apply(types.CheckPattern, factor, found)

	fingerprint := facts.Fingerprint(rec)
	factor, found = c.checkConsistency(ctx, rec, fingerprint)
	apply(types.CheckConsistency, factor, found)

	factor, found = c.checkRelevance(rec, query)
	apply(types.CheckRelevance, factor, found)

	outcome := types.Outcome{
		Verified:     confidence >= c.cfg.MinConfidence && len(issues) <= c.cfg.MaxIssues,
		Confidence:   confidence,
		Issues:       issues,
		Methods:      methods,
		FailedChecks: failed,
	}

	if outcome.Verified && confidence >= c.cfg.StoreThreshold && c.facts != nil {
		if err := c.facts.StoreVerified(ctx, fingerprint, rec, confidence, methods); err != nil {
			c.log.Warn("storing verified fact failed", "fingerprint", fingerprint, "error", err)
		}
	}

	return rec, outcome
}

// VerifyBatch verifies every raw result and splits the batch three ways
// (R4.1): verified records pass, unverified records with confidence above the
// flag threshold pass annotated, the rest are filtered out and flagged in
// the suspicious store. A panic while verifying one record rejects that
// record with zero confidence and the batch continues (R4.3).
func (c *Checker) VerifyBatch(ctx context.Context, raws []map[string]any, query string) types.BatchResult {
	result := types.BatchResult{Total: len(raws)}

	for _, raw := range raws {
		rec, outcome := c.verifyIsolated(ctx, raw, query)

		switch {
		case outcome.Verified:
			result.Verified++
			result.Records = append(result.Records, types.VerifiedRecord{Record: rec, Outcome: outcome})
		case outcome.Confidence > c.cfg.FlagThreshold:
			result.Suspicious++
			result.Records = append(result.Records, types.VerifiedRecord{Record: rec, Outcome: outcome})
		default:
			result.Filtered++
			result.RejectedIssues = append(result.RejectedIssues, outcome.Issues...)
			result.RejectedChecks = append(result.RejectedChecks, outcome.FailedChecks...)
			c.logSuspicious(ctx, rec, outcome)
		}
	}

	c.log.Info("verification batch complete",
		"total", result.Total, "verified", result.Verified,
		"suspicious", result.Suspicious, "filtered", result.Filtered)
	return result
}

func (c *Checker) verifyIsolated(ctx context.Context, raw map[string]any, query string) (rec types.Record, outcome types.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("verification panic isolated", "error", fmt.Sprint(r))
			outcome = types.Outcome{
				Confidence: 0,
				Issues:     []string{fmt.Sprintf("Verifikationsfehler: %v", r)},
				Methods:    []string{"error"},
			}
		}
	}()
	return c.Verify(ctx, raw, query)
}

func (c *Checker) logSuspicious(ctx context.Context, rec types.Record, outcome types.Outcome) {
	c.log.Warn("suspicious record filtered",
		"confidence", outcome.Confidence, "issues", strings.Join(outcome.Issues, "; "))
	if c.facts == nil {
		return
	}
	if err := c.facts.FlagSuspicious(ctx, facts.Fingerprint(rec), rec, outcome.Issues); err != nil {
		c.log.Warn("flagging suspicious entry failed", "error", err)
	}
}

// checkStructural validates that the record survived coercion and carries a
// description, the one mandatory field (R2.1).
func (c *Checker) checkStructural(rec types.Record, coercionIssues []string) (float64, []string) {
	issues := append([]string(nil), coercionIssues...)
	if strings.TrimSpace(rec.Description) == "" {
		issues = append(issues, "Pflichtfeld 'beschreibung' fehlt oder ist leer")
	}
	if len(issues) > 0 {
		return c.cfg.StructuralPenalty, issues
	}
	return 1.0, nil
}

// checkRange validates every field that has a configured range or closed
// vocabulary (R2.2). Document fields only count when present.
func (c *Checker) checkRange(rec types.Record) (float64, []string) {
	var issues []string

	if rec.Year != nil && (*rec.Year < c.rules.YearMin || *rec.Year > c.rules.YearMax) {
		issues = append(issues, fmt.Sprintf(
			"Feld 'jahr' (%d) außerhalb des gültigen Bereichs [%d, %d]",
			*rec.Year, c.rules.YearMin, c.rules.YearMax))
	}
	if rec.Amount != nil && (*rec.Amount < c.rules.AmountMin || *rec.Amount > c.rules.AmountMax) {
		issues = append(issues, fmt.Sprintf(
			"Feld 'betrag' (%.2f) außerhalb des gültigen Bereichs [%.0f, %.0f]",
			*rec.Amount, c.rules.AmountMin, c.rules.AmountMax))
	}
	if rec.Category != "" && !c.rules.ValidCategory(rec.Category) {
		issues = append(issues, fmt.Sprintf("Unbekannte Kategorie: %s", rec.Category))
	}
	if rec.DocType != "" && !c.rules.ValidDocType(rec.DocType) {
		issues = append(issues, fmt.Sprintf("Unbekannter Dokumenttyp: %s", rec.DocType))
	}
	if rec.Filename != "" && !c.rules.ValidExtension(rec.Filename) {
		issues = append(issues, fmt.Sprintf("Ungültige Dateiendung: %s", rec.Filename))
	}
	if rec.FileSize != nil && *rec.FileSize > c.rules.MaxFileSize {
		issues = append(issues, fmt.Sprintf(
			"Dateigröße (%d) überschreitet das Maximum (%d)", *rec.FileSize, c.rules.MaxFileSize))
	}

	if len(issues) > 0 {
		return c.cfg.RangePenalty, issues
	}
	return 1.0, nil
}

var dateYearRe = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// checkPlausibility applies category amount bands, year/date consistency,
// and description heuristics (R2.3).
func (c *Checker) checkPlausibility(rec types.Record) (float64, []string) {
	var issues []string

	if rec.Category != "" && rec.Amount != nil {
		if band, ok := c.rules.Band(rec.Category); ok {
			if *rec.Amount < band.Min {
				issues = append(issues, fmt.Sprintf(
					"Betrag %.2f€ zu niedrig für Kategorie '%s'", *rec.Amount, strings.ToLower(rec.Category)))
			}
			if *rec.Amount > band.Max {
				issues = append(issues, fmt.Sprintf(
					"Betrag %.2f€ zu hoch für Kategorie '%s'", *rec.Amount, strings.ToLower(rec.Category)))
			}
		}
	}

	if rec.Year != nil && rec.Date != "" {
		if m := dateYearRe.FindString(rec.Date); m != "" {
			if dateYear, err := strconv.Atoi(m); err == nil && dateYear != *rec.Year {
				issues = append(issues, fmt.Sprintf(
					"Jahr %d stimmt nicht mit Datum %s überein", *rec.Year, rec.Date))
			}
		}
	}

	if rec.Description != "" {
		desc := strings.ToLower(rec.Description)
		if len([]rune(strings.TrimSpace(desc))) < c.rules.MinDescriptionLen {
			issues = append(issues, "Beschreibung zu kurz")
		}
		for _, w := range c.rules.SuspiciousWords {
			if strings.Contains(desc, w) {
				issues = append(issues, fmt.Sprintf("Verdächtiges Wort in Beschreibung: %s", w))
			}
		}
		if rec.Amount != nil && *rec.Amount > c.rules.HighAmountFloor && !containsAnyWord(desc, c.rules.ProjectWords) {
			issues = append(issues, fmt.Sprintf(
				"Hoher Betrag (%.2f€) ohne entsprechende Projektbeschreibung", *rec.Amount))
		}
	}

	if len(issues) > 0 {
		return c.cfg.PlausibilityPenalty, issues
	}
	return 1.0, nil
}

// checkPattern scans the serialized record for suspicious patterns (R2.4).
// A hit is near-disqualifying.
func (c *Checker) checkPattern(rec types.Record) (float64, []string) {
	hits := c.rules.MatchSuspicious(rec.SearchText())
	if len(hits) == 0 {
		return 1.0, nil
	}
	issues := make([]string, 0, len(hits))
	for _, p := range hits {
		issues = append(issues, fmt.Sprintf("Verdächtiges Muster erkannt: %s", p))
	}
	return c.cfg.PatternPenalty, issues
}

// checkConsistency probes the known-facts store (R3.1-R3.4). A stored
// verified fact returns its stored confidence directly rather than a fresh
// heuristic; an unresolved suspicious entry is heavily penalized; a miss
// falls back to the category/year co-occurrence heuristic. Store errors are
// logged and treated as a neutral finding, never raised.
func (c *Checker) checkConsistency(ctx context.Context, rec types.Record, fingerprint string) (float64, []string) {
	if c.facts == nil {
		return 1.0, nil
	}

	lookup, err := c.facts.Lookup(ctx, fingerprint)
	if err != nil {
		c.log.Warn("facts store lookup failed", "fingerprint", fingerprint, "error", err)
		return 0.8, nil
	}

	if lookup.Verified != nil {
		return lookup.Verified.Confidence, nil
	}
	if lookup.Suspicious != nil {
		return 0.3, []string{fmt.Sprintf("Bereits als verdächtig markiert: %s", lookup.Suspicious.Reason)}
	}

	heuristic := similarFactsConfidence(rec)
	if heuristic >= 0.8 {
		return heuristic, nil
	}
	return heuristic, []string{"Keine ähnlichen verifizierten Fakten gefunden"}
}

// similarFactsConfidence is a coarse stand-in for a similarity search. The
// graded constants are deliberate and acceptance tests encode them.
func similarFactsConfidence(rec types.Record) float64 {
	hasCategory := rec.Category != ""
	hasYear := rec.Year != nil
	switch {
	case hasCategory && hasYear:
		return 0.8
	case hasCategory || hasYear:
		return 0.6
	default:
		return 0.5
	}
}

// checkRelevance computes a token-overlap ratio between the query and the
// record's field values (R2.6). Low overlap is advisory: a mild penalty,
// never a rejection on its own.
func (c *Checker) checkRelevance(rec types.Record, query string) (float64, []string) {
	queryWords := c.tokenize(query)
	if len(queryWords) == 0 {
		return 1.0, nil
	}

	recordWords := c.tokenize(valueText(rec))
	matches := 0
	for w := range queryWords {
		if matchesAnyWord(w, recordWords) {
			matches++
		}
	}

	overlap := float64(matches) / float64(len(queryWords))
	if overlap >= c.cfg.MinRelevance {
		return 1.0, nil
	}
	return c.cfg.RelevancePenalty, []string{"Ergebnis nicht relevant für Anfrage"}
}

func (c *Checker) tokenize(text string) map[string]struct{} {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		if c.rules.IsStopword(w) {
			continue
		}
		set[w] = struct{}{}
	}
	return set
}

// valueText joins field values without the key prefixes used for pattern
// scanning, so a query word never matches a schema key.
func valueText(rec types.Record) string {
	parts := make([]string, 0, 8+len(rec.Extra))
	if rec.Year != nil {
		parts = append(parts, strconv.Itoa(*rec.Year))
	}
	if rec.Amount != nil {
		parts = append(parts, strconv.FormatFloat(*rec.Amount, 'f', -1, 64))
	}
	for _, s := range []string{rec.Category, rec.Description, rec.Date, rec.Filename, rec.DocType} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	for _, v := range rec.Extra {
		parts = append(parts, v)
	}
	return strings.Join(parts, " ")
}

// matchesAnyWord treats a query token contained in a record token as a
// match, so compound nouns still count ("straßen" in "straßenreparatur").
func matchesAnyWord(queryWord string, recordWords map[string]struct{}) bool {
	for w := range recordWords {
		if strings.Contains(w, queryWord) {
			return true
		}
	}
	return false
}

func containsAnyWord(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
