// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package interpret turns free-text German queries into structured
// interpretations: intent, entities, filters, and search keywords.
// Implements: prd001-interpretation (R1-R5);
//
//	docs/ARCHITECTURE.md § Interpretation.
//
// Interpretation is deliberately rule-based: keyword tables and regular
// expressions, no language model. It is a pure function over the query text
// and the wall clock (relative year phrases resolve against the current
// date).
package interpret

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/pdiddy/transparency-engine/internal/rules"
	"github.com/pdiddy/transparency-engine/pkg/types"
)

// Confidence increments per non-empty entity group (R4.2). The base applies
// to every query; the sum is capped at 1.0.
const (
	confidenceBase     = 0.5
	confidenceYears    = 0.2
	confidenceAmounts  = 0.2
	confidenceCategory = 0.2
	confidenceKeywords = 0.1
)

// Interpreter analyzes queries against a plausibility rule set. The zero
// value is not usable; construct with New.
type Interpreter struct {
	rules *rules.Set
	now   func() time.Time
}

// New returns an Interpreter using rs for year bounds and stopwords.
func New(rs *rules.Set) *Interpreter {
	return &Interpreter{rules: rs, now: time.Now}
}

// Interpret analyzes a query. It never fails: any internal error degrades to
// a general search carrying the whole query as its only keyword, so callers
// always receive a usable structure (R5.1).
func (it *Interpreter) Interpret(query string) (interp types.Interpretation) {
	defer func() {
		if r := recover(); r != nil {
			interp = degraded(query, fmt.Sprintf("Interpretation fehlgeschlagen: %v", r))
		}
	}()

	norm := Normalize(query)

	years := it.extractYears(norm)
	entities := types.Entities{
		Years:         years,
		Categories:    extractCategories(norm),
		DocumentTypes: extractDocumentTypes(norm),
	}
	extractAmounts(norm, years, &entities)

	keywords := it.extractKeywords(norm)
	intent := detectIntent(norm)

	return types.Interpretation{
		OriginalQuery:   query,
		NormalizedQuery: norm,
		Intent:          intent,
		Entities:        entities,
		Keywords:        keywords,
		QueryType:       classifyQueryType(intent, entities),
		Confidence:      confidence(entities, keywords),
	}
}

// degraded is the fallback interpretation (R5.1).
func degraded(query, note string) types.Interpretation {
	return types.Interpretation{
		OriginalQuery:   query,
		NormalizedQuery: strings.ToLower(strings.TrimSpace(query)),
		Intent:          types.IntentGeneral,
		Keywords:        []string{query},
		QueryType:       types.QueryGeneral,
		Confidence:      confidenceBase,
		Note:            note,
	}
}

// foldReplacer rewrites German special characters into their ASCII spellings
// and currency signs into words. Folding applies to the matching copy only;
// the original query is preserved verbatim (R1.3).
var foldReplacer = strings.NewReplacer(
	"ä", "ae", "ö", "oe", "ü", "ue", "ß", "ss",
	"€", "euro", "&", "und",
)

// Normalize lowercases, folds, and collapses whitespace (R1.1, R1.2).
func Normalize(query string) string {
	norm := foldReplacer.Replace(strings.ToLower(strings.TrimSpace(query)))
	return strings.Join(strings.Fields(norm), " ")
}

// detectIntent picks the first intent whose keyword set matches, in fixed
// priority order: financial > document > statistics > protocol > general
// (R2.1). Ties are not broken by match count; priority order alone governs
// (R2.2).
func detectIntent(norm string) types.Intent {
	ordered := []struct {
		intent   types.Intent
		keywords []string
	}{
		{types.IntentFinancial, financeKeywords},
		{types.IntentDocument, documentKeywords},
		{types.IntentStatistics, statisticsKeywords},
		{types.IntentProtocol, protocolKeywords},
	}
	for _, c := range ordered {
		for _, kw := range c.keywords {
			if strings.Contains(norm, kw) {
				return c.intent
			}
		}
	}
	return types.IntentGeneral
}

// extractYears finds explicit 4-digit years within the plausible range,
// resolves relative phrases against the current date, and expands explicit
// range phrases to the inclusive integer range (R3.1). An explicit range
// overrides single-year matches.
func (it *Interpreter) extractYears(norm string) []int {
	current := it.now().Year()

	if m := yearRangeRe.FindStringSubmatch(norm); m != nil {
		start, _ := strconv.Atoi(m[1])
		end, _ := strconv.Atoi(m[2])
		if start <= end && it.plausibleYear(start) && it.plausibleYear(end) {
			years := make([]int, 0, end-start+1)
			for y := start; y <= end; y++ {
				years = append(years, y)
			}
			return years
		}
	}

	seen := make(map[int]struct{})
	var years []int
	add := func(y int) {
		if !it.plausibleYear(y) {
			return
		}
		if _, ok := seen[y]; ok {
			return
		}
		seen[y] = struct{}{}
		years = append(years, y)
	}

	for _, tok := range yearRe.FindAllString(norm, -1) {
		y, _ := strconv.Atoi(tok)
		add(y)
	}

	switch {
	case strings.Contains(norm, "letztes jahr"),
		strings.Contains(norm, "letzten jahr"),
		strings.Contains(norm, "voriges jahr"),
		strings.Contains(norm, "vergangenes jahr"):
		add(current - 1)
	case strings.Contains(norm, "dieses jahr"),
		strings.Contains(norm, "aktuelles jahr"):
		add(current)
	default:
		if m := lastNYrsRe.FindStringSubmatch(norm); m != nil {
			n, _ := strconv.Atoi(m[1])
			for y := current - n + 1; y <= current; y++ {
				add(y)
			}
		}
	}

	sort.Ints(years)
	return years
}

func (it *Interpreter) plausibleYear(y int) bool {
	return y >= it.rules.YearMin && y <= it.rules.YearMax
}

// extractAmounts finds euro amounts and classifies each as min, max, or
// exact by the context words immediately preceding it (R3.2). Numbers
// already recognized as years are not amounts; this keeps "zwischen 2020
// und 2023" a year range rather than an amount band.
func extractAmounts(norm string, years []int, entities *types.Entities) {
	yearSet := make(map[float64]struct{}, len(years))
	for _, y := range years {
		yearSet[float64(y)] = struct{}{}
	}

	if m := amountBetweenRe.FindStringSubmatch(norm); m != nil {
		lo, okLo := ParseAmount(m[1])
		hi, okHi := ParseAmount(m[2])
		_, loIsYear := yearSet[lo]
		_, hiIsYear := yearSet[hi]
		if okLo && okHi && !loIsYear && !hiIsYear {
			entities.AmountMin = &lo
			entities.AmountMax = &hi
			return
		}
	}

	candidates := euroAmountRe.FindAllStringSubmatchIndex(norm, -1)
	if len(candidates) == 0 {
		candidates = boundAmountRe.FindAllStringSubmatchIndex(norm, -1)
	}

	for _, idx := range candidates {
		tok := norm[idx[2]:idx[3]]
		amount, ok := ParseAmount(tok)
		if !ok {
			continue
		}
		if _, isYear := yearSet[amount]; isYear {
			continue
		}

		context := norm[max(0, idx[2]-20):idx[2]]
		switch {
		case containsAny(context, minContextWords):
			entities.AmountMin = &amount
		case containsAny(context, maxContextWords):
			entities.AmountMax = &amount
		default:
			entities.Amount = &amount
		}
	}
}

// ParseAmount parses a German-formatted number: periods group thousands,
// a comma separates decimals ("10.000,50" -> 10000.50).
func ParseAmount(s string) (float64, bool) {
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

func extractCategories(norm string) []string {
	var found []string
	for _, c := range categoryKeywords {
		if containsAny(norm, c.words) {
			found = append(found, c.category)
		}
	}
	return found
}

func extractDocumentTypes(norm string) []string {
	var found []string
	for _, d := range documentTypeKeywords {
		if containsAny(norm, d.words) {
			found = append(found, d.docType)
		}
	}
	return found
}

// extractKeywords tokenizes the normalized query, drops stopwords and
// tokens of length <= 2, and deduplicates preserving first-seen order
// (R3.5).
func (it *Interpreter) extractKeywords(norm string) []string {
	tokens := strings.FieldsFunc(norm, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]struct{}, len(tokens))
	var keywords []string
	for _, tok := range tokens {
		if len([]rune(tok)) <= 2 || it.rules.IsStopword(tok) {
			continue
		}
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		keywords = append(keywords, tok)
	}
	return keywords
}

// classifyQueryType derives the coarse query type. A query with any amount
// entity is financial regardless of intent: the redundancy raises recall
// for financial queries (R4.5).
func classifyQueryType(intent types.Intent, entities types.Entities) types.QueryType {
	switch {
	case entities.HasAmount() || intent == types.IntentFinancial:
		return types.QueryFinancial
	case intent == types.IntentDocument:
		return types.QueryDocuments
	case intent == types.IntentProtocol:
		return types.QueryProtocols
	case intent == types.IntentStatistics:
		return types.QueryStatistics
	default:
		return types.QueryGeneral
	}
}

func confidence(entities types.Entities, keywords []string) float64 {
	c := confidenceBase
	if len(entities.Years) > 0 {
		c += confidenceYears
	}
	if entities.HasAmount() {
		c += confidenceAmounts
	}
	if len(entities.Categories) > 0 {
		c += confidenceCategory
	}
	if len(keywords) > 0 {
		c += confidenceKeywords
	}
	return math.Min(1.0, c)
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
