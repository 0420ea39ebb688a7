// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package interpret

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/transparency-engine/internal/rules"
	"github.com/pdiddy/transparency-engine/pkg/types"
)

// fixedNow keeps relative year phrases deterministic in tests.
var fixedNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func testInterpreter(t *testing.T) *Interpreter {
	t.Helper()
	rs := rules.Default(fixedNow)
	if err := rs.Compile(); err != nil {
		t.Fatalf("compiling rules: %v", err)
	}
	it := New(rs)
	it.now = func() time.Time { return fixedNow }
	return it
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Straßenbrücke über die Traun", "strassenbruecke ueber die traun"},
		{"  Ausgaben   2023  ", "ausgaben 2023"},
		{"Kosten in €", "kosten in euro"},
		{"Kultur & Bildung", "kultur und bildung"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestInterpretFinancialQuery(t *testing.T) {
	it := testInterpreter(t)

	interp := it.Interpret("Wie viel gab die Gemeinde 2023 für Straßen aus?")

	if interp.Intent != types.IntentFinancial {
		t.Errorf("intent = %s, want %s", interp.Intent, types.IntentFinancial)
	}
	if interp.QueryType != types.QueryFinancial {
		t.Errorf("query type = %s, want %s", interp.QueryType, types.QueryFinancial)
	}
	if !reflect.DeepEqual(interp.Entities.Years, []int{2023}) {
		t.Errorf("years = %v, want [2023]", interp.Entities.Years)
	}
	if !containsString(interp.Entities.Categories, "infrastruktur") {
		t.Errorf("categories = %v, want infrastruktur included", interp.Entities.Categories)
	}
	if interp.OriginalQuery != "Wie viel gab die Gemeinde 2023 für Straßen aus?" {
		t.Errorf("original query was rewritten: %q", interp.OriginalQuery)
	}
}

func TestInterpretAmountBound(t *testing.T) {
	it := testInterpreter(t)

	interp := it.Interpret("Welche Ausgaben über 10.000 Euro gab es im letzten Jahr?")

	if interp.Entities.AmountMin == nil {
		t.Fatal("AmountMin = nil, want 10000")
	}
	if *interp.Entities.AmountMin != 10000 {
		t.Errorf("AmountMin = %v, want 10000", *interp.Entities.AmountMin)
	}
	if !reflect.DeepEqual(interp.Entities.Years, []int{2025}) {
		t.Errorf("years = %v, want [2025] for 'letztes Jahr' in 2026", interp.Entities.Years)
	}
	if interp.QueryType != types.QueryFinancial {
		t.Errorf("query type = %s, want financial", interp.QueryType)
	}
}

func TestInterpretYearRange(t *testing.T) {
	it := testInterpreter(t)

	interp := it.Interpret("Wie entwickelten sich die Personalkosten zwischen 2020 und 2023?")

	want := []int{2020, 2021, 2022, 2023}
	if !reflect.DeepEqual(interp.Entities.Years, want) {
		t.Errorf("years = %v, want %v", interp.Entities.Years, want)
	}
	// The range bounds are years, never an amount band.
	if interp.Entities.HasAmount() {
		t.Errorf("entities carry amounts %+v, want none", interp.Entities)
	}
	if !containsString(interp.Entities.Categories, "personal") {
		t.Errorf("categories = %v, want personal included", interp.Entities.Categories)
	}
}

func TestInterpretLastNYears(t *testing.T) {
	it := testInterpreter(t)

	interp := it.Interpret("Zeige mir die größten Ausgaben der letzten 3 Jahre")

	want := []int{2024, 2025, 2026}
	if !reflect.DeepEqual(interp.Entities.Years, want) {
		t.Errorf("years = %v, want %v", interp.Entities.Years, want)
	}
}

func TestInterpretDocumentQuery(t *testing.T) {
	it := testInterpreter(t)

	interp := it.Interpret("Finde alle Verträge von 2022")

	if interp.Intent != types.IntentDocument {
		t.Errorf("intent = %s, want %s", interp.Intent, types.IntentDocument)
	}
	if interp.QueryType != types.QueryDocuments {
		t.Errorf("query type = %s, want %s", interp.QueryType, types.QueryDocuments)
	}
	if !containsString(interp.Entities.DocumentTypes, "vertrag") {
		t.Errorf("document types = %v, want vertrag included", interp.Entities.DocumentTypes)
	}
}

func TestInterpretProtocolQuery(t *testing.T) {
	it := testInterpreter(t)

	interp := it.Interpret("Zeige mir alle Gemeinderatsprotokolle von 2022")

	if interp.Intent != types.IntentProtocol {
		t.Errorf("intent = %s, want %s", interp.Intent, types.IntentProtocol)
	}
	if interp.QueryType != types.QueryProtocols {
		t.Errorf("query type = %s, want %s", interp.QueryType, types.QueryProtocols)
	}
}

func TestDetectIntentPriority(t *testing.T) {
	// A query matching both finance and protocol keywords resolves by
	// priority order, not match count.
	if got := detectIntent("protokoll der ausgaben und kosten"); got != types.IntentFinancial {
		t.Errorf("intent = %s, want %s", got, types.IntentFinancial)
	}
}

func TestInterpretImplausibleYearIgnored(t *testing.T) {
	it := testInterpreter(t)

	interp := it.Interpret("Ausgaben im Jahr 2085")

	if len(interp.Entities.Years) != 0 {
		t.Errorf("years = %v, want none for out-of-range year", interp.Entities.Years)
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"10.000,50", 10000.50, true},
		{"1.234.567", 1234567, true},
		{"500", 500, true},
		{"12,99", 12.99, true},
		{"abc", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseAmount(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseAmount(%q) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestExtractKeywordsDedup(t *testing.T) {
	it := testInterpreter(t)

	interp := it.Interpret("Straßen Straßen Straßenbau")

	want := []string{"strassen", "strassenbau"}
	if !reflect.DeepEqual(interp.Keywords, want) {
		t.Errorf("keywords = %v, want %v", interp.Keywords, want)
	}
}

func TestConfidenceCapped(t *testing.T) {
	it := testInterpreter(t)

	interp := it.Interpret("Ausgaben über 5.000 Euro für Straßen und Schulen 2023")

	if interp.Confidence > 1.0 {
		t.Errorf("confidence = %v, want <= 1.0", interp.Confidence)
	}
	if interp.Confidence < 0.9 {
		t.Errorf("confidence = %v, want high for fully structured query", interp.Confidence)
	}
}

func TestValidate(t *testing.T) {
	it := testInterpreter(t)

	warnings := it.Validate("Ausgaben von 50.000.000 Euro im Jahr 2085")

	if len(warnings) != 2 {
		t.Fatalf("warnings = %v, want year and amount warning", warnings)
	}
}

func TestSuggestions(t *testing.T) {
	it := testInterpreter(t)

	got := it.Suggestions("straßen")
	if len(got) == 0 || !strings.Contains(Normalize(got[0]), "strassen") {
		t.Errorf("Suggestions(straßen) = %v, want street suggestion first", got)
	}

	fallback := it.Suggestions("")
	if len(fallback) != 3 {
		t.Errorf("empty input suggestions = %d entries, want 3", len(fallback))
	}
}

func TestExplain(t *testing.T) {
	it := testInterpreter(t)

	text := Explain(it.Interpret("Wie viel gab die Gemeinde 2023 für Straßen aus?"))

	for _, want := range []string{"Finanzdaten", "2023", "infrastruktur"} {
		if !strings.Contains(text, want) {
			t.Errorf("Explain output missing %q: %s", want, text)
		}
	}
}

func containsString(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
