// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package interpret

import (
	"fmt"
	"strings"

	"github.com/pdiddy/transparency-engine/pkg/types"
)

// baseSuggestions are the canned example queries shown when nothing better
// matches (R6.1).
var baseSuggestions = []string{
	"Wie viel gab die Gemeinde 2023 für Straßen aus?",
	"Zeige mir alle Gemeinderatsprotokolle von 2022",
	"Welche Ausgaben über 10.000 Euro gab es im letzten Jahr?",
	"Finde Dokumente über Wasserleitungsprojekte",
	"Wie entwickelten sich die Personalkosten zwischen 2020 und 2023?",
	"Zeige mir die größten Ausgaben der letzten 5 Jahre",
}

// Suggestions returns example queries related to a partial input. With no
// overlap (or empty input) it falls back to the first three canned
// suggestions (R6.1).
func (it *Interpreter) Suggestions(partial string) []string {
	norm := Normalize(partial)
	words := strings.Fields(norm)

	var matched []string
	if len(words) > 0 {
		for _, s := range baseSuggestions {
			sNorm := Normalize(s)
			for _, w := range words {
				if strings.Contains(sNorm, w) {
					matched = append(matched, s)
					break
				}
			}
		}
	}
	if len(matched) == 0 {
		matched = append(matched, baseSuggestions[:3]...)
	}
	return matched
}

// Validate warns about query content the rule set marks implausible:
// out-of-range years and absurd amounts (R6.2). Warnings never block
// interpretation; they are shown alongside results.
func (it *Interpreter) Validate(query string) []string {
	norm := Normalize(query)
	var warnings []string

	for _, tok := range yearRe.FindAllString(norm, -1) {
		var y int
		fmt.Sscanf(tok, "%d", &y)
		if !it.plausibleYear(y) {
			warnings = append(warnings,
				fmt.Sprintf("Jahr %d liegt außerhalb des erwarteten Bereichs (%d-%d)",
					y, it.rules.YearMin, it.rules.YearMax))
		}
	}

	for _, m := range euroAmountRe.FindAllStringSubmatch(norm, -1) {
		amount, ok := ParseAmount(m[1])
		if ok && amount > it.rules.AmountMax {
			warnings = append(warnings,
				fmt.Sprintf("Betrag %s ist unrealistisch hoch für eine Gemeinde", m[1]))
		}
	}

	return warnings
}

var intentExplanations = map[types.Intent]string{
	types.IntentFinancial:  "Suche nach Finanzdaten",
	types.IntentDocument:   "Suche nach Dokumenten",
	types.IntentProtocol:   "Suche nach Protokollen",
	types.IntentStatistics: "Suche nach Statistiken",
	types.IntentGeneral:    "Allgemeine Suche",
}

// Explain renders an interpretation as a short German sentence for display
// next to search results (R6.3).
func Explain(interp types.Interpretation) string {
	parts := []string{"Erkannte Absicht: " + intentExplanations[interp.Intent]}

	var params []string
	if n := len(interp.Entities.Years); n == 1 {
		params = append(params, fmt.Sprintf("Jahr: %d", interp.Entities.Years[0]))
	} else if n > 1 {
		params = append(params, fmt.Sprintf("Jahre: %d-%d",
			interp.Entities.Years[0], interp.Entities.Years[n-1]))
	}
	if len(interp.Entities.Categories) > 0 {
		params = append(params, "Kategorie: "+strings.Join(interp.Entities.Categories, ", "))
	}
	if interp.Entities.Amount != nil {
		params = append(params, fmt.Sprintf("Betrag: %.2f €", *interp.Entities.Amount))
	}
	if interp.Entities.AmountMin != nil {
		params = append(params, fmt.Sprintf("Betrag ab %.2f €", *interp.Entities.AmountMin))
	}
	if interp.Entities.AmountMax != nil {
		params = append(params, fmt.Sprintf("Betrag bis %.2f €", *interp.Entities.AmountMax))
	}
	if len(params) > 0 {
		parts = append(parts, "Erkannte Parameter: "+strings.Join(params, ", "))
	}

	level := "niedrig"
	switch {
	case interp.Confidence > 0.8:
		level = "hoch"
	case interp.Confidence > 0.6:
		level = "mittel"
	}
	parts = append(parts, fmt.Sprintf("Vertrauen in die Analyse: %s (%.0f%%)",
		level, interp.Confidence*100))

	return strings.Join(parts, " | ")
}
