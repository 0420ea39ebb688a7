// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package interpret

import "regexp"

// Keyword tables for German municipal queries. All entries are in folded
// form (ae/oe/ue/ss) because matching runs on the normalized query
// (prd001-interpretation R1.2). Matching is by substring, as in the source
// data the tables were tuned against.

// financeKeywords indicate a financial query.
var financeKeywords = []string{
	"ausgaben", "ausgabe", "kosten", "aufwand", "aufwendungen", "bezahlt",
	"gezahlt", "einnahmen", "einnahme", "erloes", "erloese", "einkommen",
	"budget", "haushalt", "etat", "finanzplan", "betrag", "summe", "euro",
	"wie viel", "wieviel", "finanz", "geld",
}

// documentKeywords indicate a document query. Protocol terms are kept
// separate so the protocol intent stays reachable under priority ordering
// (R2.2).
var documentKeywords = []string{
	"vertrag", "vertraege", "vereinbarung", "vereinbarungen", "kontrakt",
	"rechnung", "rechnungen", "beleg", "belege", "quittung", "quittungen",
	"bericht", "berichte", "dokumentation", "studie", "studien",
	"dokument", "dokumente", "datei", "dateien", "pdf",
}

// statisticsKeywords indicate a statistics query.
var statisticsKeywords = []string{
	"statistik", "uebersicht", "zusammenfassung", "entwicklung", "trend",
	"vergleich", "analyse",
}

// protocolKeywords indicate a council protocol query.
var protocolKeywords = []string{
	"protokoll", "protokolle", "sitzung", "sitzungen", "gemeinderat",
	"beschluss", "beschluesse",
}

// categoryKeywords maps budget categories to their trigger words. The slice
// is ordered so extraction output is deterministic.
var categoryKeywords = []struct {
	category string
	words    []string
}{
	{"infrastruktur", []string{
		"strasse", "strassen", "weg", "wege", "bruecke", "bruecken",
		"kanal", "kanaele", "wasserleitung", "wasserleitungen", "abwasser",
		"infrastruktur", "bauten",
	}},
	{"personal", []string{
		"personal", "gehalt", "gehaelter", "lohn", "loehne", "mitarbeiter",
		"angestellte", "beamte", "personalkosten",
	}},
	{"kultur", []string{
		"kultur", "fest", "feste", "veranstaltung", "veranstaltungen",
		"museum", "theater", "konzert", "konzerte", "stadtfest",
	}},
	{"umwelt", []string{
		"umwelt", "gruenflaeche", "gruenflaechen", "park", "parks", "baum",
		"baeume", "umweltschutz", "natur",
	}},
	{"bildung", []string{
		"schule", "schulen", "bildung", "kindergarten", "kindergaerten",
		"unterricht",
	}},
	{"soziales", []string{
		"sozial", "soziales", "hilfe", "unterstuetzung", "betreuung",
		"pflege",
	}},
	{"verwaltung", []string{
		"verwaltung", "buero", "amt", "aemter", "rathaus", "gemeinde",
	}},
}

// documentTypeKeywords maps document types to their trigger words.
var documentTypeKeywords = []struct {
	docType string
	words   []string
}{
	{"protokoll", []string{"protokoll", "sitzung", "gemeinderat", "beschluss", "beschluesse"}},
	{"vertrag", []string{"vertrag", "vertraege", "vereinbarung", "kontrakt"}},
	{"rechnung", []string{"rechnung", "beleg", "quittung"}},
	{"bericht", []string{"bericht", "dokumentation", "studie", "analyse"}},
}

// Comparison context words classifying an amount as bound or exact (R3.2).
var (
	minContextWords = []string{"ueber", "mehr als", "mindestens", "ab"}
	maxContextWords = []string{"unter", "weniger als", "hoechstens", "bis"}
)

var (
	yearRe      = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	yearRangeRe = regexp.MustCompile(`(?:zwischen|von)\s+(\d{4})\s+(?:und|bis)\s+(\d{4})`)
	lastNYrsRe  = regexp.MustCompile(`letzten?\s+(\d+)\s+jahren?`)

	// euroAmountRe matches German-formatted amounts with a currency marker
	// (period grouping, comma decimals): "10.000,50 euro".
	euroAmountRe = regexp.MustCompile(`\b(\d{1,3}(?:\.\d{3})*(?:,\d{2})?|\d+(?:,\d{2})?)\s*(?:euro|eur)\b`)

	// boundAmountRe matches amounts anchored by a comparison word, which
	// need no currency marker ("ueber 10.000").
	boundAmountRe = regexp.MustCompile(`\b(?:ueber|unter|mindestens|hoechstens|zwischen)\s+(\d{1,3}(?:\.\d{3})*(?:,\d{2})?|\d+(?:,\d{2})?)\b`)

	// amountBetweenRe captures both ends of "zwischen X und Y euro".
	amountBetweenRe = regexp.MustCompile(`zwischen\s+(\d{1,3}(?:\.\d{3})*(?:,\d{2})?)\s+und\s+(\d{1,3}(?:\.\d{3})*(?:,\d{2})?)`)
)
