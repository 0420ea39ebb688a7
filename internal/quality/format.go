// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package quality

import (
	"fmt"
	"io"

	"github.com/pdiddy/transparency-engine/pkg/types"
)

var qualityText = map[types.QualityLabel]string{
	types.QualityExcellent:    "ausgezeichnet",
	types.QualityGood:         "gut",
	types.QualityQuestionable: "fragwürdig",
	types.QualityNoData:       "keine Daten",
}

var confidenceText = map[types.ConfidenceLabel]string{
	types.ConfidenceHigh:   "hoch",
	types.ConfidenceMedium: "mittel",
	types.ConfidenceLow:    "niedrig",
}

// FormatReport writes a human-readable German summary of a batch report.
func FormatReport(w io.Writer, report types.Report) {
	fmt.Fprintln(w, "Qualitätsbericht")
	fmt.Fprintln(w, "================")
	if report.Score == types.ScoreNoData {
		fmt.Fprintln(w, "Keine Ergebnisse zu bewerten.")
		return
	}

	fmt.Fprintf(w, "Ergebnisse gesamt:  %d\n", report.Total)
	fmt.Fprintf(w, "Verifiziert:        %d\n", report.Verified)
	fmt.Fprintf(w, "Verdächtig:         %d\n", report.Suspicious)
	fmt.Fprintf(w, "Gefiltert:          %d\n", report.Filtered)
	fmt.Fprintf(w, "Qualitäts-Score:    %d%%\n", report.Score)
	fmt.Fprintf(w, "Konfidenz:          %s\n", confidenceText[report.Confidence])
	fmt.Fprintf(w, "Datenqualität:      %s\n", qualityText[report.Quality])

	if len(report.Warnings) > 0 {
		fmt.Fprintln(w, "\nWarnungen:")
		for _, warning := range report.Warnings {
			fmt.Fprintf(w, "  - %s\n", warning)
		}
	}
	if len(report.Errors) > 0 {
		fmt.Fprintln(w, "\nFehler:")
		for _, e := range report.Errors {
			fmt.Fprintf(w, "  - %s\n", e)
		}
	}
}

// FormatSummary writes the history summary produced by Summarize.
func FormatSummary(w io.Writer, summary Summary, recommendations []string) {
	if summary.Checks == 0 {
		fmt.Fprintln(w, "Noch keine Qualitätsprüfungen durchgeführt.")
		return
	}

	fmt.Fprintf(w, "Durchschnittlicher Score: %.1f%% über %d Prüfungen\n",
		summary.AverageScore, summary.Checks)
	fmt.Fprintf(w, "Trend:                    %+d\n", summary.Trend)
	fmt.Fprintf(w, "Verteilung:               %d ausgezeichnet, %d gut, %d fragwürdig\n",
		summary.Excellent, summary.Good, summary.Questionable)

	if len(recommendations) > 0 {
		fmt.Fprintln(w, "\nEmpfehlungen:")
		for _, rec := range recommendations {
			fmt.Fprintf(w, "  - %s\n", rec)
		}
	}
}
