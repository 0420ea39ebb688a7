// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/transparency-engine/internal/facts"
	"github.com/pdiddy/transparency-engine/internal/interpret"
	"github.com/pdiddy/transparency-engine/internal/pipeline"
	"github.com/pdiddy/transparency-engine/internal/quality"
	"github.com/pdiddy/transparency-engine/internal/verify"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [query]",
	Short: "Verify candidate results against a query",
	Long: `Verify runs candidate results from a JSON file through the full pipeline:
the query is interpreted, each result passes the six-check fact checker, and
the batch is scored. Rejected results are logged to the suspicious store.

The results file holds a JSON array of objects with the portal's German
field names (jahr, betrag, kategorie, beschreibung, datum, ...).`,
	Args: cobra.MinimumNArgs(1),
	RunE: runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	resultsFile, _ := cmd.Flags().GetString("results")
	if resultsFile == "" {
		return fmt.Errorf("a results file is required: pass --results file.json")
	}

	raws, err := loadResults(resultsFile)
	if err != nil {
		return err
	}

	log := newLogger(cmd)
	rs, err := loadRules(cmd)
	if err != nil {
		return err
	}

	var source verify.FactSource
	if noStore, _ := cmd.Flags().GetBool("no-store"); !noStore {
		store, err := facts.NewStore(factsConfig(cmd))
		if err != nil {
			return err
		}
		defer store.Close()
		source = store
	}

	checker := verify.New(rs, source, verifierConfig(), log)
	agg := quality.NewAggregator(qualityConfig())
	pipe := pipeline.New(interpret.New(rs), pipeline.StaticSearcher{Results: raws}, checker, agg, log)

	output := pipe.Run(context.Background(), query)

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(output)
	}

	printRecords(output)
	fmt.Println()
	quality.FormatReport(os.Stdout, output.Report)
	return nil
}

func printRecords(output pipeline.Output) {
	if len(output.Records) == 0 {
		fmt.Println("Keine Ergebnisse nach Verifikation.")
		return
	}

	fmt.Fprintf(os.Stdout, "%-6s  %-10s  %-14s  %-40s  %-10s\n",
		"Jahr", "Konfidenz", "Kategorie", "Beschreibung", "Status")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 90))

	for _, vr := range output.Records {
		year := "-"
		if vr.Record.Year != nil {
			year = fmt.Sprintf("%d", *vr.Record.Year)
		}
		desc := vr.Record.Description
		if len(desc) > 40 {
			desc = desc[:37] + "..."
		}
		status := "verifiziert"
		if !vr.Outcome.Verified {
			status = "verdächtig"
		}
		fmt.Fprintf(os.Stdout, "%-6s  %-10.2f  %-14s  %-40s  %-10s\n",
			year, vr.Outcome.Confidence, vr.Record.Category, desc, status)
	}
}

func loadResults(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading results file: %w", err)
	}
	var raws []map[string]any
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("parsing results file %s: %w", path, err)
	}
	return raws, nil
}

func init() {
	verifyCmd.Flags().String("results", "", "JSON file with candidate results to verify")
	verifyCmd.Flags().Bool("json", false, "output the full pipeline result as JSON")
	verifyCmd.Flags().Bool("no-store", false, "verify without the known-facts store")

	rootCmd.AddCommand(verifyCmd)
}
