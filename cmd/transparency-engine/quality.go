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
	"github.com/pdiddy/transparency-engine/internal/quality"
	"github.com/pdiddy/transparency-engine/internal/verify"
)

var qualityCmd = &cobra.Command{
	Use:   "quality",
	Short: "Score a results batch and print a quality report",
	Long: `Quality verifies a JSON results file against a query and prints the batch
quality report with score, labels, warnings, and recommendations.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuality,
}

func runQuality(cmd *cobra.Command, args []string) error {
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

	batch := checker.VerifyBatch(context.Background(), raws, query)
	report := agg.Score(batch)

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	quality.FormatReport(os.Stdout, report)
	fmt.Println()
	quality.FormatSummary(os.Stdout, agg.Summarize(), quality.Recommendations(agg.Summarize(), batch))
	return nil
}

func init() {
	qualityCmd.Flags().String("results", "", "JSON file with candidate results to score")
	qualityCmd.Flags().Bool("json", false, "output the report as JSON")
	qualityCmd.Flags().Bool("no-store", false, "score without the known-facts store")

	rootCmd.AddCommand(qualityCmd)
}
