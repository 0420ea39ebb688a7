// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/transparency-engine/internal/facts"
)

var factsCmd = &cobra.Command{
	Use:   "facts",
	Short: "Manage the known-facts store (stats, resolve)",
	Long: `Facts operates on the local SQLite store of verified facts and suspicious
entries built up by verification runs.`,
}

// --- stats subcommand ---

var factsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show counts and confidence statistics for the store",
	RunE:  runFactsStats,
}

func runFactsStats(cmd *cobra.Command, args []string) error {
	store, err := facts.NewStore(factsConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := store.ReadStats(context.Background())
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	fmt.Printf("Verifizierte Fakten:       %d\n", stats.VerifiedFacts)
	fmt.Printf("Offene verdächtige Fälle:  %d\n", stats.OpenSuspicious)
	fmt.Printf("Mittlere Konfidenz:        %.2f\n", stats.AverageConfidence)
	if len(stats.TopMethods) > 0 {
		fmt.Println("Häufigste Prüfmethoden:")
		for method, count := range stats.TopMethods {
			fmt.Printf("  %-40s %d\n", method, count)
		}
	}
	return nil
}

// --- resolve subcommand ---

var factsResolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Mark all open suspicious entries as resolved",
	Long: `Resolve closes every open suspicious entry after manual review. Entries
stay in the store for auditing; they just stop penalizing re-verification.`,
	RunE: runFactsResolve,
}

func runFactsResolve(cmd *cobra.Command, args []string) error {
	store, err := facts.NewStore(factsConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.ResolveAllSuspicious(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("%d verdächtige Einträge aufgelöst.\n", n)
	return nil
}

func init() {
	factsStatsCmd.Flags().Bool("json", false, "output statistics as JSON")

	factsCmd.AddCommand(factsStatsCmd)
	factsCmd.AddCommand(factsResolveCmd)

	rootCmd.AddCommand(factsCmd)
}
