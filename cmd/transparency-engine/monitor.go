// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/transparency-engine/internal/facts"
	"github.com/pdiddy/transparency-engine/internal/quality"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Watch data quality and raise threshold alerts",
	Long: `Monitor periodically recomputes the data-quality picture from the
known-facts store and raises alerts when thresholds are crossed. The cron
schedule comes from the quality config (seconds field included).

Use --once for a single tick instead of a long-running process.`,
	RunE: runMonitor,
}

func runMonitor(cmd *cobra.Command, args []string) error {
	log := newLogger(cmd)

	store, err := facts.NewStore(factsConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	cfg := qualityConfig()
	agg := quality.NewAggregator(cfg)
	mon := quality.NewMonitor(agg, store, cfg, log)

	if once, _ := cmd.Flags().GetBool("once"); once {
		mon.Tick(context.Background())
		return printMonitorState(cmd, mon)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := mon.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	mon.Stop()
	return printMonitorState(cmd, mon)
}

func printMonitorState(cmd *cobra.Command, mon *quality.Monitor) error {
	status := mon.Status()
	alerts := mon.Alerts()

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"status": status, "alerts": alerts})
	}

	fmt.Printf("Verifizierte Fakten:       %d\n", status.VerifiedFacts)
	fmt.Printf("Offene verdächtige Fälle:  %d\n", status.OpenSuspicious)
	fmt.Printf("Mittlere Konfidenz:        %.2f\n", status.AverageConfidence)
	fmt.Printf("Offene Alerts:             %d\n", status.OpenAlerts)

	for _, a := range alerts {
		fmt.Printf("  [%s] %s: %s\n", a.Severity, a.Type, a.Message)
	}
	return nil
}

func init() {
	monitorCmd.Flags().Bool("once", false, "run a single tick and exit")
	monitorCmd.Flags().Bool("json", false, "output status and alerts as JSON")

	rootCmd.AddCommand(monitorCmd)
}
