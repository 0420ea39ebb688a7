// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the transparency-engine CLI.
// Implements: prd001-interpretation, prd002-rules, prd003-verification,
//             prd004-quality, prd005-facts, prd006-pipeline (CLI surface).
// See docs/ARCHITECTURE.md § Pipeline Interface, § Project Structure.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/transparency-engine/internal/rules"
	"github.com/pdiddy/transparency-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the transparency-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "transparency-engine",
	Short: "Result verification for the municipal transparency portal",
	Long: `transparency-engine interprets German natural-language queries against
municipal ledgers and verifies candidate results for factual plausibility.

Each pipeline stage is a subcommand: interpret parses a query, verify runs
candidate results through the fact checker, quality reports on batch scores,
facts manages the known-facts store, and monitor watches data quality over
time.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./transparency-engine.yaml or ~/.config/transparency-engine/config.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "data", "directory holding the known-facts database")
	rootCmd.PersistentFlags().String("rules", "", "YAML file overriding the built-in plausibility rules")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("transparency-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "transparency-engine"))
		}
	}

	viper.SetEnvPrefix("TRANSPARENCY_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds the CLI logger. Log lines go to stderr so JSON output on
// stdout stays parseable.
func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadRules builds the active rule set: compiled-in defaults, optionally
// overlaid with a YAML file from --rules or the config file.
func loadRules(cmd *cobra.Command) (*rules.Set, error) {
	path, _ := cmd.Flags().GetString("rules")
	if path == "" {
		path = viper.GetString("rules_file")
	}

	var rs *rules.Set
	var err error
	if path != "" {
		rs, err = rules.Load(path, time.Now())
		if err != nil {
			return nil, err
		}
	} else {
		rs = rules.Default(time.Now())
	}

	if err := rs.Compile(); err != nil {
		return nil, err
	}
	return rs, nil
}

// verifierConfig merges config-file overrides onto the default thresholds.
func verifierConfig() types.VerifierConfig {
	cfg := types.DefaultVerifierConfig()
	if v := viper.Sub("verifier"); v != nil {
		_ = v.Unmarshal(&cfg)
	}
	return cfg
}

// qualityConfig merges config-file overrides onto the default monitor settings.
func qualityConfig() types.QualityConfig {
	cfg := types.DefaultQualityConfig()
	if v := viper.Sub("quality"); v != nil {
		_ = v.Unmarshal(&cfg)
	}
	return cfg
}

func factsConfig(cmd *cobra.Command) types.FactsStoreConfig {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	if viper.IsSet("facts.data_dir") {
		dataDir = viper.GetString("facts.data_dir")
	}
	return types.FactsStoreConfig{DataDir: dataDir}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
