// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/transparency-engine/internal/interpret"
)

var interpretCmd = &cobra.Command{
	Use:   "interpret [query]",
	Short: "Parse a German natural-language query into structured form",
	Long: `Interpret extracts intent, years, amounts, categories, and keywords from
a German query. The structured interpretation is what the search backends
receive.

Use --suggest to complete a partial query, --validate to check a query for
implausible values, or --json for machine-readable output.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInterpret,
}

func runInterpret(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	rs, err := loadRules(cmd)
	if err != nil {
		return err
	}
	it := interpret.New(rs)

	if suggest, _ := cmd.Flags().GetBool("suggest"); suggest {
		for _, s := range it.Suggestions(query) {
			fmt.Println(s)
		}
		return nil
	}

	if validate, _ := cmd.Flags().GetBool("validate"); validate {
		warnings := it.Validate(query)
		if len(warnings) == 0 {
			fmt.Println("Keine Auffälligkeiten.")
			return nil
		}
		for _, w := range warnings {
			fmt.Println("- " + w)
		}
		return nil
	}

	interp := it.Interpret(query)

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(interp)
	}

	fmt.Println(interpret.Explain(interp))
	return nil
}

func init() {
	interpretCmd.Flags().Bool("json", false, "output the interpretation as JSON")
	interpretCmd.Flags().Bool("suggest", false, "suggest completions for a partial query")
	interpretCmd.Flags().Bool("validate", false, "warn about implausible values in the query")

	rootCmd.AddCommand(interpretCmd)
}
