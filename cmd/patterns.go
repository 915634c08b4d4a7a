package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/iosdiag/internal/diagnosis"
)

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "Inspect and validate error patterns",
}

var patternsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List loaded patterns in evaluation order",
	RunE: func(cmd *cobra.Command, args []string) error {
		errorType, _ := cmd.Flags().GetString("type")
		minPriority, _ := cmd.Flags().GetInt("min-priority")

		d := diagnosis.DefaultDetector()
		patterns := d.Patterns()
		if cmd.Flags().Changed("min-priority") {
			patterns = d.PatternsByPriority(minPriority)
		}
		if errorType != "" {
			patterns = filterByType(patterns, errorType)
		}

		out := cmd.OutOrStdout()
		if len(patterns) == 0 {
			fmt.Fprintln(out, "No patterns found.")
			return nil
		}

		fmt.Fprintf(out, "%-4s  %-24s  %-22s  %-6s  %s\n", "Pri", "ID", "Type", "Fuzzy", "Modes")
		fmt.Fprintln(out, strings.Repeat("─", 80))
		for _, p := range patterns {
			fuzzy := ""
			if fp, ok := p.(*diagnosis.FuzzyPattern); ok && fp.FuzzyEnabled() {
				fuzzy = "✓"
			}
			modes := strings.Join(p.AffectedModes(), ",")
			if modes == "" {
				modes = "any"
			}
			fmt.Fprintf(out, "%-4d  %-24s  %-22s  %-6s  %s\n", p.Priority(), p.ID(), p.ErrorType(), fuzzy, modes)
		}
		return nil
	},
}

func filterByType(patterns []diagnosis.Pattern, errorType string) []diagnosis.Pattern {
	var out []diagnosis.Pattern
	for _, p := range patterns {
		if p.ErrorType() == errorType {
			out = append(out, p)
		}
	}
	return out
}

var patternsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show pattern counts by error type and priority",
	RunE: func(cmd *cobra.Command, args []string) error {
		stats := diagnosis.DefaultDetector().Stats()
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(stats)
	},
}

var patternsValidateCmd = &cobra.Command{
	Use:   "validate <file.json>",
	Short: "Check a pattern file without loading it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read pattern file: %w", err)
		}

		out := cmd.OutOrStdout()
		ok, problems := diagnosis.ValidateFile(data)
		if ok {
			fmt.Fprintf(out, "%s: valid\n", args[0])
			return nil
		}
		for _, p := range problems {
			fmt.Fprintf(out, "  - %s\n", p)
		}
		return fmt.Errorf("%s: %d problem(s) found", args[0], len(problems))
	},
}

func init() {
	patternsListCmd.Flags().String("type", "", "Only show patterns for this error type (e.g. WRONG_MODE)")
	patternsListCmd.Flags().Int("min-priority", 0, "Only show patterns with at least this priority")

	patternsCmd.AddCommand(patternsListCmd)
	patternsCmd.AddCommand(patternsStatsCmd)
	patternsCmd.AddCommand(patternsValidateCmd)
}
