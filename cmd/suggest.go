package cmd

import (
	"fmt"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/iosdiag/internal/diagnosis"
	"github.com/abhisek/iosdiag/internal/ui/components"
	"github.com/abhisek/iosdiag/internal/ui/theme"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest <word>",
	Short: "Suggest the IOS keyword closest to a word",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, _ := cmd.Flags().GetString("mode")
		threshold, _ := cmd.Flags().GetFloat64("threshold")

		out := cmd.OutOrStdout()
		s, ok := vocabulary.FindSimilar(args[0], mode, threshold)
		if !ok {
			fmt.Fprintf(out, "No keyword within %.0f%% of %q.\n", threshold*100, args[0])
			return nil
		}

		lipgloss.Fprintln(out, theme.Suggestion.Render(s.Command))
		lipgloss.Fprintln(out, components.NewSimilarityMeter(args[0], s.Command, s.Similarity, threshold, meterWidth).View())
		return nil
	},
}

func init() {
	suggestCmd.Flags().StringP("mode", "m", "", "CLI mode whose keywords to search, e.g. line_config (default: all)")
	suggestCmd.Flags().Float64("threshold", diagnosis.DefaultSimilarityThreshold, "Minimum similarity between 0 and 1")
}
