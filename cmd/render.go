package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/iosdiag/internal/diagnosis"
	"github.com/abhisek/iosdiag/internal/ui/components"
	"github.com/abhisek/iosdiag/internal/ui/theme"
)

const meterWidth = 40

// readOutput returns the device output from --output-file, or stdin when
// the flag is empty or "-".
func readOutput(cmd *cobra.Command) (string, error) {
	path, _ := cmd.Flags().GetString("output-file")
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read device output: %w", err)
	}
	return strings.ReplaceAll(string(data), "\r\n", "\n"), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderResult writes a human-readable diagnosis card.
func renderResult(w io.Writer, res *diagnosis.DetectionResult) {
	if res == nil {
		lipgloss.Fprintln(w, theme.Clean.Render("✓ No known error detected"))
		return
	}

	var b strings.Builder
	b.WriteString(theme.ErrorType.Render(res.ErrorType))
	b.WriteString("  ")
	b.WriteString(theme.Hint.Render(res.PatternID()))
	b.WriteString("\n\n")
	b.WriteString(theme.Label.Render("Command"))
	b.WriteString("\n")
	b.WriteString(theme.Command.Render(res.Command))
	b.WriteString("\n\n")
	b.WriteString(theme.Label.Render("Diagnosis"))
	b.WriteString("\n")
	b.WriteString(theme.Body.Render(res.Diagnosis))
	b.WriteString("\n\n")
	b.WriteString(theme.Label.Render("Fix"))
	b.WriteString("\n")
	b.WriteString(theme.Body.Render(res.Fix))

	if score, ok := res.Metadata[diagnosis.MetaSimilarityScore].(float64); ok {
		typo, _ := res.Metadata[diagnosis.MetaTypoWord].(string)
		suggested, _ := res.Metadata[diagnosis.MetaSuggestedWord].(string)
		threshold, _ := res.Metadata[diagnosis.MetaSimilarityMin].(float64)
		b.WriteString("\n\n")
		b.WriteString(components.NewSimilarityMeter(typo, suggested, score, threshold, meterWidth).View())
	}

	lipgloss.Fprintln(w, theme.Card.Render(b.String()))
}
