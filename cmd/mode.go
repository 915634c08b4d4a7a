package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/iosdiag/internal/marker"
)

var modeCmd = &cobra.Command{
	Use:   "mode",
	Short: "Infer the CLI mode from device output",
	RunE: func(cmd *cobra.Command, args []string) error {
		output, err := readOutput(cmd)
		if err != nil {
			return err
		}

		mode := marker.DetectMode(output)
		if mode == marker.ModeUnknown {
			fmt.Fprintln(cmd.OutOrStdout(), "unknown")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), mode)

		if w, ok := marker.ExtractWordAtMarker("", output); ok {
			fmt.Fprintf(cmd.OutOrStdout(), "marker: word %d %q\n", w.Index, w.Text)
		}
		return nil
	},
}

func init() {
	modeCmd.Flags().StringP("output-file", "o", "", "File holding the device output (default: stdin)")
}
