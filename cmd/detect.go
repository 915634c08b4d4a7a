package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/iosdiag/internal/diagnosis"
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Diagnose one command and the device output it produced",
	Example: `  iosdiag detect --command "hostnane S1" --output-file session.txt
  printf 'Switch#hostnane S1\n       ^\n%% Invalid input detected at '"'"'^'"'"' marker.\n' | iosdiag detect -c "hostnane S1"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		command, _ := cmd.Flags().GetString("command")
		mode, _ := cmd.Flags().GetString("mode")
		device, _ := cmd.Flags().GetString("device")
		asJSON, _ := cmd.Flags().GetBool("json")

		output, err := readOutput(cmd)
		if err != nil {
			return err
		}

		res := diagnosis.DefaultDetector().Detect(command, output, &diagnosis.Context{
			CurrentMode: mode,
			DeviceID:    device,
		})

		if asJSON {
			return printJSON(cmd.OutOrStdout(), diagnosis.ResultToMap(res))
		}
		renderResult(cmd.OutOrStdout(), res)
		return nil
	},
}

func init() {
	detectCmd.Flags().StringP("command", "c", "", "The command that was entered (required)")
	detectCmd.Flags().StringP("output-file", "o", "", "File holding the device output (default: stdin)")
	detectCmd.Flags().StringP("mode", "m", "", "Current CLI mode, e.g. interface_config")
	detectCmd.Flags().String("device", "", "Device identifier recorded with the request")
	detectCmd.Flags().Bool("json", false, "Print the result as JSON (null when nothing matched)")
	_ = detectCmd.MarkFlagRequired("command")
}
