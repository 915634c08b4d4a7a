package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/iosdiag/internal/diagnosis"
)

// batchFile is the YAML input of the batch command.
type batchFile struct {
	diagnosis.Context `yaml:",inline"`
	Items             []diagnosis.BatchItem `yaml:"items"`
}

var batchCmd = &cobra.Command{
	Use:   "batch <file.yaml>",
	Short: "Diagnose every command/output pair in a YAML file",
	Long: `Diagnose every command/output pair in a YAML file of the form:

  current_mode: interface_config   # optional
  items:
    - command: ip address 10.0.0.1
      output: |
        S1(config-if)#ip address 10.0.0.1
        % Incomplete command.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parallel, _ := cmd.Flags().GetInt("parallel")
		asJSON, _ := cmd.Flags().GetBool("json")

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read batch file: %w", err)
		}
		var bf batchFile
		if err := yaml.Unmarshal(data, &bf); err != nil {
			return fmt.Errorf("parse batch file: %w", err)
		}

		d := diagnosis.DefaultDetector()
		var results []*diagnosis.DetectionResult
		if parallel > 1 {
			results, err = d.DetectBatchParallel(cmd.Context(), bf.Items, &bf.Context, parallel)
			if err != nil {
				return err
			}
		} else {
			results = d.DetectBatch(bf.Items, &bf.Context)
		}

		out := cmd.OutOrStdout()
		if asJSON {
			maps := make([]map[string]any, len(results))
			for i, r := range results {
				maps[i] = diagnosis.ResultToMap(r)
			}
			return printJSON(out, maps)
		}

		matched := 0
		for i, r := range results {
			fmt.Fprintf(out, "#%d  %s\n", i, bf.Items[i].Command)
			renderResult(out, r)
			if r != nil {
				matched++
			}
		}
		fmt.Fprintf(out, "\n%d of %d commands matched a known error\n", matched, len(results))
		return nil
	},
}

func init() {
	batchCmd.Flags().IntP("parallel", "p", 0, "Number of detections to run concurrently (0 or 1: sequential)")
	batchCmd.Flags().Bool("json", false, "Print results as a JSON array")
}
