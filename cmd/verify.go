package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/iosdiag/internal/diagnosis"
)

// casesFile is the YAML input of the verify command.
type casesFile struct {
	Cases []diagnosis.VerifyCase `yaml:"cases"`
}

var verifyCmd = &cobra.Command{
	Use:   "verify <cases.yaml>",
	Short: "Check patterns against expected outcomes",
	Long: `Check patterns against expected outcomes listed in a YAML file:

  cases:
    - name: hostname typo
      command: hostnane S1
      output: |
        Switch(config)#hostnane S1
                       ^
        % Invalid input detected at '^' marker.
      expected_type: INVALID_INPUT
    - command: show version
      output: Cisco IOS Software
      should_match: false

With --pattern only that pattern is run, ignoring priority and mode.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		patternID, _ := cmd.Flags().GetString("pattern")

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read cases file: %w", err)
		}
		var cf casesFile
		if err := yaml.Unmarshal(data, &cf); err != nil {
			return fmt.Errorf("parse cases file: %w", err)
		}

		v := diagnosis.NewVerifier(diagnosis.DefaultDetector())
		var rep diagnosis.VerifyReport
		if patternID != "" {
			rep = v.VerifyPattern(patternID, cf.Cases)
		} else {
			rep = v.VerifyDetector(cf.Cases)
		}

		out := cmd.OutOrStdout()
		total := rep.Passed + rep.Failed
		fmt.Fprintf(out, "Passed: %d/%d\n", rep.Passed, total)
		fmt.Fprintf(out, "Failed: %d/%d\n", rep.Failed, total)
		for _, f := range rep.Failures {
			fmt.Fprintf(out, "\n%s\n", f)
		}
		if !rep.OK() {
			return fmt.Errorf("%d case(s) failed", rep.Failed)
		}
		return nil
	},
}

func init() {
	verifyCmd.Flags().String("pattern", "", "Only run the pattern with this id")
}
