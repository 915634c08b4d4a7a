package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the resolved configuration",
	Long: "Print the configuration after defaults, the config file, IOSDIAG_* " +
		"environment variables and flags have been applied.",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		if err := enc.Close(); err != nil {
			return err
		}
		if cfg.Patterns.Dir == "" {
			fmt.Fprintln(out, "# patterns: built-in")
		}
		if cfg.Vocabulary.Path == "" {
			fmt.Fprintln(out, "# vocabulary: built-in")
		}
		return nil
	},
}
