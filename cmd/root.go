package cmd

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/iosdiag/internal/config"
	"github.com/abhisek/iosdiag/internal/diagnosis"
	"github.com/abhisek/iosdiag/internal/logging"
	"github.com/abhisek/iosdiag/internal/vocab"
)

var (
	cfg        *config.Config
	logger     = logging.Nop()
	vocabulary *vocab.Vocabulary
)

var rootCmd = &cobra.Command{
	Use:   "iosdiag",
	Short: "Diagnose Cisco IOS CLI errors",
	Long: "iosdiag inspects a CLI command and the device's response, recognises known " +
		"error classes and explains how to fix them, including likely keyword typos.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file (IOSDIAG_* env vars override it)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: console or json")

	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(patternsCmd)
	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(modeCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup resolves configuration once per invocation and points the default
// detector at the configured pattern sources.
func setup(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")
	c, err := config.Load(path)
	if err != nil {
		return err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		c.Log.Level = lvl
	}
	if f, _ := cmd.Flags().GetString("log-format"); f != "" {
		c.Log.Format = f
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}

	l, err := logging.New(c.Log)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	cfg = c
	logger = l.With(zap.String("run_id", uuid.NewString()))

	vocabulary = vocab.Default()
	if c.Vocabulary.Path != "" {
		vocabulary = vocab.LoadOrFallback(c.Vocabulary.Path, logger)
	}

	opts := diagnosis.Options{
		Logger:        logger,
		GeneratedPath: c.Patterns.Generated,
		HardcodedPath: c.Patterns.Hardcoded,
		Suggester:     vocabulary,
	}
	if c.Patterns.Dir != "" {
		opts.FS = os.DirFS(c.Patterns.Dir)
	}
	diagnosis.SetDefaultOptions(opts)
	return nil
}
