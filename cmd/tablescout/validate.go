package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tablescout/tablescout/pkg/adapters/prompts"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration and prompt documents",
	Long: `Loads the effective configuration (defaults, config file, environment,
flags) and validates it, then checks that the prompt repository holds the
three required documents with well-formed response schemas. Reports every
problem it finds, not just the first.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := globalOptions(cmd).LoadConfig()
		if err != nil {
			return err
		}

		repo, err := prompts.Open(cfg.PromptsDir)
		if err != nil {
			return fmt.Errorf("open prompt repository %q (run `tablescout init` to seed one): %w", cfg.PromptsDir, err)
		}
		if err := repo.Validate(cmd.Context()); err != nil {
			return err
		}

		fmt.Println("Configuration and prompts are valid.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
