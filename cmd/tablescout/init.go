package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tablescout/tablescout/internal/cli"
	"github.com/tablescout/tablescout/internal/config"
	"github.com/tablescout/tablescout/pkg/adapters/prompts"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Scaffold a starter configuration and the prompt documents",
	Long: `Writes a commented ` + cli.DefaultConfigFile + ` into the working directory and
seeds the prompt repository with the default extraction, ranking, and
editing documents. Files that already exist are left alone, so edited
prompts survive re-running init.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		if path == "" {
			path = cli.DefaultConfigFile
		}

		if _, err := os.Stat(path); err == nil {
			fmt.Printf("%s already exists, keeping it\n", path)
		} else if errors.Is(err, os.ErrNotExist) {
			if err := os.WriteFile(path, config.Scaffold(), 0644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			fmt.Printf("Wrote %s\n", path)
		} else {
			return err
		}

		cfg, err := globalOptions(cmd).LoadConfig()
		if err != nil {
			return err
		}
		if err := prompts.Seed(cfg.PromptsDir); err != nil {
			return err
		}
		fmt.Printf("Seeded prompt documents under %s/\n", cfg.PromptsDir)

		fmt.Println("\nNext steps:")
		fmt.Println("  export TAVILY_API_KEY=...   # web-search sources")
		fmt.Println("  export OPENAI_API_KEY=...   # extraction and ranking")
		fmt.Println("  tablescout chat")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
