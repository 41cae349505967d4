package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tablescout/tablescout/internal/cli"
)

var rootCmd = &cobra.Command{
	Use:   "tablescout",
	Short: "TableScout keeps a curated restaurant list fresh, one approval at a time",
	Long: `TableScout is a personal restaurant concierge. It discovers candidates
from editorial sources, scores and deduplicates them against your curated
list, and proposes additions; nothing is written without your approval.

Run it without a subcommand to start the interactive chat.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the command tree and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./"+cli.DefaultConfigFile+" when present)")
	pf.String("dir", "", "data directory override")
	pf.String("store", "", "run store kind override: file, redis, or memory")
	pf.String("redis", "", "redis address for the run store (implies --store redis)")
	pf.String("log-level", "", "log level: debug, info, warn, or error (default warn)")
}

// globalOptions collects the persistent flags into the shared CLI options.
func globalOptions(cmd *cobra.Command) cli.Options {
	configPath, _ := cmd.Flags().GetString("config")
	dataDir, _ := cmd.Flags().GetString("dir")
	store, _ := cmd.Flags().GetString("store")
	redisAddr, _ := cmd.Flags().GetString("redis")
	logLevel, _ := cmd.Flags().GetString("log-level")
	return cli.Options{
		ConfigPath: configPath,
		DataDir:    dataDir,
		Store:      store,
		RedisAddr:  redisAddr,
		LogLevel:   logLevel,
	}
}
