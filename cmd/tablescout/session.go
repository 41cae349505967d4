package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tablescout/tablescout/internal/cli"
	"github.com/tablescout/tablescout/pkg/ports"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage persisted sessions",
	Long: `List, inspect, and remove run state from the configured store. Works
directly against the store, so no API keys are needed.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List known sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(store ports.RunStore) error {
			sessions, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				fmt.Println("No sessions found.")
				return nil
			}
			for _, id := range sessions {
				fmt.Println(id)
			}
			return nil
		})
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Print a session's run state as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(store ports.RunStore) error {
			state, err := store.Load(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("load session %q: %w", args[0], err)
			}
			data, err := json.MarshalIndent(state, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		})
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <session-id>...",
	Short: "Remove one or more sessions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(store ports.RunStore) error {
			var failed error
			for _, id := range args {
				if err := store.Delete(cmd.Context(), id); err != nil {
					fmt.Printf("Error removing %q: %v\n", id, err)
					failed = errors.New("not all sessions were removed")
					continue
				}
				fmt.Printf("Removed session %q\n", id)
			}
			return failed
		})
	},
}

// withStore opens the configured run store for one admin operation and
// closes it afterwards.
func withStore(cmd *cobra.Command, fn func(ports.RunStore) error) error {
	cfg, err := globalOptions(cmd).LoadConfig()
	if err != nil {
		return err
	}
	store, closer, err := cli.OpenStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closer() }()
	return fn(store)
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionInspectCmd)
	sessionCmd.AddCommand(sessionRmCmd)
}
