package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tablescout/tablescout/internal/cli"
	"github.com/tablescout/tablescout/internal/presentation/graph"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the workflow phase machine as a Mermaid diagram",
	Long: `Outputs the phase machine as Mermaid flowchart text. With --session the
phases that run has visited are highlighted, and its current phase marked.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")

		var overlay *graph.Overlay
		if sessionID != "" {
			cfg, err := globalOptions(cmd).LoadConfig()
			if err != nil {
				return err
			}
			store, closer, err := cli.OpenStore(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = closer() }()

			state, err := store.Load(cmd.Context(), sessionID)
			if err != nil {
				return fmt.Errorf("load session %q: %w", sessionID, err)
			}
			overlay = graph.OverlayForRun(state)
		}

		fmt.Print(graph.GenerateMermaid(overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringP("session", "s", "", "overlay a session's progress")
}
