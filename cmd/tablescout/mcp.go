package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tablescout/tablescout/internal/cli"
	"github.com/tablescout/tablescout/pkg/adapters/mcp"
	"github.com/tablescout/tablescout/pkg/domain"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol server",
	Long: `Starts the concierge as an MCP server, so AI agents can drive it through
the submit_utterance, submit_decision, inspect_session, and view_list tools.
The approval gate is unchanged: a decision tool call is still required
before anything is written.

Supported transports:
- stdio (default): standard input/output, for local process integration.
- sse: Server-Sent Events over HTTP, for remote agents.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		opts := globalOptions(cmd)
		logger, err := opts.Logger()
		if err != nil {
			return err
		}
		cfg, err := opts.LoadConfig()
		if err != nil {
			return err
		}

		hooks := domain.LifecycleHooks{}
		if opts.Debug() {
			hooks = cli.DebugHooks(logger)
		}

		concierge, cleanup, err := cli.BuildConcierge(cmd.Context(), cfg, logger, hooks)
		if err != nil {
			return err
		}
		defer cleanup()

		srv := mcp.NewServer(concierge, mcp.WithLogger(logger))

		switch transport {
		case "stdio":
			// Logs already go to stderr; stdout belongs to JSON-RPC.
			return srv.ServeStdio()
		case "sse":
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := srv.ServeSSE(ctx, port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		default:
			return fmt.Errorf("unknown transport %q (want stdio or sse)", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "transport: stdio or sse")
	mcpCmd.Flags().Int("port", 8080, "listen port (sse only)")
}
