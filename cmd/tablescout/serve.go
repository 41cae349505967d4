package main

import (
	"github.com/spf13/cobra"

	"github.com/tablescout/tablescout/internal/cli"
	"github.com/tablescout/tablescout/internal/metrics"
	httpadapter "github.com/tablescout/tablescout/pkg/adapters/http"
	"github.com/tablescout/tablescout/pkg/domain"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Exposes the concierge as a JSON API: utterances and decisions, session
inspection, the curated list, per-session SSE event streams, Prometheus
metrics on /metrics, and the OpenAPI document on /openapi.yaml.

The server shuts down gracefully on SIGINT/SIGTERM, draining in-flight
requests. Suspended runs stay in the run store and survive restarts.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")

		opts := globalOptions(cmd)
		logger, err := opts.Logger()
		if err != nil {
			return err
		}
		cfg, err := opts.LoadConfig()
		if err != nil {
			return err
		}

		// The SSE hooks need the server, the server needs the concierge,
		// and the concierge takes its hooks at construction; the relay
		// breaks the cycle.
		relay := &cli.HookRelay{}
		m := metrics.New(nil)
		hooks := domain.JoinHooks(m.Hooks(), relay.Hooks())
		if opts.Debug() {
			hooks = domain.JoinHooks(hooks, cli.DebugHooks(logger))
		}

		concierge, cleanup, err := cli.BuildConcierge(cmd.Context(), cfg, logger, hooks)
		if err != nil {
			return err
		}
		defer cleanup()

		srv, err := httpadapter.NewServer(concierge,
			httpadapter.WithMetricsHandler(m.Handler()),
			httpadapter.WithLogger(logger),
		)
		if err != nil {
			return err
		}
		relay.Bind(srv.Hooks())

		return srv.ListenAndServe(cmd.Context(), addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "listen address")
}
