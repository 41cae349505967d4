package main

import (
	"github.com/spf13/cobra"

	"github.com/tablescout/tablescout/internal/cli"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start the interactive concierge session",
	Long: `Starts the conversational loop on stdin/stdout. Ask for new restaurants,
review the proposal, and answer with an approval ("yes", "add 1 and 3"),
a detail request ("more about 2"), or a rejection ("no").

Sessions are durable: a run suspended on an approval survives exiting the
process and resumes when the same --session is used again.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		chat := cli.ChatOptions{}
		chat.SessionID, _ = cmd.Flags().GetString("session")
		chat.Fresh, _ = cmd.Flags().GetBool("fresh")
		chat.JSON, _ = cmd.Flags().GetBool("json")
		chat.AutoApprove, _ = cmd.Flags().GetBool("yes")
		return cli.RunChat(cmd.Context(), globalOptions(cmd), chat)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringP("session", "s", "", "session ID to resume (empty mints a fresh one)")
	chatCmd.Flags().Bool("fresh", false, "forget the named session before starting")
	chatCmd.Flags().Bool("json", false, "NDJSON input/output instead of the text UI")
	chatCmd.Flags().BoolP("yes", "y", false, "auto-approve proposals (scripted runs)")

	// No subcommand drops straight into chat.
	rootCmd.RunE = chatCmd.RunE
}
