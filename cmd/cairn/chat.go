package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cairnlabs/cairn/internal/cli"
)

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive coaching conversation",
	Long: `Starts a coaching conversation on stdin/stdout. Sessions persist
between runs; pass --session to resume one, or let Cairn mint an ID.`,
	Run: func(cmd *cobra.Command, args []string) {
		opts := optsFromFlags(cmd)
		opts.SessionID, _ = cmd.Flags().GetString("session")
		opts.Fresh, _ = cmd.Flags().GetBool("fresh")
		opts.Watch, _ = cmd.Flags().GetBool("watch")
		opts.JSON, _ = cmd.Flags().GetBool("json")

		if err := cli.Execute(opts); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringP("session", "s", "", "Session ID to resume or create")
	chatCmd.Flags().Bool("fresh", false, "Reset the session before starting")
	chatCmd.Flags().BoolP("watch", "w", false, "Reload the rules file on change (requires --rules)")
	chatCmd.Flags().Bool("json", false, "JSON-Lines mode (NDJSON input/output)")

	// Bare 'cairn' starts a chat.
	rootCmd.Run = chatCmd.Run
}
