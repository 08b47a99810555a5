package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "lyrnios-backend",
		Short: "Diagram chat backend",
		Long: `HTTP backend that signs users in with Google, stores their chat sessions
and turns model answers into renderable mermaid diagrams.

Running without a subcommand starts the HTTP server.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newNormalizeCmd(),
	)
	return root
}
