package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "server",
		Short:        "AI-assisted request collaboration backend",
		Long:         "server hosts the real-time request workspaces together with the notification and recommendation engines.",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newServeCmd(),
		newRemindCmd(),
		newTokenCmd(),
	)

	return rootCmd
}
