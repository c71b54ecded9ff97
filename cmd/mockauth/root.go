package main

import "github.com/spf13/cobra"

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "mockauth",
		Short:         "Mock auth service for plugin tests",
		Long:          "mockauth mints and inspects mock user and service tokens, and serves a local harness that authenticates them like a real backend auth service would.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(
		newServeCmd(),
		newTokenCmd(),
		newInspectCmd(),
	)

	return rootCmd
}
