package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "linkvault",
		Short: "Personal bookmark manager backend",
		Long: `linkvault stores owner-scoped links and folders behind a JSON API and
resolves page titles for newly saved links.

Configuration is read from the environment and an optional .env file.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newResolveCmd(),
		newTokenCmd(),
	)
	return root
}

// Execute runs the command tree. It is called by main.main().
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
