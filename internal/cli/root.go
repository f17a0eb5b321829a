package cli

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "depscan",
		Short: "Inventory third-party package dependencies across repositories",
		Long: `Depscan walks a set of source-control repositories and builds a single
deduplicated inventory of their declared package dependencies.

Declarations are reconciled from three sources, in precedence order:
  - the central version-management manifest (versions win when active)
  - SDK-style project manifests
  - legacy per-project lock files (only packages the manifest omits)

Per-repository override documents can drop packages from the inventory, and
the result can be enriched with live registry metadata.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Setup logging
			verbose, _ := cmd.Flags().GetBool("verbose")
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			} else {
				logrus.SetLevel(logrus.InfoLevel)
			}
		},
	}

	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	rootCmd.AddCommand(NewScanCmd())

	return rootCmd
}
