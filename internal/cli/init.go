// Init command for the boardtree CLI.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize boardtree storage",
		Long:  "Create configuration and data directories, then initialize the storage backend.",
		Args:  cobra.NoArgs,
		RunE:  runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	// Config dir and config.yaml were already created by the root
	// PersistentPreRunE; opening the store creates the data directory
	// and the database file.
	store, cfg, err := openStore()
	if err != nil {
		return exitError(exitSysError, fmt.Sprintf("initialize storage: %s", err))
	}
	if err := store.Close(); err != nil {
		return exitError(exitSysError, fmt.Sprintf("finalize storage: %s", err))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Boardtree initialized (%s backend, %s)\n",
		cfg.Backend, cfg.DataDir)
	return nil
}
