// Delete command for the boardtree CLI.
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dukaforge/boardtree/pkg/types"
)

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <doc>",
		Short: "Delete a stored document",
		Args:  cobra.ExactArgs(1),
		RunE:  runDelete,
	}
}

func runDelete(cmd *cobra.Command, args []string) error {
	docID := args[0]

	store, _, err := openStore()
	if err != nil {
		return exitError(exitSysError, fmt.Sprintf("delete: %s", err))
	}
	defer store.Close()

	if err := store.DeleteDoc(docID); err != nil {
		if errors.Is(err, types.ErrDocNotFound) {
			return exitError(exitUserError, fmt.Sprintf("document %q not found", docID))
		}
		return exitError(exitSysError, fmt.Sprintf("delete document: %s", err))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", docID)
	return nil
}
