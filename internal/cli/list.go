// List command for the boardtree CLI.
package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored documents",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}
}

func runList(cmd *cobra.Command, args []string) error {
	store, _, err := openStore()
	if err != nil {
		return exitError(exitSysError, fmt.Sprintf("list: %s", err))
	}
	defer store.Close()

	ids, err := store.ListDocs()
	if err != nil {
		return exitError(exitSysError, fmt.Sprintf("list documents: %s", err))
	}

	if flags.jsonMode {
		out, err := json.MarshalIndent(ids, "", "  ")
		if err != nil {
			return exitError(exitSysError, fmt.Sprintf("marshal JSON: %s", err))
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}
	for _, id := range ids {
		fmt.Fprintln(cmd.OutOrStdout(), id)
	}
	return nil
}
