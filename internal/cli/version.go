// Version command for the boardtree CLI.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the boardtree release version.
const Version = "0.1.0"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the boardtree version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "boardtree", Version)
		},
	}
}
