// Pages command for the boardtree CLI.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dukaforge/boardtree/pkg/codec"
	"github.com/dukaforge/boardtree/pkg/types"
)

func newPagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pages <doc>",
		Short: "List a document's pages with resolved boards and comments",
		Args:  cobra.ExactArgs(1),
		RunE:  runPages,
	}
}

// pageRow is the JSON form of one page in the pages output.
type pageRow struct {
	Index    int    `json:"index"`
	Board    string `json:"board"`
	BoardRef *int   `json:"board_ref,omitempty"`
	Comment  string `json:"comment,omitempty"`
	Colorize bool   `json:"colorize,omitempty"`
}

func runPages(cmd *cobra.Command, args []string) error {
	docID := args[0]

	store, _, err := openStore()
	if err != nil {
		return exitError(exitSysError, fmt.Sprintf("pages: %s", err))
	}
	defer store.Close()

	pages, _, err := store.LoadPages(docID)
	if err != nil {
		if errors.Is(err, types.ErrDocNotFound) {
			return exitError(exitUserError, fmt.Sprintf("document %q not found", docID))
		}
		return exitError(exitSysError, fmt.Sprintf("load document: %s", err))
	}

	// Strip the tree marker so comments read as the user wrote them.
	cleaned, _, _ := codec.ExtractTreeFromPages(pages)

	rows := make([]pageRow, len(cleaned))
	for i, p := range cleaned {
		rows[i] = pageRow{
			Index:    i,
			Board:    types.ResolveField(cleaned, i),
			BoardRef: p.Field.Ref,
			Comment:  types.ResolveComment(cleaned, i),
			Colorize: p.Flags.Colorize,
		}
	}

	if flags.jsonMode {
		out, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return exitError(exitSysError, fmt.Sprintf("marshal JSON: %s", err))
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}

	w := cmd.OutOrStdout()
	for _, r := range rows {
		board := r.Board
		if r.BoardRef != nil {
			board = fmt.Sprintf("%s (ref %d)", board, *r.BoardRef)
		}
		fmt.Fprintf(w, "%3d  %-30s  %s\n", r.Index, board, r.Comment)
	}
	return nil
}
