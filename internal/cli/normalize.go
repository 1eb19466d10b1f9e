// Normalize command for the boardtree CLI.
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dukaforge/boardtree/pkg/codec"
	"github.com/dukaforge/boardtree/pkg/session"
	"github.com/dukaforge/boardtree/pkg/types"
)

func newNormalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize <doc>",
		Short: "Rewrite a document's page order to match its tree",
		Long:  "Reorders the flat page list to the tree's preorder, rewriting page references, and saves the result.",
		Args:  cobra.ExactArgs(1),
		RunE:  runNormalize,
	}
}

func runNormalize(cmd *cobra.Command, args []string) error {
	docID := args[0]

	store, cfg, err := openStore()
	if err != nil {
		return exitError(exitSysError, fmt.Sprintf("normalize: %s", err))
	}
	defer store.Close()

	pages, current, err := store.LoadPages(docID)
	if err != nil {
		if errors.Is(err, types.ErrDocNotFound) {
			return exitError(exitUserError, fmt.Sprintf("document %q not found", docID))
		}
		return exitError(exitSysError, fmt.Sprintf("load document: %s", err))
	}

	cleaned, _, _ := codec.ExtractTreeFromPages(types.ClonePages(pages))

	s := session.New(pages, session.WithTreeEmbedding(cfg.EmbedTree))
	if n := len(s.Pages()); n > 0 {
		if err := s.SelectPage(clampIndex(current, n)); err != nil {
			return exitError(exitSysError, fmt.Sprintf("restore cursor: %s", err))
		}
	}
	if err := s.Save(store, docID); err != nil {
		return exitError(exitSysError, fmt.Sprintf("save document: %s", err))
	}

	if types.PagesEqual(cleaned, s.Pages()) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: already normalized (%d pages)\n", docID, len(s.Pages()))
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: normalized (%d pages)\n", docID, len(s.Pages()))
	}
	return nil
}

// clampIndex bounds a page index to the valid range.
func clampIndex(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
