// Show command for the boardtree CLI.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dukaforge/boardtree/pkg/session"
	"github.com/dukaforge/boardtree/pkg/types"
)

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <doc>",
		Short: "Display a document summary",
		Args:  cobra.ExactArgs(1),
		RunE:  runShow,
	}
}

// docSummary is the JSON form of the show output.
type docSummary struct {
	DocID     string `json:"doc_id"`
	PageCount int    `json:"page_count"`
	NodeCount int    `json:"node_count"`
	Current   int    `json:"current"`
	RootID    string `json:"root_id"`
	PageOrder []int  `json:"page_order"`
}

func runShow(cmd *cobra.Command, args []string) error {
	docID := args[0]

	store, _, err := openStore()
	if err != nil {
		return exitError(exitSysError, fmt.Sprintf("show: %s", err))
	}
	defer store.Close()

	pages, current, err := store.LoadPages(docID)
	if err != nil {
		if errors.Is(err, types.ErrDocNotFound) {
			return exitError(exitUserError, fmt.Sprintf("document %q not found", docID))
		}
		return exitError(exitSysError, fmt.Sprintf("load document: %s", err))
	}

	s := session.New(pages)
	t := s.Tree()
	summary := docSummary{
		DocID:     docID,
		PageCount: len(s.Pages()),
		NodeCount: t.Len(),
		Current:   current,
		RootID:    t.RootID(),
		PageOrder: t.RealPageOrder(),
	}

	if flags.jsonMode {
		out, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return exitError(exitSysError, fmt.Sprintf("marshal JSON: %s", err))
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Document: %s\n", summary.DocID)
	fmt.Fprintf(w, "Pages:    %d\n", summary.PageCount)
	fmt.Fprintf(w, "Nodes:    %d\n", summary.NodeCount)
	fmt.Fprintf(w, "Current:  %d\n", summary.Current)
	fmt.Fprintf(w, "Order:    %v\n", summary.PageOrder)
	return nil
}
