// Package codec makes the page tree travel through storage and transports
// that only understand flat page lists. The tree is serialized into a
// hidden marker inside the first page's comment text; presence of the
// marker is how a flat page list signals "has an attached tree" to any
// consumer. The package also encodes history/boundary snapshots as single
// self-contained msgpack payloads.
// See docs/ARCHITECTURE.md § Persistence Codec.
package codec

import (
	"encoding/json"
	"strings"

	"github.com/dukaforge/boardtree/pkg/tree"
	"github.com/dukaforge/boardtree/pkg/types"
)

// TreeMarker is the sentinel prefix that introduces an embedded tree
// payload inside the first page's comment text.
const TreeMarker = "#TREE="

// EmbedTreeInPages returns a page list with the tree serialized into the
// first page's comment when enabled. Any previously embedded payload is
// replaced. The input list is not modified. With embedding disabled, an
// empty page list, or an empty tree, a previously embedded payload is the
// only thing removed.
func EmbedTreeInPages(pages []types.Page, t tree.Tree, enabled bool) []types.Page {
	if len(pages) == 0 {
		return pages
	}
	out := types.ClonePages(pages)
	text, _ := splitMarker(commentText(pages, 0))
	if !enabled || t.Len() == 0 {
		if !hasMarker(pages) {
			return pages
		}
		out[0].Comment = types.Comment{Text: text}
		return out
	}
	payload, err := json.Marshal(t.Data())
	if err != nil {
		// tree.TreeData marshals without error; keep the pages untreed
		// rather than corrupting the comment.
		return out
	}
	out[0].Comment = types.Comment{Text: text + TreeMarker + string(payload)}
	return out
}

// ExtractTreeFromPages detects and strips an embedded tree marker,
// returning the cleaned pages and the decoded tree. ok is false when no
// usable tree is attached; the input pages are then returned untouched,
// including any marker carrying a payload from a newer format version,
// which is conservatively ignored rather than rewritten.
func ExtractTreeFromPages(pages []types.Page) ([]types.Page, tree.Tree, bool) {
	if len(pages) == 0 {
		return pages, tree.Tree{}, false
	}
	text, payload := splitMarker(commentText(pages, 0))
	if payload == "" {
		return pages, tree.Tree{}, false
	}
	var data tree.TreeData
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		return pages, tree.Tree{}, false
	}
	if data.Version > tree.DataVersion {
		return pages, tree.Tree{}, false
	}
	out := types.ClonePages(pages)
	out[0].Comment = types.Comment{Text: text}
	return out, tree.FromData(data), true
}

// hasMarker reports whether the first page carries an embedded tree.
func hasMarker(pages []types.Page) bool {
	if len(pages) == 0 {
		return false
	}
	_, payload := splitMarker(commentText(pages, 0))
	return payload != ""
}

// commentText returns the concrete comment text of pages[idx]. A reference
// on the first page cannot resolve backward and reads as empty.
func commentText(pages []types.Page, idx int) string {
	if pages[idx].Comment.IsRef() {
		return types.ResolveComment(pages, idx)
	}
	return pages[idx].Comment.Text
}

// splitMarker splits comment text into the user-visible part and the
// embedded payload, if any.
func splitMarker(text string) (clean, payload string) {
	idx := strings.Index(text, TreeMarker)
	if idx < 0 {
		return text, ""
	}
	return text[:idx], text[idx+len(TreeMarker):]
}
