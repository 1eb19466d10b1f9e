// Package linearize reconciles the flat page order with the tree's
// pre-order traversal after structural edits, rewriting inter-page
// references so that they always point backward.
// See docs/ARCHITECTURE.md § Linearizer.
package linearize

import (
	"github.com/samber/lo"

	"github.com/dukaforge/boardtree/pkg/tree"
	"github.com/dukaforge/boardtree/pkg/types"
)

// Normalize recomputes the flat page order to equal the tree's pre-order
// traversal. Pages not reachable from the tree are never dropped; they are
// appended after the traversal in their original relative order. When the
// resulting order is already the identity, the inputs are returned
// unchanged with changed=false.
//
// On reorder, every page's field/comment reference is rewritten through the
// old-to-new index map. A reference that would point forward in the new
// order is resolved by walking the chain in the old pages and materializing
// a copy of the concrete value. The first page's colorize flag stays with
// position 0, and the tree's page indices are rewritten via the same map.
func Normalize(t tree.Tree, pages []types.Page) (tree.Tree, []types.Page, bool) {
	order := make([]int, 0, len(pages))
	for _, idx := range t.RealPageOrder() {
		if idx >= 0 && idx < len(pages) {
			order = append(order, idx)
		}
	}
	reached := lo.SliceToMap(order, func(idx int) (int, bool) { return idx, true })
	for i := range pages {
		if !reached[i] {
			order = append(order, i)
		}
	}

	if isIdentity(order) {
		return t, pages, false
	}

	oldToNew := make(map[int]int, len(order))
	for newIdx, oldIdx := range order {
		oldToNew[oldIdx] = newIdx
	}

	out := make([]types.Page, len(order))
	for newIdx, oldIdx := range order {
		p := pages[oldIdx]
		p.Index = newIdx
		p.Field = remapField(pages, p.Field, oldToNew, newIdx)
		p.Comment = remapComment(pages, p.Comment, oldToNew, newIdx)
		out[newIdx] = p
	}
	carryColorize(pages, out, oldToNew)

	return t.UpdatePageIndices(oldToNew), out, true
}

// remapField rewrites a field reference through the index map. References
// that would no longer point backward are replaced by a materialized copy
// of the concrete value they resolved to.
func remapField(old []types.Page, f types.Field, oldToNew map[int]int, newIdx int) types.Field {
	if !f.IsRef() {
		return f
	}
	mapped, ok := oldToNew[*f.Ref]
	if !ok || mapped >= newIdx {
		return types.Field{Obj: types.ResolveField(old, *f.Ref)}
	}
	return types.Field{Ref: types.Ref(mapped)}
}

// remapComment is the comment counterpart of remapField.
func remapComment(old []types.Page, c types.Comment, oldToNew map[int]int, newIdx int) types.Comment {
	if !c.IsRef() {
		return c
	}
	mapped, ok := oldToNew[*c.Ref]
	if !ok || mapped >= newIdx {
		return types.Comment{Text: types.ResolveComment(old, *c.Ref)}
	}
	return types.Comment{Ref: types.Ref(mapped)}
}

// carryColorize keeps the colorize flag attached to position 0. The page
// that used to be first loses the flag at its new position, and whatever
// page now sits first inherits the old first page's setting.
func carryColorize(old, out []types.Page, oldToNew map[int]int) {
	if len(out) == 0 || len(old) == 0 {
		return
	}
	if newFirst, ok := oldToNew[0]; ok && newFirst != 0 {
		out[newFirst].Flags.Colorize = false
	}
	out[0].Flags.Colorize = old[0].Flags.Colorize
}

// isIdentity reports whether order maps every position onto itself.
func isIdentity(order []int) bool {
	for i, idx := range order {
		if i != idx {
			return false
		}
	}
	return true
}

// RemovePages deletes the given page indices from the flat list, remapping
// the survivors' indices and references. References into the removed set
// are materialized from the old chain instead of dangling. The caller is
// expected to have already removed the corresponding tree nodes; the tree's
// remaining page indices are rewritten through the same map.
func RemovePages(t tree.Tree, pages []types.Page, removed []int) (tree.Tree, []types.Page) {
	if len(removed) == 0 {
		return t, pages
	}
	drop := lo.SliceToMap(removed, func(idx int) (int, bool) { return idx, true })

	oldToNew := make(map[int]int, len(pages))
	out := make([]types.Page, 0, len(pages)-len(removed))
	for oldIdx, p := range pages {
		if drop[oldIdx] {
			continue
		}
		oldToNew[oldIdx] = len(out)
		p.Index = len(out)
		out = append(out, p)
	}
	for i := range out {
		out[i].Field = remapField(pages, out[i].Field, oldToNew, i)
		out[i].Comment = remapComment(pages, out[i].Comment, oldToNew, i)
	}
	carryColorize(pages, out, oldToNew)
	return t.UpdatePageIndices(oldToNew), out
}
