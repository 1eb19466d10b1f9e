package linearize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukaforge/boardtree/pkg/tree"
	"github.com/dukaforge/boardtree/pkg/types"
)

func nodeID(t *testing.T, tr tree.Tree, pageIndex int) string {
	t.Helper()
	n, ok := tr.FindNodeByPageIndex(pageIndex)
	require.True(t, ok, "no node for page index %d", pageIndex)
	return n.ID
}

func testPages(n int) []types.Page {
	pages := make([]types.Page, n)
	for i := range pages {
		pages[i] = types.Page{Index: i, Field: types.Field{Obj: boardName(i)}}
	}
	return pages
}

func boardName(i int) string {
	return "board-" + string(rune('a'+i))
}

func TestNormalizeIdentityIsNoop(t *testing.T) {
	tr := tree.NewFromPages(3)
	pages := testPages(3)

	nt, np, changed := Normalize(tr, pages)
	assert.False(t, changed)
	assert.True(t, tr.Equal(nt))
	assert.True(t, types.PagesEqual(pages, np))
}

func TestNormalizeIsIdempotent(t *testing.T) {
	// Force a reorder, then normalize again: the second pass is a no-op.
	tr := tree.NewFromPages(2)
	tr, id := tr.InsertNode(nodeID(t, tr, 0), 2)
	require.NotEmpty(t, id)
	pages := testPages(3)

	nt, np, changed := Normalize(tr, pages)
	require.True(t, changed)
	_, _, changedAgain := Normalize(nt, np)
	assert.False(t, changedAgain)
}

func TestNormalizeReordersToPreorder(t *testing.T) {
	// Tree: 0 -> [2 -> [1]] after inserting page 2 between 0 and 1.
	tr := tree.NewFromPages(2)
	tr, _ = tr.InsertNode(nodeID(t, tr, 0), 2)

	pages := testPages(3)
	pages[1].Field = types.Field{Ref: types.Ref(0)}
	pages[2].Field = types.Field{Ref: types.Ref(1)}
	pages[2].Comment = types.Comment{Ref: types.Ref(1)}
	pages[1].Comment = types.Comment{Text: "notes"}

	nt, np, changed := Normalize(tr, pages)
	require.True(t, changed)
	require.Len(t, np, 3)

	// New order is pre-order: old pages 0, 2, 1.
	assert.Equal(t, "board-a", np[0].Field.Obj)
	assert.Equal(t, []int{0, 1, 2}, nt.RealPageOrder())
	for i, p := range np {
		assert.Equal(t, i, p.Index)
	}

	// Old page 2 referenced old page 1 which now sits after it: the
	// reference is materialized by chasing the chain to page 0's board.
	assert.False(t, np[1].Field.IsRef())
	assert.Equal(t, "board-a", np[1].Field.Obj)
	assert.Equal(t, "notes", np[1].Comment.Text)

	// Old page 1 referenced old page 0 which still precedes it: remapped.
	require.True(t, np[2].Field.IsRef())
	assert.Equal(t, 0, *np[2].Field.Ref)
}

func TestNormalizeAppendsUnreachablePages(t *testing.T) {
	// Tree only reaches pages 0 and 2; page 1 must not be dropped.
	tr := tree.NewFromPages(1)
	tr, _ = tr.AddBranchNode(nodeID(t, tr, 0), 2)

	pages := testPages(3)
	_, np, changed := Normalize(tr, pages)
	require.True(t, changed)
	require.Len(t, np, 3)
	assert.Equal(t, "board-a", np[0].Field.Obj)
	assert.Equal(t, "board-c", np[1].Field.Obj)
	assert.Equal(t, "board-b", np[2].Field.Obj, "unreachable page appended, not dropped")
}

func TestNormalizeKeepsColorizeOnFirstPosition(t *testing.T) {
	// Rerooting makes old page 1 the new first page; the colorize flag
	// stays with position 0.
	tr := tree.NewFromPages(2).RerootByFirstChild()
	pages := testPages(2)
	pages[0].Flags.Colorize = true

	_, np, changed := Normalize(tr, pages)
	require.True(t, changed)
	assert.Equal(t, "board-b", np[0].Field.Obj)
	assert.True(t, np[0].Flags.Colorize)
	assert.False(t, np[1].Flags.Colorize)
}

func TestNormalizeSkipsVirtualRoot(t *testing.T) {
	tr := tree.NewFromPages(3).EnsureVirtualRoot()
	pages := testPages(3)

	_, _, changed := Normalize(tr, pages)
	assert.False(t, changed, "virtual root contributes no page")
}

func TestRemovePages(t *testing.T) {
	pages := testPages(4)
	pages[2].Field = types.Field{Ref: types.Ref(1)}
	pages[3].Field = types.Field{Ref: types.Ref(2)}
	pages[3].Comment = types.Comment{Ref: types.Ref(1)}
	pages[1].Comment = types.Comment{Text: "kept"}

	tr := tree.NewFromPages(4)
	tr = tr.RemoveNode(nodeID(t, tr, 1), false)

	nt, np := RemovePages(tr, pages, []int{1})
	require.Len(t, np, 3)
	assert.Equal(t, []int{0, 1, 2}, nt.RealPageOrder())

	// Page 2 referenced the removed page 1: materialized from the chain.
	assert.False(t, np[1].Field.IsRef())
	assert.Equal(t, "board-b", np[1].Field.Obj)

	// Page 3 referenced surviving page 2: remapped to its new index.
	require.True(t, np[2].Field.IsRef())
	assert.Equal(t, 1, *np[2].Field.Ref)
	assert.False(t, np[2].Comment.IsRef())
	assert.Equal(t, "kept", np[2].Comment.Text)
}

func TestRemovePagesNoIndices(t *testing.T) {
	tr := tree.NewFromPages(2)
	pages := testPages(2)
	nt, np := RemovePages(tr, pages, nil)
	assert.True(t, tr.Equal(nt))
	assert.True(t, types.PagesEqual(pages, np))
}
