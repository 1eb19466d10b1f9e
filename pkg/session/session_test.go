package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukaforge/boardtree/pkg/codec"
	"github.com/dukaforge/boardtree/pkg/tree"
	"github.com/dukaforge/boardtree/pkg/types"
)

func makePages(objs ...string) []types.Page {
	pages := make([]types.Page, len(objs))
	for i, o := range objs {
		pages[i] = types.Page{Index: i, Field: types.Field{Obj: o}}
	}
	return pages
}

func pageObjs(pages []types.Page) []string {
	objs := make([]string, len(pages))
	for i, p := range pages {
		objs[i] = p.Field.Obj
	}
	return objs
}

func nodeFor(t *testing.T, s *Session, pageIndex int) string {
	t.Helper()
	n, ok := s.Tree().FindNodeByPageIndex(pageIndex)
	require.True(t, ok, "no node for page %d", pageIndex)
	return n.ID
}

func TestNewDerivesLinearTree(t *testing.T) {
	s := New(makePages("a", "b", "c"))

	assert.Equal(t, 3, s.Tree().Len())
	assert.Equal(t, []int{0, 1, 2}, s.Tree().RealPageOrder())
	assert.Equal(t, 0, s.Current())
	undo, redo := s.Counts()
	assert.Zero(t, undo)
	assert.Zero(t, redo)
}

func TestNewExtractsEmbeddedTree(t *testing.T) {
	// Root with two branch children, embedded into the page list the way a
	// save would write it.
	tr := tree.NewFromPages(2)
	tr, _ = tr.AddBranchNode(tr.RootID(), 2)
	pages := codec.EmbedTreeInPages(makePages("a", "b", "c"), tr, true)

	s := New(pages)

	root, ok := s.Tree().Node(s.Tree().RootID())
	require.True(t, ok)
	assert.Len(t, root.ChildrenIDs, 2)
	assert.NotContains(t, s.Pages()[0].Comment.Text, codec.TreeMarker)
}

func TestNewDiscardsInvalidEmbeddedTree(t *testing.T) {
	// A marker that decodes but breaks the tree invariants (two parentless
	// nodes, a dangling child id) must not be adopted, or every later edit
	// would be rejected.
	bad := tree.FromData(tree.TreeData{
		Nodes: []tree.Node{
			{ID: "n1", PageIndex: 0},
			{ID: "n2", PageIndex: 1, ChildrenIDs: []string{"nope"}},
		},
		RootID:  "n1",
		Version: tree.DataVersion,
	})
	s := New(codec.EmbedTreeInPages(makePages("a", "b"), bad, true))

	assert.Empty(t, s.Tree().Validate())
	assert.Equal(t, []int{0, 1}, s.Tree().RealPageOrder(), "falls back to the derived line")
	assert.NotContains(t, s.Pages()[0].Comment.Text, codec.TreeMarker)

	// The session stays editable.
	_, err := s.Branch(s.Tree().RootID())
	assert.NoError(t, err)
}

func TestNewEmptyPages(t *testing.T) {
	s := New(nil)
	assert.Zero(t, s.Tree().Len())
	assert.Empty(t, s.Pages())
	assert.Equal(t, 0, s.Current())
}

func TestBranchAppendsChild(t *testing.T) {
	s := New(makePages("a"))
	root := s.Tree().RootID()

	id, err := s.Branch(root)
	require.NoError(t, err)

	n, ok := s.Tree().Node(id)
	require.True(t, ok)
	assert.Equal(t, root, n.ParentID)
	assert.Equal(t, 1, n.PageIndex)
	assert.Equal(t, 1, s.Current())

	// The new page's board is a reference to the parent's page.
	p := s.Pages()[1]
	require.True(t, p.Field.IsRef())
	assert.Equal(t, 0, *p.Field.Ref)
	assert.Equal(t, "a", types.ResolveField(s.Pages(), 1))

	undo, _ := s.Counts()
	assert.Equal(t, 1, undo)
}

func TestBranchUnknownParent(t *testing.T) {
	s := New(makePages("a"))
	_, err := s.Branch("no-such-node")
	assert.ErrorIs(t, err, types.ErrNodeNotFound)
}

func TestInsertDisplacesLine(t *testing.T) {
	s := New(makePages("a", "b"))
	root := s.Tree().RootID()

	id, err := s.Insert(root)
	require.NoError(t, err)

	// Preorder is now a, inserted, b; the flat list follows.
	n, ok := s.Tree().Node(id)
	require.True(t, ok)
	assert.Equal(t, 1, n.PageIndex)
	assert.Equal(t, 1, s.Current())
	assert.Equal(t, "b", s.Pages()[2].Field.Obj)
	assert.Equal(t, "a", types.ResolveField(s.Pages(), 1))

	b, ok := s.Tree().FindNodeByPageIndex(2)
	require.True(t, ok)
	assert.Equal(t, id, b.ParentID)
}

func TestInsertCursorSurvivesUndoRedo(t *testing.T) {
	// The journaled snapshot must carry the cursor on the inserted page, so
	// an undo/redo round trip lands back where the edit did.
	s := New(makePages("a", "b"))
	_, err := s.Insert(s.Tree().RootID())
	require.NoError(t, err)
	require.Equal(t, 1, s.Current())

	undone, err := s.Undo()
	require.NoError(t, err)
	require.True(t, undone)
	assert.Equal(t, 0, s.Current())

	redone, err := s.Redo()
	require.NoError(t, err)
	require.True(t, redone)
	assert.Equal(t, 1, s.Current())
	assert.Equal(t, "a", types.ResolveField(s.Pages(), s.Current()))
}

func TestRemoveSplicesChild(t *testing.T) {
	s := New(makePages("a", "b", "c"))
	mid := nodeFor(t, s, 1)

	require.NoError(t, s.Remove(mid, false))

	assert.Equal(t, []string{"a", "c"}, pageObjs(s.Pages()))
	c, ok := s.Tree().FindNodeByPageIndex(1)
	require.True(t, ok)
	assert.Equal(t, s.Tree().RootID(), c.ParentID)
	assert.Equal(t, 0, s.Current())
}

func TestRemoveWithDescendants(t *testing.T) {
	s := New(makePages("a", "b", "c"))
	require.NoError(t, s.Remove(nodeFor(t, s, 1), true))
	assert.Equal(t, []string{"a"}, pageObjs(s.Pages()))
	assert.Equal(t, 1, s.Tree().Len())
}

func TestRemoveCursorFollowsAncestor(t *testing.T) {
	s := New(makePages("a", "b", "c"))
	require.NoError(t, s.SelectPage(2))
	require.NoError(t, s.Remove(nodeFor(t, s, 2), false))
	// The cursor sat on the removed page; it falls back to the parent.
	assert.Equal(t, 1, s.Current())
}

func TestRemoveGuards(t *testing.T) {
	single := New(makePages("a"))
	assert.ErrorIs(t, single.Remove(single.Tree().RootID(), false), types.ErrLastPage)
	assert.ErrorIs(t, single.Remove("no-such-node", false), types.ErrNodeNotFound)

	chain := New(makePages("a", "b"))
	assert.ErrorIs(t, chain.Remove(nodeFor(t, chain, 0), true), types.ErrLastPage)
}

func TestRemoveVirtualRootRejected(t *testing.T) {
	tr := tree.NewFromPages(2).EnsureVirtualRoot()
	s := New(codec.EmbedTreeInPages(makePages("a", "b"), tr, true))
	assert.ErrorIs(t, s.Remove(s.Tree().RootID(), false), types.ErrVirtualNode)
}

func TestUndoRedoInverse(t *testing.T) {
	s := New(makePages("a"))
	before := s.Snapshot()

	_, err := s.Branch(s.Tree().RootID())
	require.NoError(t, err)
	after := s.Snapshot()

	undone, err := s.Undo()
	require.NoError(t, err)
	require.True(t, undone)
	assert.True(t, types.PagesEqual(before.Pages, s.Pages()))
	assert.True(t, before.Tree.Equal(s.Tree()))

	redone, err := s.Redo()
	require.NoError(t, err)
	require.True(t, redone)
	assert.True(t, types.PagesEqual(after.Pages, s.Pages()))
	assert.True(t, after.Tree.Equal(s.Tree()))
}

func TestUndoRedoEmpty(t *testing.T) {
	s := New(makePages("a"))
	undone, err := s.Undo()
	require.NoError(t, err)
	assert.False(t, undone)
	redone, err := s.Redo()
	require.NoError(t, err)
	assert.False(t, redone)
}

func TestCommitTreeCoalescesByMergeKey(t *testing.T) {
	s := New(makePages("a", "b", "c"))
	src := nodeFor(t, s, 2)

	snap := s.Snapshot()
	next := snap.Tree.MoveNodeToParent(src, snap.Tree.RootID())
	require.NoError(t, s.CommitTree(snap, next, "drag:"+src))

	snap2 := s.Snapshot()
	next2 := snap2.Tree.MoveNodeToParent(src, nodeFor(t, s, 1))
	require.NoError(t, s.CommitTree(snap2, next2, "drag:"+src))

	undo, _ := s.Counts()
	assert.Equal(t, 1, undo)

	// Sealing closes the window; the same key starts a new task.
	s.SealHistory()
	snap3 := s.Snapshot()
	next3 := snap3.Tree.MoveNodeToParent(src, snap3.Tree.RootID())
	require.NoError(t, s.CommitTree(snap3, next3, "drag:"+src))
	undo, _ = s.Counts()
	assert.Equal(t, 2, undo)
}

func TestCommitTreeCursorFollowsActivePage(t *testing.T) {
	// A drag that reorders the flat list must keep the cursor on the page
	// it sat on, not on whatever page now occupies the old index.
	s := New(makePages("a", "b", "c"))
	require.NoError(t, s.SelectPage(2))

	snap := s.Snapshot()
	next := snap.Tree.MoveNodeToInsertPosition(nodeFor(t, s, 2), snap.Tree.RootID())
	require.NoError(t, s.CommitTree(snap, next, ""))

	assert.Equal(t, []string{"a", "c", "b"}, pageObjs(s.Pages()))
	assert.Equal(t, 1, s.Current())
	assert.Equal(t, "c", s.Pages()[s.Current()].Field.Obj)
}

func TestCommitTreeRejectsInvalidTree(t *testing.T) {
	s := New(makePages("a", "b"))
	before := s.Snapshot()

	bad := tree.FromData(tree.TreeData{
		Nodes:   []tree.Node{{ID: "n0", PageIndex: 0, ChildrenIDs: []string{"ghost"}}},
		RootID:  "n0",
		Version: tree.DataVersion,
	})
	err := s.CommitTree(before, bad, "")
	assert.ErrorIs(t, err, types.ErrTreeInvalid)

	// Prior state kept, nothing journaled.
	assert.True(t, before.Tree.Equal(s.Tree()))
	undo, _ := s.Counts()
	assert.Zero(t, undo)
}

func TestNormalizeReordersToPreorder(t *testing.T) {
	s := New(makePages("a", "b", "c"))
	// Move page 2's node directly under the root; the flat order then
	// disagrees with preorder until normalization runs.
	snap := s.Snapshot()
	next := snap.Tree.MoveNodeToInsertPosition(nodeFor(t, s, 2), snap.Tree.RootID())
	require.NoError(t, s.CommitTree(snap, next, ""))

	assert.Equal(t, []string{"a", "c", "b"}, pageObjs(s.Pages()))
	assert.Equal(t, []int{0, 1, 2}, s.Tree().RealPageOrder())

	changed, err := s.Normalize()
	require.NoError(t, err)
	assert.False(t, changed, "publish already normalized")
}

func TestSelectPage(t *testing.T) {
	s := New(makePages("a", "b"))
	require.NoError(t, s.SelectPage(1))
	assert.Equal(t, 1, s.Current())
	assert.ErrorIs(t, s.SelectPage(2), types.ErrPageRange)
	assert.ErrorIs(t, s.SelectPage(-1), types.ErrPageRange)
}

func TestSelectNode(t *testing.T) {
	s := New(makePages("a", "b"))
	require.NoError(t, s.SelectNode(nodeFor(t, s, 1)))
	assert.Equal(t, 1, s.Current())
	assert.Equal(t, nodeFor(t, s, 1), s.ActiveNodeID())
	assert.ErrorIs(t, s.SelectNode("no-such-node"), types.ErrNodeNotFound)
}

func TestSelectVirtualNodeRejected(t *testing.T) {
	tr := tree.NewFromPages(1).EnsureVirtualRoot()
	s := New(codec.EmbedTreeInPages(makePages("a"), tr, true))
	assert.ErrorIs(t, s.SelectNode(s.Tree().RootID()), types.ErrVirtualNode)
}

func TestLoadPagesRestoresCounts(t *testing.T) {
	s := New(makePages("a"))
	s.LoadPages(makePages("x", "y", "z"), 2, 3, 1)

	assert.Equal(t, []string{"x", "y", "z"}, pageObjs(s.Pages()))
	assert.Equal(t, 2, s.Current())
	undo, redo := s.Counts()
	assert.Equal(t, 3, undo)
	assert.Equal(t, 1, redo)
}
