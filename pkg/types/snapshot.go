package types

import "github.com/dukaforge/boardtree/pkg/tree"

// Snapshot is an immutable, fully self-contained point-in-time capture of
// tree, pages and cursor, used by the history journal for replay/revert and
// by the boundary save/load path.
type Snapshot struct {
	Tree    tree.Tree
	Pages   []Page
	Current int
}

// Clone returns a snapshot whose page list is deep copied. The tree is an
// immutable value and is shared as-is.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{Tree: s.Tree, Pages: ClonePages(s.Pages), Current: s.Current}
}
