// Package tree implements the page tree: an immutable-value tree of nodes,
// each referencing one page by index, with pure query and mutation
// functions. Every mutator returns a new Tree that shares unchanged nodes
// with its input; no function mutates its receiver in place.
// See docs/ARCHITECTURE.md § Tree Store.
package tree

import (
	"slices"
	"sort"
)

// Tree is an immutable snapshot of the page tree. The zero value is an
// empty tree. Mutators return a new Tree; node values that a mutation does
// not touch are shared between the old and new trees.
type Tree struct {
	nodes   map[string]*Node
	rootID  string
	version int
}

// DataVersion is the tree data format version written by this package.
// Consumers encountering a newer version must leave the data alone and
// treat the page list as untreed.
const DataVersion = 1

// New returns an empty tree.
func New() Tree {
	return Tree{nodes: map[string]*Node{}, version: DataVersion}
}

// NewFromPages builds the default tree for a flat page list without
// embedded tree data: a single line of descent where page i+1 is the sole
// child of page i.
func NewFromPages(pageCount int) Tree {
	t := Tree{nodes: make(map[string]*Node, pageCount), version: DataVersion}
	var prev *Node
	for i := 0; i < pageCount; i++ {
		n := &Node{ID: newNodeID(), PageIndex: i}
		t.nodes[n.ID] = n
		if prev == nil {
			t.rootID = n.ID
		} else {
			n.ParentID = prev.ID
			prev.ChildrenIDs = []string{n.ID}
		}
		prev = n
	}
	return t
}

// Len returns the number of nodes, including a virtual root if present.
func (t Tree) Len() int { return len(t.nodes) }

// RootID returns the id of the root node, or "" for an empty tree.
func (t Tree) RootID() string { return t.rootID }

// Version returns the data format version this tree value carries,
// normally DataVersion.
func (t Tree) Version() int { return t.version }

// Node returns a copy of the node with the given id. Mutating the returned
// value does not affect the tree.
func (t Tree) Node(id string) (Node, bool) {
	n, ok := t.nodes[id]
	if !ok {
		return Node{}, false
	}
	cp := *n
	cp.ChildrenIDs = slices.Clone(cp.ChildrenIDs)
	return cp, true
}

// FindNodeByPageIndex returns the node referencing the given page index.
func (t Tree) FindNodeByPageIndex(pageIndex int) (Node, bool) {
	for _, n := range t.nodes {
		if n.PageIndex == pageIndex {
			return t.Node(n.ID)
		}
	}
	return Node{}, false
}

// IsVirtualNode reports whether id names a virtual (non-page) node.
func (t Tree) IsVirtualNode(id string) bool {
	n, ok := t.nodes[id]
	return ok && n.IsVirtual()
}

// Preorder returns all node ids in depth-first pre-order starting at the
// root, respecting ChildrenIDs order. Detached nodes are not visited.
func (t Tree) Preorder() []string {
	if t.rootID == "" {
		return nil
	}
	order := make([]string, 0, len(t.nodes))
	stack := []string{t.rootID}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n, ok := t.nodes[id]
		if !ok || len(order) == len(t.nodes) {
			continue
		}
		order = append(order, id)
		for i := len(n.ChildrenIDs) - 1; i >= 0; i-- {
			stack = append(stack, n.ChildrenIDs[i])
		}
	}
	return order
}

// RealPageOrder returns the page indices of all non-virtual nodes in
// pre-order. This is the order the flat page list must follow.
func (t Tree) RealPageOrder() []int {
	ids := t.Preorder()
	if len(ids) == 0 {
		return nil
	}
	order := make([]int, 0, len(ids))
	for _, id := range ids {
		if n := t.nodes[id]; !n.IsVirtual() {
			order = append(order, n.PageIndex)
		}
	}
	return order
}

// DefaultActiveNodeID returns the first real node in pre-order, which is
// the node a session activates after loading. Returns "" for an empty tree
// or a tree holding only a virtual root.
func (t Tree) DefaultActiveNodeID() string {
	for _, id := range t.Preorder() {
		if !t.nodes[id].IsVirtual() {
			return id
		}
	}
	return ""
}

// PathToNode returns the node ids from the root down to id, inclusive.
// Returns nil if id is not present or not reachable from the root.
func (t Tree) PathToNode(id string) []string {
	n, ok := t.nodes[id]
	if !ok {
		return nil
	}
	var path []string
	for steps := 0; steps <= len(t.nodes); steps++ {
		path = append(path, n.ID)
		if n.ParentID == "" {
			break
		}
		n, ok = t.nodes[n.ParentID]
		if !ok {
			return nil
		}
	}
	if path[len(path)-1] != t.rootID {
		return nil
	}
	slices.Reverse(path)
	return path
}

// Descendants returns the ids of every node strictly below id, in
// pre-order. Returns nil if id is unknown or a leaf.
func (t Tree) Descendants(id string) []string {
	ids := t.subtreeIDs(id)
	if len(ids) <= 1 {
		return nil
	}
	return ids[1:]
}

// IsDescendant reports whether nodeID lies strictly inside the subtree
// rooted at ancestorID.
func (t Tree) IsDescendant(ancestorID, nodeID string) bool {
	if ancestorID == nodeID {
		return false
	}
	n, ok := t.nodes[nodeID]
	for steps := 0; ok && steps <= len(t.nodes); steps++ {
		if n.ParentID == "" {
			return false
		}
		if n.ParentID == ancestorID {
			return true
		}
		n, ok = t.nodes[n.ParentID]
	}
	return false
}

// subtreeIDs returns id followed by its descendants in pre-order.
func (t Tree) subtreeIDs(id string) []string {
	if _, ok := t.nodes[id]; !ok {
		return nil
	}
	var order []string
	stack := []string{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n, ok := t.nodes[cur]
		if !ok || len(order) > len(t.nodes) {
			continue
		}
		order = append(order, cur)
		for i := len(n.ChildrenIDs) - 1; i >= 0; i-- {
			stack = append(stack, n.ChildrenIDs[i])
		}
	}
	return order
}

// clone returns a tree sharing every node value with t but owning a fresh
// id map, so follow-up mutableNode calls can swap nodes without touching t.
func (t Tree) clone() Tree {
	nodes := make(map[string]*Node, len(t.nodes)+1)
	for id, n := range t.nodes {
		nodes[id] = n
	}
	return Tree{nodes: nodes, rootID: t.rootID, version: t.version}
}

// mutableNode replaces the node with a private copy and returns it. Only
// valid on a tree produced by clone within the same mutation.
func (t Tree) mutableNode(id string) *Node {
	n, ok := t.nodes[id]
	if !ok {
		return nil
	}
	cp := *n
	cp.ChildrenIDs = slices.Clone(cp.ChildrenIDs)
	t.nodes[id] = &cp
	return &cp
}

// TreeData is the serializable form of a Tree, used by the persistence
// codec's embedded marker. Nodes are listed in pre-order with any detached
// nodes appended in id order, so equal trees produce equal data.
type TreeData struct {
	Nodes   []Node `json:"nodes"`
	RootID  string `json:"root_id,omitempty"`
	Version int    `json:"version"`
}

// Data returns the serializable form of the tree.
func (t Tree) Data() TreeData {
	d := TreeData{RootID: t.rootID, Version: t.version}
	seen := make(map[string]bool, len(t.nodes))
	for _, id := range t.Preorder() {
		n, _ := t.Node(id)
		d.Nodes = append(d.Nodes, n)
		seen[id] = true
	}
	var detached []string
	for id := range t.nodes {
		if !seen[id] {
			detached = append(detached, id)
		}
	}
	sort.Strings(detached)
	for _, id := range detached {
		n, _ := t.Node(id)
		d.Nodes = append(d.Nodes, n)
	}
	return d
}

// FromData rebuilds a Tree from its serializable form. The input is deep
// copied; the returned tree does not alias d.
func FromData(d TreeData) Tree {
	t := Tree{
		nodes:   make(map[string]*Node, len(d.Nodes)),
		rootID:  d.RootID,
		version: d.Version,
	}
	for _, n := range d.Nodes {
		cp := n
		cp.ChildrenIDs = slices.Clone(n.ChildrenIDs)
		t.nodes[cp.ID] = &cp
	}
	return t
}

// Equal reports whether two trees hold the same nodes, root and version.
func (t Tree) Equal(o Tree) bool {
	if t.rootID != o.rootID || t.version != o.version || len(t.nodes) != len(o.nodes) {
		return false
	}
	for id, n := range t.nodes {
		on, ok := o.nodes[id]
		if !ok || n.PageIndex != on.PageIndex || n.ParentID != on.ParentID {
			return false
		}
		if !slices.Equal(n.ChildrenIDs, on.ChildrenIDs) {
			return false
		}
	}
	return true
}
