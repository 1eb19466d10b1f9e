package tree

import "slices"

// Mutation primitives. Every function returns a new tree and leaves the
// receiver untouched. Invalid input (unknown ids, would-be cycles, moving
// the sole node) returns the receiver unchanged so gestures can be
// attempted speculatively during drag-hover.

// AddBranchNode appends a new node referencing pageIndex as the last child
// of parentID. Returns the unchanged tree and "" if parentID is unknown.
func (t Tree) AddBranchNode(parentID string, pageIndex int) (Tree, string) {
	if _, ok := t.nodes[parentID]; !ok {
		return t, ""
	}
	nt := t.clone()
	id := newNodeID()
	nt.nodes[id] = &Node{ID: id, PageIndex: pageIndex, ParentID: parentID}
	p := nt.mutableNode(parentID)
	p.ChildrenIDs = append(p.ChildrenIDs, id)
	return nt, id
}

// InsertNode creates a new node referencing pageIndex as the first child of
// parentID. If parentID already had children, the previous first child is
// re-parented to become the sole child of the new node, inserting the node
// between the parent and its former line of descent. With no children this
// is equivalent to AddBranchNode.
func (t Tree) InsertNode(parentID string, pageIndex int) (Tree, string) {
	if _, ok := t.nodes[parentID]; !ok {
		return t, ""
	}
	nt := t.clone()
	id := newNodeID()
	node := &Node{ID: id, PageIndex: pageIndex, ParentID: parentID}
	nt.nodes[id] = node
	p := nt.mutableNode(parentID)
	if len(p.ChildrenIDs) == 0 {
		p.ChildrenIDs = []string{id}
		return nt, id
	}
	displaced := p.ChildrenIDs[0]
	node.ChildrenIDs = []string{displaced}
	dc := nt.mutableNode(displaced)
	dc.ParentID = id
	rest := slices.Clone(p.ChildrenIDs[1:])
	p.ChildrenIDs = append([]string{id}, rest...)
	return nt, id
}

// RemoveNode deletes the node with the given id. When removeDescendants is
// true the whole subtree is deleted; otherwise only the node is deleted and
// its children are spliced into its former parent's child list at the
// node's former position. Removing the root without descendants promotes
// its first child the same way RerootByFirstChild does. Callers must reject
// removing the sole remaining real node themselves.
func (t Tree) RemoveNode(id string, removeDescendants bool) Tree {
	n, ok := t.nodes[id]
	if !ok {
		return t
	}
	if removeDescendants {
		nt := t.clone()
		for _, d := range t.subtreeIDs(id) {
			delete(nt.nodes, d)
		}
		if id == nt.rootID {
			nt.rootID = ""
			return nt
		}
		p := nt.mutableNode(n.ParentID)
		if p == nil {
			return t
		}
		p.ChildrenIDs = removeID(p.ChildrenIDs, id)
		return nt
	}

	if id == t.rootID {
		if len(n.ChildrenIDs) == 0 {
			nt := t.clone()
			delete(nt.nodes, id)
			nt.rootID = ""
			return nt
		}
		nt := t.RerootByFirstChild()
		nnt := nt.clone()
		delete(nnt.nodes, id)
		return nnt
	}

	p, ok := t.nodes[n.ParentID]
	if !ok {
		return t
	}
	idx := slices.Index(p.ChildrenIDs, id)
	if idx < 0 {
		return t
	}
	nt := t.clone()
	np := nt.mutableNode(p.ID)
	spliced := make([]string, 0, len(p.ChildrenIDs)-1+len(n.ChildrenIDs))
	spliced = append(spliced, p.ChildrenIDs[:idx]...)
	spliced = append(spliced, n.ChildrenIDs...)
	spliced = append(spliced, p.ChildrenIDs[idx+1:]...)
	np.ChildrenIDs = spliced
	for _, c := range n.ChildrenIDs {
		cn := nt.mutableNode(c)
		cn.ParentID = p.ID
	}
	delete(nt.nodes, id)
	return nt
}

// CanMoveNode reports whether sourceID may be re-parented under targetID.
// Valid iff both exist, they differ, and (unless allowDescendant) targetID
// is not a descendant of sourceID. Moving a node under its own descendant
// always goes through DetachLeavingChildren first, never a direct parent
// reassignment.
func (t Tree) CanMoveNode(sourceID, targetID string, allowDescendant bool) bool {
	if sourceID == targetID {
		return false
	}
	if _, ok := t.nodes[sourceID]; !ok {
		return false
	}
	if _, ok := t.nodes[targetID]; !ok {
		return false
	}
	if !allowDescendant && t.IsDescendant(sourceID, targetID) {
		return false
	}
	return true
}

// MoveNodeToParent moves exactly the node sourceID to become the last
// child of targetID, leaving the node's children spliced into its former
// parent's child list.
func (t Tree) MoveNodeToParent(sourceID, targetID string) Tree {
	if !t.CanMoveNode(sourceID, targetID, false) {
		return t
	}
	nt := t.clone()
	nt.detachLeavingChildren(sourceID)
	nt.attachLast(sourceID, targetID)
	return nt
}

// MoveNodeToInsertPosition moves exactly the node sourceID to become the
// first child of targetID; a previous first child of targetID is displaced
// to become the moved node's child.
func (t Tree) MoveNodeToInsertPosition(sourceID, targetID string) Tree {
	if !t.CanMoveNode(sourceID, targetID, false) {
		return t
	}
	nt := t.clone()
	nt.detachLeavingChildren(sourceID)
	nt.attachFirst(sourceID, targetID)
	return nt
}

// MoveSubtreeToParent moves the whole subtree rooted at sourceID to become
// the last child of targetID.
func (t Tree) MoveSubtreeToParent(sourceID, targetID string) Tree {
	if !t.CanMoveNode(sourceID, targetID, false) {
		return t
	}
	nt := t.clone()
	nt.detachSubtree(sourceID)
	nt.attachLast(sourceID, targetID)
	return nt
}

// MoveSubtreeToInsertPosition moves the whole subtree rooted at sourceID to
// become the first child of targetID, displacing a previous first child to
// become a child of sourceID.
func (t Tree) MoveSubtreeToInsertPosition(sourceID, targetID string) Tree {
	if !t.CanMoveNode(sourceID, targetID, false) {
		return t
	}
	nt := t.clone()
	nt.detachSubtree(sourceID)
	nt.attachFirst(sourceID, targetID)
	return nt
}

// MoveNodeWithRightSiblings moves sourceID and all of its later siblings,
// each with its subtree, to become the last children of targetID in their
// existing order. Used for "split the rest of this branch off" gestures.
// No-op if sourceID is the root, targetID is unknown, or targetID lies
// inside any moved subtree.
func (t Tree) MoveNodeWithRightSiblings(sourceID, targetID string) Tree {
	n, ok := t.nodes[sourceID]
	if !ok || n.ParentID == "" {
		return t
	}
	if _, ok := t.nodes[targetID]; !ok {
		return t
	}
	p := t.nodes[n.ParentID]
	idx := slices.Index(p.ChildrenIDs, sourceID)
	if idx < 0 {
		return t
	}
	moved := slices.Clone(p.ChildrenIDs[idx:])
	for _, m := range moved {
		if m == targetID || t.IsDescendant(m, targetID) {
			return t
		}
	}
	nt := t.clone()
	np := nt.mutableNode(p.ID)
	np.ChildrenIDs = np.ChildrenIDs[:idx]
	tn := nt.mutableNode(targetID)
	tn.ChildrenIDs = append(tn.ChildrenIDs, moved...)
	for _, m := range moved {
		mn := nt.mutableNode(m)
		mn.ParentID = targetID
	}
	return nt
}

// RerootByFirstChild promotes the root's first child to be the new root.
// The old root's remaining children are re-parented under the new root,
// prepended before the new root's own children to preserve their relative
// order, and the old root is left detached (no parent, no children) so the
// normal move primitives can attach it elsewhere. No-op when the root has
// no children.
func (t Tree) RerootByFirstChild() Tree {
	root, ok := t.nodes[t.rootID]
	if !ok || len(root.ChildrenIDs) == 0 {
		return t
	}
	nt := t.clone()
	newRootID := root.ChildrenIDs[0]
	rest := slices.Clone(root.ChildrenIDs[1:])
	nr := nt.mutableNode(newRootID)
	nr.ParentID = ""
	nr.ChildrenIDs = append(slices.Clone(rest), nr.ChildrenIDs...)
	for _, c := range rest {
		cn := nt.mutableNode(c)
		cn.ParentID = newRootID
	}
	old := nt.mutableNode(root.ID)
	old.ParentID = ""
	old.ChildrenIDs = nil
	nt.rootID = newRootID
	return nt
}

// DetachLeavingChildren removes the node from its position while splicing
// its children into its former parent's child list at the same slot. The
// node stays in the tree, detached, ready to be attached elsewhere. This is
// the only cycle-safe way to move a node under its own descendant. No-op on
// the root (see RerootByFirstChild) and on already detached nodes.
func (t Tree) DetachLeavingChildren(id string) Tree {
	n, ok := t.nodes[id]
	if !ok || n.ParentID == "" {
		return t
	}
	nt := t.clone()
	if !nt.detachLeavingChildren(id) {
		return t
	}
	return nt
}

// EnsureVirtualRoot wraps the current root under a virtual node when the
// root is a real page, so that additional top-level sequences can be added
// as the virtual node's children. No-op on an empty tree or when the root
// is already virtual.
func (t Tree) EnsureVirtualRoot() Tree {
	root, ok := t.nodes[t.rootID]
	if !ok || root.IsVirtual() {
		return t
	}
	nt := t.clone()
	id := newNodeID()
	nt.nodes[id] = &Node{ID: id, PageIndex: VirtualPageIndex, ChildrenIDs: []string{root.ID}}
	r := nt.mutableNode(root.ID)
	r.ParentID = id
	nt.rootID = id
	return nt
}

// UpdatePageIndices rewrites every real node's page index through the
// old-to-new index map produced by a linearization. Indices absent from the
// map are kept as-is.
func (t Tree) UpdatePageIndices(indexMap map[int]int) Tree {
	nt := t.clone()
	for id, n := range nt.nodes {
		if n.IsVirtual() {
			continue
		}
		if ni, ok := indexMap[n.PageIndex]; ok && ni != n.PageIndex {
			cp := nt.mutableNode(id)
			cp.PageIndex = ni
		}
	}
	return nt
}

// detachLeavingChildren performs the splice in place on a cloned tree.
func (t *Tree) detachLeavingChildren(id string) bool {
	n := t.nodes[id]
	if n == nil || n.ParentID == "" {
		// Already detached; nothing to splice.
		return n != nil
	}
	p := t.nodes[n.ParentID]
	if p == nil {
		return false
	}
	idx := slices.Index(p.ChildrenIDs, id)
	if idx < 0 {
		return false
	}
	children := slices.Clone(n.ChildrenIDs)
	np := t.mutableNode(p.ID)
	spliced := make([]string, 0, len(np.ChildrenIDs)-1+len(children))
	spliced = append(spliced, np.ChildrenIDs[:idx]...)
	spliced = append(spliced, children...)
	spliced = append(spliced, np.ChildrenIDs[idx+1:]...)
	np.ChildrenIDs = spliced
	for _, c := range children {
		cn := t.mutableNode(c)
		cn.ParentID = p.ID
	}
	d := t.mutableNode(id)
	d.ParentID = ""
	d.ChildrenIDs = nil
	return true
}

// detachSubtree removes id from its parent's child list, keeping the
// subtree attached under id. In-place on a cloned tree.
func (t *Tree) detachSubtree(id string) bool {
	n := t.nodes[id]
	if n == nil {
		return false
	}
	if n.ParentID == "" {
		return true
	}
	p := t.mutableNode(n.ParentID)
	if p == nil {
		return false
	}
	p.ChildrenIDs = removeID(p.ChildrenIDs, id)
	d := t.mutableNode(id)
	d.ParentID = ""
	return true
}

// attachLast appends a detached node as the last child of parentID.
// In-place on a cloned tree.
func (t *Tree) attachLast(id, parentID string) {
	p := t.mutableNode(parentID)
	n := t.mutableNode(id)
	if p == nil || n == nil {
		return
	}
	n.ParentID = parentID
	p.ChildrenIDs = append(p.ChildrenIDs, id)
}

// attachFirst prepends a detached node as the first child of parentID; a
// previous first child is displaced to become the attached node's child.
// In-place on a cloned tree.
func (t *Tree) attachFirst(id, parentID string) {
	p := t.mutableNode(parentID)
	n := t.mutableNode(id)
	if p == nil || n == nil {
		return
	}
	n.ParentID = parentID
	if len(p.ChildrenIDs) > 0 {
		displaced := p.ChildrenIDs[0]
		dc := t.mutableNode(displaced)
		dc.ParentID = id
		n.ChildrenIDs = append(n.ChildrenIDs, displaced)
		p.ChildrenIDs = append([]string{id}, p.ChildrenIDs[1:]...)
		return
	}
	p.ChildrenIDs = []string{id}
}

// removeID returns ids without the first occurrence of id.
func removeID(ids []string, id string) []string {
	idx := slices.Index(ids, id)
	if idx < 0 {
		return ids
	}
	out := make([]string, 0, len(ids)-1)
	out = append(out, ids[:idx]...)
	out = append(out, ids[idx+1:]...)
	return out
}
