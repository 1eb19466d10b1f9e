package session

import (
	"go.uber.org/zap"

	"github.com/dukaforge/boardtree/pkg/codec"
	"github.com/dukaforge/boardtree/pkg/linearize"
	"github.com/dukaforge/boardtree/pkg/tree"
	"github.com/dukaforge/boardtree/pkg/types"
)

// Branch appends a new page as the last child of parentNodeID. The new
// page's board references the parent's page, so an untouched branch page
// costs no board copy. Returns the new node id.
func (s *Session) Branch(parentNodeID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addPage(parentNodeID, false)
}

// Insert creates a new page as the first child of parentNodeID, displacing
// the parent's former line of descent below the new page. Returns the new
// node id.
func (s *Session) Insert(parentNodeID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addPage(parentNodeID, true)
}

func (s *Session) addPage(parentNodeID string, insert bool) (string, error) {
	parent, ok := s.tree.Node(parentNodeID)
	if !ok {
		return "", types.ErrNodeNotFound
	}
	prev := s.snapshotLocked()

	newIdx := len(s.pages)
	page := types.Page{Index: newIdx}
	if parent.IsVirtual() {
		// A new top-level sequence starts from a blank board.
		page.Field = types.Field{}
	} else {
		page.Field = types.Field{Ref: types.Ref(parent.PageIndex)}
	}
	pages := append(types.ClonePages(s.pages), page)

	var (
		t  tree.Tree
		id string
	)
	if insert {
		t, id = s.tree.InsertNode(parentNodeID, newIdx)
	} else {
		t, id = s.tree.AddBranchNode(parentNodeID, newIdx)
	}
	if id == "" {
		return "", types.ErrNodeNotFound
	}

	// Focus tracks the new node so the journaled snapshot carries the
	// cursor on the new page wherever normalization put it.
	if err := s.publish(prev, t, pages, newIdx, id, ""); err != nil {
		return "", err
	}
	return id, nil
}

// Remove deletes the node's page, or its whole subtree of pages when
// withDescendants is set, splicing any surviving children into the former
// parent's slot. Removing the last remaining page is rejected with
// types.ErrLastPage; removing the virtual root is rejected with
// types.ErrVirtualNode.
func (s *Session) Remove(nodeID string, withDescendants bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.tree.Node(nodeID)
	if !ok {
		return types.ErrNodeNotFound
	}
	if n.IsVirtual() {
		return types.ErrVirtualNode
	}

	removed := []int{n.PageIndex}
	if withDescendants {
		for _, id := range s.tree.Descendants(nodeID) {
			if d, ok := s.tree.Node(id); ok && !d.IsVirtual() {
				removed = append(removed, d.PageIndex)
			}
		}
	}
	if len(removed) >= len(s.pages) {
		return types.ErrLastPage
	}

	prev := s.snapshotLocked()

	// The cursor follows the nearest surviving ancestor when it sat on a
	// removed page.
	focusID := ""
	if cur, ok := s.tree.FindNodeByPageIndex(s.current); ok {
		focusID = cur.ID
		if cur.ID == nodeID || (withDescendants && s.tree.IsDescendant(nodeID, cur.ID)) {
			focusID = n.ParentID
		}
	}

	t := s.tree.RemoveNode(nodeID, withDescendants)
	t, pages := linearize.RemovePages(t, types.ClonePages(s.pages), removed)
	return s.publish(prev, t, pages, s.current, focusID, "")
}

// CommitTree publishes a tree produced by the drag controller's move
// primitives against the pre-gesture snapshot, registering one reversible
// task. The page list is carried over from prev; normalization reconciles
// the order, and the cursor follows the page it sat on before the gesture.
func (s *Session) CommitTree(prev types.Snapshot, next tree.Tree, mergeKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	focusID := ""
	if n, ok := prev.Tree.FindNodeByPageIndex(prev.Current); ok && !n.IsVirtual() {
		focusID = n.ID
	}
	return s.publish(prev, next, types.ClonePages(prev.Pages), prev.Current, focusID, mergeKey)
}

// Normalize reconciles the flat page order with the tree, registering a
// history task when anything moved. Reports whether a rewrite happened.
func (s *Session) Normalize() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, pages, changed := linearize.Normalize(s.tree, types.ClonePages(s.pages))
	if !changed {
		return false, nil
	}
	prev := s.snapshotLocked()
	focusID := ""
	if n, ok := s.tree.FindNodeByPageIndex(s.current); ok && !n.IsVirtual() {
		focusID = n.ID
	}
	return true, s.publish(prev, t, pages, s.current, focusID, "")
}

// Undo applies the most recent task's revert snapshot. Reports false when
// there is nothing to undo. A snapshot that fails to decode is fatal for
// this call only; the session keeps its last good state.
func (s *Session) Undo() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, ok := s.journal.Undo()
	if !ok {
		return false, nil
	}
	return true, s.applyPayload(payload)
}

// Redo applies the most recently undone task's replay snapshot. Reports
// false when there is nothing to redo.
func (s *Session) Redo() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, ok := s.journal.Redo()
	if !ok {
		return false, nil
	}
	return true, s.applyPayload(payload)
}

func (s *Session) applyPayload(payload []byte) error {
	snap, err := codec.DecodeSnapshot(payload)
	if err != nil {
		s.logger.Error("history snapshot unusable", zap.Error(err))
		return err
	}
	s.tree = snap.Tree
	s.pages = snap.Pages
	s.current = clamp(snap.Current, len(snap.Pages))
	s.opSeq.Add(1)
	return nil
}

// SelectPage moves the cursor to the given page index.
func (s *Session) SelectPage(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.pages) {
		return types.ErrPageRange
	}
	s.current = index
	return nil
}

// SelectNode moves the cursor to the node's page. The virtual root is not
// navigable.
func (s *Session) SelectNode(nodeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.tree.Node(nodeID)
	if !ok {
		return types.ErrNodeNotFound
	}
	if n.IsVirtual() {
		return types.ErrVirtualNode
	}
	s.current = clamp(n.PageIndex, len(s.pages))
	return nil
}

// LoadPages replaces the whole document state with an externally loaded
// page list, restoring the host editor's history counters. The embedded
// tree is extracted when present.
func (s *Session) LoadPages(pages []types.Page, current, undoCount, redoCount int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.install(pages, current)
	s.journal.SetCounts(undoCount, redoCount)
	s.opSeq.Add(1)
}
