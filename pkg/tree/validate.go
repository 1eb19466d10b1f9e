package tree

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
)

// Validation errors. Validate wraps these with the offending node ids.
var (
	ErrRootMissing    = errors.New("root id not present in node set")
	ErrRootHasParent  = errors.New("root node has a parent")
	ErrMultipleRoots  = errors.New("multiple parentless nodes")
	ErrUnknownChild   = errors.New("child id not present in node set")
	ErrDuplicateChild = errors.New("duplicate child id")
	ErrParentMismatch = errors.New("child does not point back to its parent")
	ErrUnknownParent  = errors.New("parent id not present in node set")
	ErrUnreachable    = errors.New("node not reachable from root")
	ErrPageIndex      = errors.New("real node has a negative page index")
	ErrVirtualNotRoot = errors.New("virtual node is not the root")
	ErrVirtualCount   = errors.New("more than one virtual node")
)

// Validate re-derives the tree invariants: a single parentless root, acyclic
// single-parent ancestry, bidirectional parent/child consistency, full
// reachability, and at most one virtual node which must be the root. Returns
// nil when the tree is valid. Mutation results should be validated before
// being committed; any error means the whole operation must be discarded and
// the prior tree kept.
func (t Tree) Validate() []error {
	if len(t.nodes) == 0 {
		if t.rootID != "" {
			return []error{fmt.Errorf("%w: %s", ErrRootMissing, t.rootID)}
		}
		return nil
	}

	var errs []error
	root, ok := t.nodes[t.rootID]
	switch {
	case t.rootID == "":
		errs = append(errs, ErrRootMissing)
	case !ok:
		errs = append(errs, fmt.Errorf("%w: %s", ErrRootMissing, t.rootID))
	case root.ParentID != "":
		errs = append(errs, fmt.Errorf("%w: %s", ErrRootHasParent, t.rootID))
	}

	parentless := lo.Filter(lo.Values(t.nodes), func(n *Node, _ int) bool {
		return n.ParentID == ""
	})
	if len(parentless) > 1 {
		ids := lo.Map(parentless, func(n *Node, _ int) string { return n.ID })
		errs = append(errs, fmt.Errorf("%w: %v", ErrMultipleRoots, ids))
	}

	virtuals := 0
	for id, n := range t.nodes {
		if n.ID != id {
			errs = append(errs, fmt.Errorf("node %s keyed under %s", n.ID, id))
		}
		if n.IsVirtual() {
			virtuals++
			if id != t.rootID {
				errs = append(errs, fmt.Errorf("%w: %s", ErrVirtualNotRoot, id))
			}
		} else if n.PageIndex < 0 {
			errs = append(errs, fmt.Errorf("%w: %s has %d", ErrPageIndex, id, n.PageIndex))
		}
		if n.ParentID != "" {
			p, ok := t.nodes[n.ParentID]
			if !ok {
				errs = append(errs, fmt.Errorf("%w: %s for node %s", ErrUnknownParent, n.ParentID, id))
			} else if !lo.Contains(p.ChildrenIDs, id) {
				errs = append(errs, fmt.Errorf("%w: %s missing from children of %s", ErrParentMismatch, id, n.ParentID))
			}
		}
		seen := map[string]bool{}
		for _, c := range n.ChildrenIDs {
			if seen[c] {
				errs = append(errs, fmt.Errorf("%w: %s under %s", ErrDuplicateChild, c, id))
			}
			seen[c] = true
			cn, ok := t.nodes[c]
			if !ok {
				errs = append(errs, fmt.Errorf("%w: %s under %s", ErrUnknownChild, c, id))
			} else if cn.ParentID != id {
				errs = append(errs, fmt.Errorf("%w: %s has parent %q, listed under %s", ErrParentMismatch, c, cn.ParentID, id))
			}
		}
	}
	if virtuals > 1 {
		errs = append(errs, fmt.Errorf("%w: %d", ErrVirtualCount, virtuals))
	}

	// Reachability doubles as the cycle check: with single-parent links
	// verified above, a node missing from the pre-order walk is either
	// orphaned or sits on a cycle.
	reached := lo.SliceToMap(t.Preorder(), func(id string) (string, bool) { return id, true })
	for id := range t.nodes {
		if !reached[id] {
			errs = append(errs, fmt.Errorf("%w: %s", ErrUnreachable, id))
		}
	}
	return errs
}
