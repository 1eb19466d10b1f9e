package tree

import "github.com/google/uuid"

// VirtualPageIndex is the sentinel page index carried by a virtual root
// node. A virtual node exists only to let multiple top-level page sequences
// coexist as its children; it never corresponds to a real page.
const VirtualPageIndex = -1

// Node is one vertex of the page tree. It references exactly one page by
// index (or VirtualPageIndex for the virtual root). ChildrenIDs order is
// significant: it is sibling display order and the subtree's contribution
// order to the linear page sequence.
type Node struct {
	ID          string   `json:"id"`
	PageIndex   int      `json:"page_index"`
	ParentID    string   `json:"parent_id,omitempty"`
	ChildrenIDs []string `json:"children_ids,omitempty"`
}

// IsVirtual reports whether the node is a virtual (non-page) node.
func (n Node) IsVirtual() bool {
	return n.PageIndex == VirtualPageIndex
}

// newNodeID generates a UUID v7 node identifier.
func newNodeID() string {
	return uuid.Must(uuid.NewV7()).String()
}
