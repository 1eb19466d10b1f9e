// Package drag implements the reparenting controller: a short-lived state
// machine that translates a multi-step pointer gesture into exactly one
// tree mutation and one reversible history task. It enforces cycle safety
// (detach-then-attach for descendant targets) and root promotion
// (reroot-by-first-child) before delegating to the tree move primitives.
// See docs/ARCHITECTURE.md § Drag Controller.
package drag

import (
	"go.uber.org/zap"

	"github.com/dukaforge/boardtree/pkg/tree"
	"github.com/dukaforge/boardtree/pkg/types"
)

// State is the controller's lifecycle position. The controller is never
// persisted; it exists for the duration of one gesture.
type State int

const (
	StateIdle State = iota
	StateDragging
	StateCommitting
	StateCancelled
)

// Mode selects what travels with the dragged node.
type Mode int

const (
	// ModeNone means no drag is in progress.
	ModeNone Mode = iota
	// ModeAttachSingle moves exactly the dragged node; its children stay
	// with the old parent.
	ModeAttachSingle
	// ModeAttachBranch moves the dragged node and all of its later
	// siblings, each with its subtree.
	ModeAttachBranch
	// ModeReorder is reserved for sibling reordering. It is currently
	// disabled and always cancels on commit.
	ModeReorder
)

// ButtonType identifies the per-node affordance buttons that double as
// drop targets.
type ButtonType int

const (
	ButtonNone ButtonType = iota
	ButtonInsert
	ButtonBranch
	ButtonDelete
)

// Gesture is the state carried while dragging.
type Gesture struct {
	SourceNodeID         string
	TargetNodeID         string
	DropSlotIndex        int
	Mode                 Mode
	TargetButtonParentID string
	TargetButtonType     ButtonType
}

// Host is the document capability the controller commits through. The
// session implements it; the controller never touches shared state
// directly.
type Host interface {
	Snapshot() types.Snapshot
	CommitTree(prev types.Snapshot, next tree.Tree, mergeKey string) error
	SealHistory()
	Remove(nodeID string, withDescendants bool) error
}

// Controller drives one drag gesture at a time.
type Controller struct {
	host   Host
	logger *zap.Logger

	state   State
	gesture Gesture
	prev    types.Snapshot
	press   PressState
}

// Option configures a controller.
type Option func(*Controller)

// WithLogger installs a diagnostics logger. Defaults to zap.NewNop.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// NewController returns an idle controller bound to a host document.
func NewController(host Host, opts ...Option) *Controller {
	c := &Controller{host: host, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the controller's lifecycle position.
func (c *Controller) State() State { return c.state }

// Gesture returns the in-flight gesture value.
func (c *Controller) Gesture() Gesture { return c.gesture }

// Begin starts a drag of sourceNodeID. The pre-gesture snapshot is
// captured here and becomes the revert half of the task a successful
// commit registers. Fails silently (stays idle) when the source is
// unknown, virtual, or another gesture is active.
func (c *Controller) Begin(sourceNodeID string, mode Mode) bool {
	if c.state != StateIdle || mode == ModeNone {
		return false
	}
	snap := c.host.Snapshot()
	if _, ok := snap.Tree.Node(sourceNodeID); !ok {
		return false
	}
	if snap.Tree.IsVirtualNode(sourceNodeID) {
		return false
	}
	c.prev = snap
	c.state = StateDragging
	c.gesture = Gesture{
		SourceNodeID:  sourceNodeID,
		DropSlotIndex: -1,
		Mode:          mode,
	}
	return true
}

// HoverNode records the node currently under the pointer. Speculative:
// hovering an invalid target is allowed; validity is decided at commit.
func (c *Controller) HoverNode(targetNodeID string, slotIndex int) {
	if c.state != StateDragging {
		return
	}
	c.gesture.TargetNodeID = targetNodeID
	c.gesture.DropSlotIndex = slotIndex
	c.gesture.TargetButtonParentID = ""
	c.gesture.TargetButtonType = ButtonNone
}

// HoverButton records an affordance button under the pointer.
func (c *Controller) HoverButton(parentNodeID string, button ButtonType) {
	if c.state != StateDragging {
		return
	}
	c.gesture.TargetNodeID = ""
	c.gesture.DropSlotIndex = -1
	c.gesture.TargetButtonParentID = parentNodeID
	c.gesture.TargetButtonType = button
}

// ClearHover drops the current drop target.
func (c *Controller) ClearHover() {
	if c.state != StateDragging {
		return
	}
	c.gesture.TargetNodeID = ""
	c.gesture.DropSlotIndex = -1
	c.gesture.TargetButtonParentID = ""
	c.gesture.TargetButtonType = ButtonNone
}

// Cancel aborts the gesture. An aborted drag never commits; the document
// is untouched.
func (c *Controller) Cancel() {
	if c.state == StateIdle {
		return
	}
	c.state = StateCancelled
	c.reset()
}

// Commit resolves the gesture into one tree mutation and registers it
// through the host. Invalid gestures - no target, unknown ids, would-be
// cycles, the disabled reorder mode - cancel silently: the gesture was
// speculative and the prior state is kept. Returns true when the document
// changed.
func (c *Controller) Commit() bool {
	if c.state != StateDragging {
		return false
	}
	c.state = StateCommitting
	defer c.reset()

	g := c.gesture
	if g.Mode == ModeReorder {
		// Reorder drops are kept in the gesture vocabulary for forward
		// compatibility but are not yet committable.
		return false
	}

	if g.TargetButtonType == ButtonDelete {
		err := c.host.Remove(g.SourceNodeID, g.Mode == ModeAttachBranch)
		if err != nil {
			c.logger.Warn("drop on delete rejected",
				zap.String("source", g.SourceNodeID), zap.Error(err))
			return false
		}
		c.host.SealHistory()
		return true
	}

	target := g.TargetNodeID
	insertPos := false
	switch g.TargetButtonType {
	case ButtonInsert:
		target = g.TargetButtonParentID
		insertPos = true
	case ButtonBranch:
		target = g.TargetButtonParentID
	}
	if target == "" {
		return false
	}

	next, ok := resolveMove(c.prev.Tree, g.SourceNodeID, target, g.Mode, insertPos)
	if !ok {
		return false
	}
	if err := c.host.CommitTree(c.prev, next, "drag:"+g.SourceNodeID); err != nil {
		// Post-move validation failed: the whole gesture is aborted and
		// the prior tree kept.
		c.logger.Warn("drag commit aborted",
			zap.String("source", g.SourceNodeID),
			zap.String("target", target),
			zap.Error(err))
		return false
	}
	c.host.SealHistory()
	return true
}

func (c *Controller) reset() {
	c.state = StateIdle
	c.gesture = Gesture{DropSlotIndex: -1}
	c.prev = types.Snapshot{}
}

// resolveMove turns a drop into a concrete tree mutation:
//
//   - source is the root: reroot-by-first-child, then attach the detached
//     old root under the target;
//   - target is a descendant of the source: detach-leaving-children first,
//     the only cycle-safe path, then attach;
//   - otherwise: the direct move primitive for the mode.
func resolveMove(t tree.Tree, sourceID, targetID string, mode Mode, insertPos bool) (tree.Tree, bool) {
	if sourceID == targetID {
		return t, false
	}
	if _, ok := t.Node(targetID); !ok {
		return t, false
	}

	if sourceID == t.RootID() {
		rerooted := t.RerootByFirstChild()
		if rerooted.RootID() == sourceID {
			// Childless root: there is nothing to promote, the sole
			// node cannot move anywhere.
			return t, false
		}
		return attach(rerooted, sourceID, targetID, insertPos)
	}

	if mode == ModeAttachBranch {
		// A branch drop onto a node inside any moved subtree cancels. The
		// sibling group travels as one unit; detaching a single member to
		// clear the cycle would break the group apart.
		next := t.MoveNodeWithRightSiblings(sourceID, targetID)
		return next, !next.Equal(t)
	}

	if t.IsDescendant(sourceID, targetID) {
		detached := t.DetachLeavingChildren(sourceID)
		return attach(detached, sourceID, targetID, insertPos)
	}

	var next tree.Tree
	if insertPos {
		next = t.MoveNodeToInsertPosition(sourceID, targetID)
	} else {
		next = t.MoveNodeToParent(sourceID, targetID)
	}
	return next, !next.Equal(t)
}

// attach moves an already detached (or rerooted-away) node under target.
func attach(t tree.Tree, sourceID, targetID string, insertPos bool) (tree.Tree, bool) {
	var next tree.Tree
	if insertPos {
		next = t.MoveNodeToInsertPosition(sourceID, targetID)
	} else {
		next = t.MoveNodeToParent(sourceID, targetID)
	}
	return next, !next.Equal(t)
}
