package drag

import "time"

// DefaultLongPress is how long a pointer must stay down on a node before
// the press becomes a drag.
const DefaultLongPress = 350 * time.Millisecond

// PressState tracks one pointer press. It is a plain value owned by the
// controller, not a timer: the caller samples it on pointer-move events
// and asks whether the long-press threshold has elapsed.
type PressState struct {
	NodeID    string
	StartedAt time.Time
	Active    bool
}

// Elapsed reports whether the press has been held for at least d.
func (p PressState) Elapsed(now time.Time, d time.Duration) bool {
	return p.Active && now.Sub(p.StartedAt) >= d
}

// PressDown records a pointer press on a node. A press during an active
// gesture is ignored.
func (c *Controller) PressDown(nodeID string, at time.Time) {
	if c.state != StateIdle {
		return
	}
	c.press = PressState{NodeID: nodeID, StartedAt: at, Active: true}
}

// PressMove is called on pointer movement while the button is held. Once
// the long-press threshold elapses it starts a drag of the pressed node
// and reports true. Before the threshold, movement does nothing; the
// press is still a candidate tap.
func (c *Controller) PressMove(now time.Time, mode Mode) bool {
	if !c.press.Elapsed(now, DefaultLongPress) {
		return false
	}
	p := c.press
	c.press = PressState{}
	return c.Begin(p.NodeID, mode)
}

// PressUp clears the press without starting a drag. Returns the pressed
// node id so the caller can treat the release as a tap, or "" when no
// press was active.
func (c *Controller) PressUp() string {
	if !c.press.Active {
		return ""
	}
	id := c.press.NodeID
	c.press = PressState{}
	return id
}

// Press returns the current press tracking value.
func (c *Controller) Press() PressState { return c.press }
