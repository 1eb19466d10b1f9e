package types

// HistoryTask is one reversible edit. Replay and Revert hold encoded
// snapshot payloads (see the codec package): Revert captures the state
// before the edit, Replay the state after. A Fixed task has had its
// coalescing window sealed and is never merged into, even when merge keys
// match.
type HistoryTask struct {
	Replay   []byte
	Revert   []byte
	Fixed    bool
	MergeKey string
}

// Journal is the history capability handed to the session and the drag
// controller. It records reversible edits with merge-key coalescing and
// exposes undo/redo counters. Undo and Redo return the payload to apply
// and false when the respective stack is empty; an empty stack is a
// reported no-op, never an error.
type Journal interface {
	// Register records a task, coalescing it into the most recent task
	// when merge keys match and that task is not fixed. Registering
	// always clears the redo stack. Returns the new undo count.
	Register(task HistoryTask) int

	// Undo moves the top undo task to the redo stack and returns its
	// revert payload.
	Undo() ([]byte, bool)

	// Redo moves the top redo task back to the undo stack and returns
	// its replay payload.
	Redo() ([]byte, bool)

	// FixTop seals the most recent task against further coalescing.
	FixTop()

	// Counts returns the current undo and redo depths.
	Counts() (undo, redo int)

	// SetCounts overrides the reported depths, used when the host editor
	// restores a document together with its known history counters.
	SetCounts(undo, redo int)
}
