// Package history implements the undo/redo journal: two capped stacks of
// reversible edit tasks with merge-key coalescing. The journal stores
// encoded snapshot payloads and hands them back for the session to apply;
// it is passed to the session and drag controller as the types.Journal
// capability. See docs/ARCHITECTURE.md § History Journal.
package history

import (
	"sync"

	"github.com/dukaforge/boardtree/pkg/types"
)

// DefaultLimit caps the undo stack. Registering beyond the cap drops the
// oldest task.
const DefaultLimit = 200

// Journal records reversible edits. The zero value is not usable; call New.
type Journal struct {
	mu    sync.Mutex
	limit int
	undo  []types.HistoryTask
	redo  []types.HistoryTask

	// Count overrides installed via SetCounts, reported until the next
	// Register call re-derives them from the stacks.
	override  bool
	undoCount int
	redoCount int
}

var _ types.Journal = (*Journal)(nil)

// New returns an empty journal with the default stack cap.
func New() *Journal {
	return &Journal{limit: DefaultLimit}
}

// NewWithLimit returns an empty journal capped at limit tasks.
func NewWithLimit(limit int) *Journal {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Journal{limit: limit}
}

// Register records a task. When the task's merge key matches the most
// recently recorded task's key and that task is not fixed, the new task
// replaces it, keeping the earlier task's revert half and taking the new
// task's replay half, so a burst of rapid edits coalesces into one undo
// step. Registering always clears the redo stack. Returns the new undo
// count.
func (j *Journal) Register(task types.HistoryTask) int {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.redo = nil
	j.override = false

	if n := len(j.undo); n > 0 && task.MergeKey != "" {
		top := &j.undo[n-1]
		if !top.Fixed && top.MergeKey == task.MergeKey {
			top.Replay = task.Replay
			top.Fixed = task.Fixed
			return n
		}
	}
	j.undo = append(j.undo, task)
	if len(j.undo) > j.limit {
		j.undo = j.undo[1:]
	}
	return len(j.undo)
}

// Undo pops the top undo task onto the redo stack and returns its revert
// payload. Reports false with no payload when nothing can be undone.
func (j *Journal) Undo() ([]byte, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()

	n := len(j.undo)
	if n == 0 {
		return nil, false
	}
	task := j.undo[n-1]
	j.undo = j.undo[:n-1]
	j.redo = append(j.redo, task)
	j.override = false
	return task.Revert, true
}

// Redo pops the top redo task back onto the undo stack and returns its
// replay payload. Reports false with no payload when nothing can be
// redone.
func (j *Journal) Redo() ([]byte, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()

	n := len(j.redo)
	if n == 0 {
		return nil, false
	}
	task := j.redo[n-1]
	j.redo = j.redo[:n-1]
	j.undo = append(j.undo, task)
	j.override = false
	return task.Replay, true
}

// FixTop seals the most recently recorded task: later registrations never
// coalesce into it even when merge keys match. Used to close a step once
// the user's gesture is known to be complete.
func (j *Journal) FixTop() {
	j.mu.Lock()
	defer j.mu.Unlock()

	if n := len(j.undo); n > 0 {
		j.undo[n-1].Fixed = true
	}
}

// Counts returns the undo and redo depths, honoring a SetCounts override.
func (j *Journal) Counts() (undo, redo int) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.override {
		return j.undoCount, j.redoCount
	}
	return len(j.undo), len(j.redo)
}

// SetCounts overrides the reported depths until the next edit. The host
// editor uses this when restoring a document whose history lived outside
// this journal instance.
func (j *Journal) SetCounts(undo, redo int) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.override = true
	j.undoCount = undo
	j.redoCount = redo
}
