// Package session owns the live document state: the current tree, the flat
// page list, and the cursor. All mutation flows through the pure primitives
// in the tree and linearize packages and is published atomically as a new
// document state; every structural edit registers exactly one reversible
// task with the history journal. The session is the only component allowed
// to touch the shared state.
// See docs/ARCHITECTURE.md § Document Session.
package session

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/dukaforge/boardtree/pkg/codec"
	"github.com/dukaforge/boardtree/pkg/history"
	"github.com/dukaforge/boardtree/pkg/linearize"
	"github.com/dukaforge/boardtree/pkg/tree"
	"github.com/dukaforge/boardtree/pkg/types"
)

// Session is a single-document editing session. Operations are processed
// one at a time; the mutex serializes the rare boundary goroutines against
// user-initiated edits.
type Session struct {
	mu      sync.Mutex
	tree    tree.Tree
	pages   []types.Page
	current int

	journal types.Journal
	logger  *zap.Logger
	embed   bool

	// opSeq implements last-write-wins at the boundary: an async load
	// only applies if no operation started after it.
	opSeq atomic.Uint64
}

// Option configures a session.
type Option func(*Session)

// WithJournal installs a history capability. Defaults to a fresh journal.
func WithJournal(j types.Journal) Option {
	return func(s *Session) { s.journal = j }
}

// WithLogger installs a diagnostics logger. Defaults to zap.NewNop.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithTreeEmbedding controls whether saved page lists carry the embedded
// tree marker. Enabled by default.
func WithTreeEmbedding(enabled bool) Option {
	return func(s *Session) { s.embed = enabled }
}

// New starts a session from a flat page list. An embedded tree is used
// when present; otherwise the default single-line tree is derived. The
// cursor starts at the default active node's page.
func New(pages []types.Page, opts ...Option) *Session {
	s := &Session{embed: true}
	for _, opt := range opts {
		opt(s)
	}
	if s.journal == nil {
		s.journal = history.New()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	s.install(pages, 0)
	if active := s.tree.DefaultActiveNodeID(); active != "" {
		if n, ok := s.tree.Node(active); ok {
			s.current = n.PageIndex
		}
	}
	return s
}

// install replaces the whole document state from a raw page list,
// extracting or deriving the tree and normalizing. Caller holds the lock
// or is the constructor.
func (s *Session) install(pages []types.Page, current int) {
	cleaned, t, ok := codec.ExtractTreeFromPages(types.ClonePages(pages))
	if ok {
		// An embedded tree that decodes but breaks the invariants would
		// wedge every later edit; discard it like a missing marker.
		if errs := t.Validate(); len(errs) > 0 {
			s.logger.Warn("embedded tree violates invariants; deriving default",
				zap.Errors("violations", errs))
			ok = false
		}
	}
	if !ok {
		t = tree.NewFromPages(len(cleaned))
	}
	t, cleaned, _ = linearize.Normalize(t, cleaned)
	s.tree = t
	s.pages = cleaned
	s.current = clamp(current, len(cleaned))
}

// Snapshot returns an immutable capture of the current document state.
func (s *Session) Snapshot() types.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() types.Snapshot {
	return types.Snapshot{
		Tree:    s.tree,
		Pages:   types.ClonePages(s.pages),
		Current: s.current,
	}
}

// Tree returns the current tree value.
func (s *Session) Tree() tree.Tree {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree
}

// Pages returns a copy of the current flat page list.
func (s *Session) Pages() []types.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return types.ClonePages(s.pages)
}

// Current returns the cursor's page index.
func (s *Session) Current() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// ActiveNodeID returns the id of the node whose page the cursor points at.
func (s *Session) ActiveNodeID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.tree.FindNodeByPageIndex(s.current); ok {
		return n.ID
	}
	return ""
}

// Counts returns the history journal's undo and redo depths.
func (s *Session) Counts() (undo, redo int) {
	return s.journal.Counts()
}

// SealHistory closes the current coalescing window; the next edit starts a
// new undo step even with a matching merge key.
func (s *Session) SealHistory() {
	s.journal.FixTop()
}

// publish validates, normalizes and installs a mutated state, registering
// one history task against prev. When focusNodeID names a real node, the
// cursor lands on that node's page wherever normalization put it, so the
// journaled snapshot carries the final cursor. Returns types.ErrTreeInvalid
// (and keeps the prior state) when the mutation broke a tree invariant.
func (s *Session) publish(prev types.Snapshot, t tree.Tree, pages []types.Page, current int, focusNodeID, mergeKey string) error {
	if errs := t.Validate(); len(errs) > 0 {
		s.logger.Warn("edit produced an invalid tree; discarding",
			zap.Errors("violations", errs))
		return types.ErrTreeInvalid
	}
	t, pages, _ = linearize.Normalize(t, pages)
	if focusNodeID != "" {
		if n, ok := t.Node(focusNodeID); ok && !n.IsVirtual() {
			current = n.PageIndex
		}
	}
	s.tree = t
	s.pages = pages
	s.current = clamp(current, len(pages))
	s.opSeq.Add(1)

	task, err := s.buildTask(prev, s.snapshotLocked(), mergeKey)
	if err != nil {
		s.logger.Error("snapshot encoding failed; edit not journaled", zap.Error(err))
		return nil
	}
	s.journal.Register(task)
	return nil
}

// buildTask encodes the prev/next snapshot pair into a reversible task.
func (s *Session) buildTask(prev, next types.Snapshot, mergeKey string) (types.HistoryTask, error) {
	revert, err := codec.EncodeSnapshot(prev)
	if err != nil {
		return types.HistoryTask{}, err
	}
	replay, err := codec.EncodeSnapshot(next)
	if err != nil {
		return types.HistoryTask{}, err
	}
	return types.HistoryTask{Revert: revert, Replay: replay, MergeKey: mergeKey}, nil
}

// clamp bounds a cursor to the valid page range.
func clamp(current, pageCount int) int {
	if pageCount == 0 {
		return 0
	}
	if current < 0 {
		return 0
	}
	if current >= pageCount {
		return pageCount - 1
	}
	return current
}
