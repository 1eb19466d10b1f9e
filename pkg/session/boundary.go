package session

import (
	"go.uber.org/zap"

	"github.com/dukaforge/boardtree/pkg/codec"
	"github.com/dukaforge/boardtree/pkg/types"
)

// Boundary persistence. Saves and loads against a PageStore are the only
// asynchronous points in the core: fire-and-forget requests whose results
// are applied wholesale. There is no cancellation token; a load that loses
// the race against a later operation is simply dropped (last-write-wins).

// Save writes the current document to the store synchronously, with the
// tree embedded in the page list when embedding is enabled.
func (s *Session) Save(store types.PageStore, docID string) error {
	snap := s.Snapshot()
	pages := codec.EmbedTreeInPages(snap.Pages, snap.Tree, s.embed)
	return store.SavePages(docID, pages, snap.Current)
}

// SaveAsync persists the current document in the background. Failures are
// logged; the in-memory state is unaffected either way.
func (s *Session) SaveAsync(store types.PageStore, docID string) {
	snap := s.Snapshot()
	embed := s.embed
	go func() {
		pages := codec.EmbedTreeInPages(snap.Pages, snap.Tree, embed)
		if err := store.SavePages(docID, pages, snap.Current); err != nil {
			s.logger.Warn("boundary save failed",
				zap.String("doc", docID), zap.Error(err))
		}
	}()
}

// LoadAsync fetches a document in the background and applies it wholesale
// on completion, unless any other operation ran in the meantime; the later
// operation's result is then the one observed. Errors are fatal for this
// load only.
func (s *Session) LoadAsync(store types.PageStore, docID string) {
	seq := s.opSeq.Load()
	go func() {
		pages, current, err := store.LoadPages(docID)
		if err != nil {
			s.logger.Warn("boundary load failed",
				zap.String("doc", docID), zap.Error(err))
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.opSeq.Load() != seq {
			s.logger.Debug("stale boundary load dropped", zap.String("doc", docID))
			return
		}
		s.install(pages, current)
		s.journal.SetCounts(0, 0)
	}()
}
