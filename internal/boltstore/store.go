// Package boltstore implements the Bolt page store backend: one bucket,
// one msgpack record per document. It trades the SQLite backend's
// queryable rows for a single-file embedded store with no SQL surface.
// See docs/ARCHITECTURE.md § Storage Backends.
package boltstore

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	bolt "go.etcd.io/bbolt"

	"github.com/dukaforge/boardtree/pkg/types"
)

// DBFileName is the database file created inside the configured data
// directory.
const DBFileName = "boardtree.bolt"

var bucketDocuments = []byte("documents")

// docRecord is the stored form of one document.
type docRecord struct {
	Pages   []types.Page `msgpack:"pages"`
	Current int          `msgpack:"current"`
	SavedAt int64        `msgpack:"saved_at"`
}

// Store implements types.PageStore on a bbolt database.
type Store struct {
	mu   sync.RWMutex
	open bool
	db   *bolt.DB
}

// NewStore creates an unopened store; call Open with a Config before use.
func NewStore() *Store {
	return &Store{}
}

// Open creates the data directory if needed and opens the database file.
// Returns types.ErrStoreAlreadyOpen when called twice.
func (s *Store) Open(config types.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.open {
		return types.ErrStoreAlreadyOpen
	}
	if err := config.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(config.DataDir, 0755); err != nil {
		return err
	}

	db, err := bolt.Open(filepath.Join(config.DataDir, DBFileName), 0644,
		&bolt.Options{Timeout: time.Second})
	if err != nil {
		return err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketDocuments)
		return err
	})
	if err != nil {
		db.Close()
		return err
	}

	s.db = db
	s.open = true
	return nil
}

// Close releases the database file. Idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return nil
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			return err
		}
		s.db = nil
	}
	s.open = false
	return nil
}

// SavePages replaces the document's record.
func (s *Store) SavePages(docID string, pages []types.Page, current int) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.open {
		return types.ErrStoreClosed
	}
	if docID == "" {
		return types.ErrInvalidDocID
	}

	data, err := msgpack.Marshal(docRecord{
		Pages:   pages,
		Current: current,
		SavedAt: time.Now().UTC().Unix(),
	})
	if err != nil {
		return fmt.Errorf("encode document %s: %w", docID, err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketDocuments).Put([]byte(docID), data)
	})
}

// LoadPages returns the document's page list and cursor. Returns
// types.ErrDocNotFound when no such document exists.
func (s *Store) LoadPages(docID string) ([]types.Page, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.open {
		return nil, 0, types.ErrStoreClosed
	}
	if docID == "" {
		return nil, 0, types.ErrInvalidDocID
	}

	var rec docRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketDocuments).Get([]byte(docID))
		if data == nil {
			return types.ErrDocNotFound
		}
		return msgpack.Unmarshal(data, &rec)
	})
	if err != nil {
		return nil, 0, err
	}
	return rec.Pages, rec.Current, nil
}

// ListDocs returns all stored document ids. Bolt iterates keys in byte
// order, which is already the sorted order callers expect.
func (s *Store) ListDocs() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.open {
		return nil, types.ErrStoreClosed
	}

	var ids []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketDocuments).ForEach(func(k, _ []byte) error {
			ids = append(ids, string(k))
			return nil
		})
	})
	return ids, err
}

// DeleteDoc removes a document. Returns types.ErrDocNotFound when absent.
func (s *Store) DeleteDoc(docID string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.open {
		return types.ErrStoreClosed
	}
	if docID == "" {
		return types.ErrInvalidDocID
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketDocuments)
		if b.Get([]byte(docID)) == nil {
			return types.ErrDocNotFound
		}
		return b.Delete([]byte(docID))
	})
}

var _ types.PageStore = (*Store)(nil)
