// Package sqlite implements the SQLite page store backend.
// See docs/ARCHITECTURE.md § Storage Backends.
package sqlite

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dukaforge/boardtree/pkg/types"
)

//go:embed schema.sql
var schemaSQL string

// DBFileName is the database file created inside the configured data
// directory.
const DBFileName = "boardtree.db"

// Store implements types.PageStore on a SQLite database. Page bodies are
// stored as JSON rows; documents are replaced wholesale on save.
type Store struct {
	mu     sync.RWMutex
	open   bool
	config types.Config
	db     *sql.DB
}

// NewStore creates an unopened store; call Open with a Config before use.
func NewStore() *Store {
	return &Store{}
}

// Open creates the data directory if needed, opens the database file and
// applies the schema. Returns types.ErrStoreAlreadyOpen when called twice.
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

	db, err := sql.Open("sqlite", filepath.Join(config.DataDir, DBFileName))
	if err != nil {
		return err
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return fmt.Errorf("apply schema: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return err
	}

	s.db = db
	s.config = config
	s.open = true
	return nil
}

// Close releases the database connection. Idempotent; operations after
// Close return types.ErrStoreClosed.
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

// SavePages replaces the document's page rows and cursor in one
// transaction.
func (s *Store) SavePages(docID string, pages []types.Page, current int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return types.ErrStoreClosed
	}
	if docID == "" {
		return types.ErrInvalidDocID
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = tx.Exec(`INSERT INTO documents (doc_id, current, page_count, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(doc_id) DO UPDATE SET
			current = excluded.current,
			page_count = excluded.page_count,
			updated_at = excluded.updated_at`,
		docID, current, len(pages), now)
	if err != nil {
		return fmt.Errorf("upsert document %s: %w", docID, err)
	}
	if _, err := tx.Exec(`DELETE FROM pages WHERE doc_id = ?`, docID); err != nil {
		return err
	}
	for i, p := range pages {
		data, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("encode page %d: %w", i, err)
		}
		if _, err := tx.Exec(`INSERT INTO pages (doc_id, idx, data) VALUES (?, ?, ?)`,
			docID, i, string(data)); err != nil {
			return fmt.Errorf("insert page %d: %w", i, err)
		}
	}
	return tx.Commit()
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

	var current, pageCount int
	err := s.db.QueryRow(`SELECT current, page_count FROM documents WHERE doc_id = ?`,
		docID).Scan(&current, &pageCount)
	if err == sql.ErrNoRows {
		return nil, 0, types.ErrDocNotFound
	}
	if err != nil {
		return nil, 0, err
	}

	rows, err := s.db.Query(`SELECT data FROM pages WHERE doc_id = ? ORDER BY idx`, docID)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	pages := make([]types.Page, 0, pageCount)
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, 0, err
		}
		var p types.Page
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			return nil, 0, fmt.Errorf("decode page %d of %s: %w", len(pages), docID, err)
		}
		pages = append(pages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return pages, current, nil
}

// ListDocs returns all stored document ids, sorted.
func (s *Store) ListDocs() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.open {
		return nil, types.ErrStoreClosed
	}

	rows, err := s.db.Query(`SELECT doc_id FROM documents ORDER BY doc_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DeleteDoc removes a document and its pages. Returns types.ErrDocNotFound
// when the document does not exist.
func (s *Store) DeleteDoc(docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return types.ErrStoreClosed
	}
	if docID == "" {
		return types.ErrInvalidDocID
	}

	res, err := s.db.Exec(`DELETE FROM documents WHERE doc_id = ?`, docID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return types.ErrDocNotFound
	}
	_, err = s.db.Exec(`DELETE FROM pages WHERE doc_id = ?`, docID)
	return err
}

var _ types.PageStore = (*Store)(nil)
