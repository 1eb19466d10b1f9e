package types

import "errors"

// PageStore is the boundary storage interface. A store understands only
// flat page lists; the tree travels through it solely via the embedded
// marker written by the codec package. Implementations live under
// internal/ and are selected through Config.
type PageStore interface {
	// Open attaches the store to its backing medium. Returns
	// ErrStoreAlreadyOpen when called twice.
	Open(config Config) error

	// Close releases store resources. Idempotent; operations after Close
	// return ErrStoreClosed.
	Close() error

	// SavePages persists the flat page list and cursor for a document,
	// replacing any previous content.
	SavePages(docID string, pages []Page, current int) error

	// LoadPages returns the flat page list and cursor for a document.
	// Returns ErrDocNotFound when the document does not exist.
	LoadPages(docID string) ([]Page, int, error)

	// ListDocs returns the ids of all stored documents, sorted.
	ListDocs() ([]string, error)

	// DeleteDoc removes a document. Returns ErrDocNotFound when absent.
	DeleteDoc(docID string) error
}

// Store lifecycle errors.
var (
	ErrStoreClosed      = errors.New("page store is closed")
	ErrStoreAlreadyOpen = errors.New("page store is already open")
	ErrDocNotFound      = errors.New("document not found")
	ErrInvalidDocID     = errors.New("invalid document id")
)

// Editing errors reported by the session layer.
var (
	ErrNodeNotFound = errors.New("node not found")
	ErrVirtualNode  = errors.New("virtual node has no page")
	ErrLastPage     = errors.New("cannot remove the last page")
	ErrTreeInvalid  = errors.New("mutation produced an invalid tree")
	ErrPageRange    = errors.New("page index out of range")
)
