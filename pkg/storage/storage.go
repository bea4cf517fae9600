// Package storage persists dungeon documents.
//
// Two backends implement [Store]:
//   - [FileStore]: one JSON file per document, for the CLI and single-node servers
//   - [MongoStore]: a MongoDB collection, for servers sharing state
//
// Documents are keyed by their ID. Put assigns a fresh UUID when the document
// has none.
//
//	store, err := storage.NewFileStore("")  // ~/.local/share/dungeonmap/dungeons
//	id, err := store.Put(ctx, doc)
//	doc, err = store.Get(ctx, id)
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	dio "github.com/n8l/dungeonmap/pkg/io"
)

// Sentinel errors for storage operations.
var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrInvalidID is returned for IDs that cannot name a document.
	ErrInvalidID = errors.New("invalid document id")
)

// Store persists dungeon documents.
type Store interface {
	// Put stores doc and returns its ID, assigning one if doc.ID is empty.
	// An existing document with the same ID is replaced.
	Put(ctx context.Context, doc *dio.Document) (string, error)

	// Get returns the document with the given ID or ErrNotFound.
	Get(ctx context.Context, id string) (*dio.Document, error)

	// List returns all stored IDs in ascending order.
	List(ctx context.Context) ([]string, error)

	// Delete removes a document. Missing documents yield ErrNotFound.
	Delete(ctx context.Context, id string) error

	Close() error
}

// assignID gives doc a UUID if it has no ID and checks the result.
func assignID(doc *dio.Document) (string, error) {
	if doc == nil {
		return "", fmt.Errorf("%w: nil document", ErrInvalidID)
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if err := checkID(doc.ID); err != nil {
		return "", err
	}
	return doc.ID, nil
}

func checkID(id string) error {
	if id == "" || strings.ContainsAny(id, "/\\\x00") || strings.Contains(id, "..") || strings.HasPrefix(id, ".") {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}
