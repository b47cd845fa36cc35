// Package store implements the content store: a document tree of named
// collections and singletons with subscribe-by-path and write-by-path
// operations, persisted in SQLite.
package store

import (
	"context"
	"fmt"

	"github.com/bwservices06-art/bwservicesweb/internal/apperr"
	"github.com/bwservices06-art/bwservicesweb/internal/content"
)

// Snapshot is the complete state of one path at the moment it was read.
// Records are in store insertion order. A singleton path yields at most one
// record whose ID is the path itself.
type Snapshot struct {
	Path    string
	Records []content.Record
}

// Reader reads the current state of a path. A path with no data yields an
// empty snapshot, never an error.
type Reader interface {
	Snapshot(ctx context.Context, path string) (Snapshot, error)
	Singleton(ctx context.Context, path string) (content.Record, error)
}

// Writer mutates the tree. Record identifiers are always assigned by the store.
type Writer interface {
	// Append adds a record to a collection and returns its new identifier.
	Append(ctx context.Context, path string, fields map[string]any) (string, error)
	// Merge overwrites only the fields present in partial. A nil value removes the field.
	Merge(ctx context.Context, path, id string, partial map[string]any) error
	// MergeSingleton merge-writes a singleton, creating it on first write.
	MergeSingleton(ctx context.Context, path string, partial map[string]any) error
	// Delete removes a record. Deleting an absent record is a no-op.
	Delete(ctx context.Context, path, id string) error
}

// Notifier registers change callbacks per path. fn runs on the store's
// dispatch goroutine after a write to path is committed.
type Notifier interface {
	Watch(path string, fn func()) (cancel func(), err error)
}

// Store is the full content store boundary.
type Store interface {
	Reader
	Writer
	Notifier
}

func schemaFor(path string) (content.Schema, error) {
	k, ok := content.Lookup(path)
	if !ok {
		return content.Schema{}, fmt.Errorf("%w: %q", apperr.ErrInvalidPath, path)
	}
	return k.Schema(), nil
}

func collectionSchema(path string) (content.Schema, error) {
	s, err := schemaFor(path)
	if err != nil {
		return s, err
	}
	if s.Singleton {
		return s, fmt.Errorf("%w: %q is a singleton", apperr.ErrInvalidPath, path)
	}
	return s, nil
}

func singletonSchema(path string) (content.Schema, error) {
	s, err := schemaFor(path)
	if err != nil {
		return s, err
	}
	if !s.Singleton {
		return s, fmt.Errorf("%w: %q is a collection", apperr.ErrInvalidPath, path)
	}
	return s, nil
}

// applyPatch merges partial into fields. nil values delete the field.
func applyPatch(fields, partial map[string]any) {
	for k, v := range partial {
		if k == "id" {
			continue
		}
		if v == nil {
			delete(fields, k)
			continue
		}
		fields[k] = v
	}
}
