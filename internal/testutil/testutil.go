// Package testutil provides shared test helpers for setting up content stores.
package testutil

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/bwservices06-art/bwservicesweb/internal/store"
)

// TestStore opens a SQLite content store in a temporary directory that is
// closed when the test ends.
func TestStore(t *testing.T) *store.SQLite {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "content.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// Append adds a record and fails the test on error.
func Append(t *testing.T, w store.Writer, path string, fields map[string]any) string {
	t.Helper()
	id, err := w.Append(context.Background(), path, fields)
	if err != nil {
		t.Fatalf("append %s: %v", path, err)
	}
	return id
}

// Logger returns a logger that discards output.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
