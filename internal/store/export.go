package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bwservices06-art/bwservicesweb/internal/content"
)

// Tree is the whole document tree: collections map to record lists in
// insertion order, singletons map to their single record.
type Tree map[string]any

// Dump reads every known path into a Tree.
func Dump(ctx context.Context, r Reader) (Tree, error) {
	tree := make(Tree, len(content.Kinds()))
	for _, k := range content.Kinds() {
		if k.Schema().Singleton {
			rec, err := r.Singleton(ctx, k.Path())
			if err != nil {
				return nil, err
			}
			tree[k.Path()] = rec.Fields
			continue
		}
		snap, err := r.Snapshot(ctx, k.Path())
		if err != nil {
			return nil, err
		}
		tree[k.Path()] = snap.Records
	}
	return tree, nil
}

// Export writes the document tree as indented JSON to file. The file is
// replaced atomically: temp file, fsync, rename.
func Export(ctx context.Context, r Reader, file string) error {
	tree, err := Dump(ctx, r)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		return fmt.Errorf("store: export: encode: %w", err)
	}
	return writeFileAtomic(file, append(data, '\n'))
}

func writeFileAtomic(file string, data []byte) error {
	dir := filepath.Dir(file)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("store: export: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".export-tmp-*")
	if err != nil {
		return fmt.Errorf("store: export: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("store: export: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("store: export: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("store: export: close temp: %w", err)
	}
	if err := os.Rename(tmpName, file); err != nil {
		return fmt.Errorf("store: export: rename: %w", err)
	}
	success = true
	return nil
}
