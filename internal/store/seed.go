package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/bwservices06-art/bwservicesweb/internal/apperr"
	"github.com/bwservices06-art/bwservicesweb/internal/content"
)

// SeedResult counts what a seed run wrote per path.
type SeedResult struct {
	Appended map[string]int
	Merged   []string
}

// Seed reads a YAML document of the form
//
//	services:
//	  - title: Web Development
//	    icon: Code2
//	hero:
//	  badge: Now booking
//
// and appends every collection entry and merge-writes every singleton.
// All paths are checked before anything is written.
func Seed(ctx context.Context, w Writer, r io.Reader, logger *slog.Logger) (SeedResult, error) {
	var doc map[string]yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return SeedResult{Appended: map[string]int{}}, nil
		}
		return SeedResult{}, fmt.Errorf("store: seed: decode: %w", err)
	}

	paths := make([]string, 0, len(doc))
	for p := range doc {
		paths = append(paths, p)
	}
	sort.Slice(paths, func(i, j int) bool {
		ki, _ := content.Lookup(paths[i])
		kj, _ := content.Lookup(paths[j])
		return ki < kj
	})

	type entry struct {
		path      string
		singleton map[string]any
		records   []map[string]any
	}
	entries := make([]entry, 0, len(paths))
	for _, p := range paths {
		schema, err := schemaFor(p)
		if err != nil {
			return SeedResult{}, fmt.Errorf("store: seed: %w", err)
		}
		node := doc[p]
		e := entry{path: p}
		if schema.Singleton {
			if node.Kind != yaml.MappingNode {
				return SeedResult{}, fmt.Errorf("store: seed: %w: %s must be a mapping", apperr.ErrValidation, p)
			}
			if err := node.Decode(&e.singleton); err != nil {
				return SeedResult{}, fmt.Errorf("store: seed: %s: %w", p, err)
			}
		} else {
			if node.Kind != yaml.SequenceNode {
				return SeedResult{}, fmt.Errorf("store: seed: %w: %s must be a list", apperr.ErrValidation, p)
			}
			if err := node.Decode(&e.records); err != nil {
				return SeedResult{}, fmt.Errorf("store: seed: %s: %w", p, err)
			}
		}
		entries = append(entries, e)
	}

	res := SeedResult{Appended: map[string]int{}}
	for _, e := range entries {
		if e.singleton != nil {
			if err := w.MergeSingleton(ctx, e.path, e.singleton); err != nil {
				return res, err
			}
			res.Merged = append(res.Merged, e.path)
			logger.Debug("seed: merged", slog.String("path", e.path))
			continue
		}
		for _, fields := range e.records {
			if _, err := w.Append(ctx, e.path, fields); err != nil {
				return res, err
			}
			res.Appended[e.path]++
		}
		logger.Debug("seed: appended", slog.String("path", e.path), slog.Int("count", res.Appended[e.path]))
	}
	return res, nil
}
