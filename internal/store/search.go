package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwservices06-art/bwservicesweb/internal/content"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
	snippetRadius      = 40
)

// SearchResult is one record whose text matched a search.
type SearchResult struct {
	Path    string         `json:"path"`
	Record  content.Record `json:"record"`
	Field   string         `json:"field"`
	Snippet string         `json:"snippet"`
}

// Searcher finds records by the text of their field values.
type Searcher interface {
	Search(ctx context.Context, query, path string, limit int) ([]SearchResult, error)
}

var _ Searcher = (*SQLite)(nil)

// Search returns records with a string field containing query, ignoring ASCII
// case, most recently inserted first. An empty path searches every path.
// Field names are not matched.
func (s *SQLite) Search(ctx context.Context, query, path string, limit int) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []SearchResult{}, nil
	}
	if path != "" {
		if _, err := schemaFor(path); err != nil {
			return nil, err
		}
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	limit = min(limit, maxSearchLimit)

	rows, err := s.conn.QueryContext(ctx, `
		SELECT path, id, fields
		FROM records r
		WHERE (? = '' OR path = ?)
		  AND EXISTS (
			SELECT 1 FROM json_each(r.fields) j
			WHERE j.type = 'text' AND j.value LIKE ? ESCAPE '\'
		  )
		ORDER BY seq DESC
		LIMIT ?
	`, path, path, "%"+escapeLike(query)+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("store: search: %w", err)
	}
	defer rows.Close()

	out := []SearchResult{}
	for rows.Next() {
		var p, id, raw string
		if err := rows.Scan(&p, &id, &raw); err != nil {
			return nil, fmt.Errorf("store: search scan: %w", err)
		}
		fields, err := decodeFields(raw)
		if err != nil {
			return nil, fmt.Errorf("store: decode %s/%s: %w", p, id, err)
		}
		if id == singletonID {
			id = p
		}
		res := SearchResult{Path: p, Record: content.NewRecord(id, fields)}
		res.Field, res.Snippet = snippet(p, fields, query)
		out = append(out, res)
	}
	return out, rows.Err()
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// snippet returns the first matching field in schema order and the text
// around the match.
func snippet(path string, fields map[string]any, query string) (string, string) {
	schema, err := schemaFor(path)
	if err != nil {
		return "", ""
	}
	needle := lowerASCII(query)
	for _, f := range schema.Fields {
		text, ok := fields[f.Name].(string)
		if !ok {
			continue
		}
		i := strings.Index(lowerASCII(text), needle)
		if i < 0 {
			continue
		}
		start := max(0, i-snippetRadius)
		end := min(len(text), i+len(needle)+snippetRadius)
		// keep the cut on rune boundaries
		for start > 0 && !isRuneStart(text[start]) {
			start--
		}
		for end < len(text) && !isRuneStart(text[end]) {
			end++
		}
		s := text[start:end]
		if start > 0 {
			s = "..." + s
		}
		if end < len(text) {
			s += "..."
		}
		return f.Name, s
	}
	return "", ""
}

// lowerASCII folds case the way SQLite LIKE does, keeping byte offsets.
func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
