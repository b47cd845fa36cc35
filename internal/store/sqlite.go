package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/bwservices06-art/bwservicesweb/internal/apperr"
	"github.com/bwservices06-art/bwservicesweb/internal/content"
	"github.com/bwservices06-art/bwservicesweb/internal/metrics"
)

// singletonID is the row id under which a singleton path stores its record.
const singletonID = ""

// SQLite is the SQLite-backed Store.
type SQLite struct {
	conn *sql.DB
	file string
	hub  *hub

	mu   sync.Mutex
	seen map[string]int64 // last observed revision per path
}

var _ Store = (*SQLite)(nil)

// Open opens (or creates) the database at file and applies migrations.
// Write transactions take the database lock up front so concurrent merges
// from several processes serialize instead of failing.
func Open(file string) (*SQLite, error) {
	conn, err := sql.Open("sqlite3", file+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if err := runMigrations(conn); err != nil {
		conn.Close()
		return nil, err
	}
	s := &SQLite{conn: conn, file: file, hub: newHub(), seen: make(map[string]int64)}
	if _, err := s.changedPaths(context.Background()); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// Close stops notification dispatch and closes the database.
func (s *SQLite) Close() error {
	s.hub.close()
	return s.conn.Close()
}

// File returns the database file path.
func (s *SQLite) File() string {
	return s.file
}

// Watch registers fn to run after every committed change to path.
func (s *SQLite) Watch(path string, fn func()) (func(), error) {
	if _, err := schemaFor(path); err != nil {
		return nil, err
	}
	return s.hub.watch(path, fn), nil
}

// WatcherCount returns the number of registered change callbacks.
func (s *SQLite) WatcherCount() int {
	return s.hub.count()
}

// Snapshot returns every record under path in insertion order.
func (s *SQLite) Snapshot(ctx context.Context, path string) (Snapshot, error) {
	schema, err := schemaFor(path)
	if err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{Path: path, Records: []content.Record{}}
	if schema.Singleton {
		rec, found, err := s.singleton(ctx, path)
		if err != nil {
			return Snapshot{}, err
		}
		if found {
			snap.Records = append(snap.Records, rec)
		}
		return snap, nil
	}

	rows, err := s.conn.QueryContext(ctx, `SELECT id, fields FROM records WHERE path = ? ORDER BY seq`, path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("store: snapshot %s: %w", path, err)
	}
	defer rows.Close()
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return Snapshot{}, fmt.Errorf("store: scan %s: %w", path, err)
		}
		fields, err := decodeFields(raw)
		if err != nil {
			return Snapshot{}, fmt.Errorf("store: decode %s/%s: %w", path, id, err)
		}
		snap.Records = append(snap.Records, content.NewRecord(id, fields))
	}
	return snap, rows.Err()
}

// Singleton returns the singleton record at path, empty when never written.
func (s *SQLite) Singleton(ctx context.Context, path string) (content.Record, error) {
	if _, err := singletonSchema(path); err != nil {
		return content.Record{}, err
	}
	rec, _, err := s.singleton(ctx, path)
	return rec, err
}

func (s *SQLite) singleton(ctx context.Context, path string) (content.Record, bool, error) {
	var raw string
	err := s.conn.QueryRowContext(ctx, `SELECT fields FROM records WHERE path = ? AND id = ?`, path, singletonID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return content.NewRecord(path, nil), false, nil
	}
	if err != nil {
		return content.Record{}, false, fmt.Errorf("store: read %s: %w", path, err)
	}
	fields, err := decodeFields(raw)
	if err != nil {
		return content.Record{}, false, fmt.Errorf("store: decode %s: %w", path, err)
	}
	return content.NewRecord(path, fields), true, nil
}

// Append adds a record with a fresh time-ordered identifier.
func (s *SQLite) Append(ctx context.Context, path string, fields map[string]any) (string, error) {
	if _, err := collectionSchema(path); err != nil {
		return "", err
	}
	u, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("store: new id: %w", err)
	}
	id := u.String()

	doc := make(map[string]any, len(fields))
	applyPatch(doc, fields)
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("store: encode: %w", err)
	}

	err = s.write(ctx, "append", path, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO records (path, id, fields) VALUES (?, ?, ?)`, path, id, string(raw))
		return err
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// Merge overwrites the fields present in partial on the record at path/id.
func (s *SQLite) Merge(ctx context.Context, path, id string, partial map[string]any) error {
	if _, err := collectionSchema(path); err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("%w: empty record id", apperr.ErrInvalidPath)
	}
	return s.write(ctx, "merge", path, func(tx *sql.Tx) error {
		return mergeRow(ctx, tx, path, id, partial, false)
	})
}

// MergeSingleton merge-writes the singleton at path, creating it when absent.
func (s *SQLite) MergeSingleton(ctx context.Context, path string, partial map[string]any) error {
	if _, err := singletonSchema(path); err != nil {
		return err
	}
	return s.write(ctx, "merge", path, func(tx *sql.Tx) error {
		return mergeRow(ctx, tx, path, singletonID, partial, true)
	})
}

// Delete removes path/id. Absent records are not an error.
func (s *SQLite) Delete(ctx context.Context, path, id string) error {
	if _, err := collectionSchema(path); err != nil {
		return err
	}
	return s.write(ctx, "delete", path, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM records WHERE path = ? AND id = ?`, path, id)
		return err
	})
}

func mergeRow(ctx context.Context, tx *sql.Tx, path, id string, partial map[string]any, create bool) error {
	var raw string
	err := tx.QueryRowContext(ctx, `SELECT fields FROM records WHERE path = ? AND id = ?`, path, id).Scan(&raw)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if !create {
			return fmt.Errorf("%w: %s/%s", apperr.ErrNotFound, path, id)
		}
		doc := map[string]any{}
		applyPatch(doc, partial)
		enc, err := json.Marshal(doc)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO records (path, id, fields) VALUES (?, ?, ?)`, path, id, string(enc))
		return err
	case err != nil:
		return err
	}

	doc, err := decodeFields(raw)
	if err != nil {
		return err
	}
	applyPatch(doc, partial)
	enc, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `UPDATE records SET fields = ?, updated_at = CURRENT_TIMESTAMP WHERE path = ? AND id = ?`,
		string(enc), path, id)
	return err
}

// write runs fn in a transaction, bumps the path revision, commits and
// notifies watchers of path.
func (s *SQLite) write(ctx context.Context, op, path string, fn func(tx *sql.Tx) error) (err error) {
	defer func() {
		metrics.StoreWrites.WithLabelValues(op, path, metrics.Outcome(err)).Inc()
	}()

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := fn(tx); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return err
		}
		return fmt.Errorf("store: %s %s: %w", op, path, err)
	}

	var rev int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO revisions (path, rev) VALUES (?, 1)
		ON CONFLICT(path) DO UPDATE SET rev = rev + 1
		RETURNING rev
	`, path).Scan(&rev)
	if err != nil {
		return fmt.Errorf("store: bump revision: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}

	s.mu.Lock()
	s.seen[path] = rev
	s.mu.Unlock()
	s.hub.notify(path)
	return nil
}

// changedPaths compares the revisions table with the last observed revisions
// and returns the paths written by someone else since.
func (s *SQLite) changedPaths(ctx context.Context) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT path, rev FROM revisions`)
	if err != nil {
		return nil, fmt.Errorf("store: revisions: %w", err)
	}
	defer rows.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	var changed []string
	for rows.Next() {
		var p string
		var rev int64
		if err := rows.Scan(&p, &rev); err != nil {
			return nil, err
		}
		if s.seen[p] != rev {
			s.seen[p] = rev
			changed = append(changed, p)
		}
	}
	return changed, rows.Err()
}

// Refresh notifies watchers of every path changed outside this process.
func (s *SQLite) Refresh(ctx context.Context) ([]string, error) {
	changed, err := s.changedPaths(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range changed {
		s.hub.notify(p)
	}
	return changed, nil
}

func decodeFields(raw string) (map[string]any, error) {
	fields := map[string]any{}
	if raw == "" {
		return fields, nil
	}
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}
