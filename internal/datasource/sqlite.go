// Package datasource loads Records from SQLite databases, page by page, as
// the collection pipeline's Loader. A Store can also create and seed a
// database, which the demo and tests use.
package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/arbor/pkg/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS records (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	category   TEXT NOT NULL DEFAULT '',
	status     TEXT NOT NULL DEFAULT 'open',
	priority   INTEGER NOT NULL DEFAULT 2,
	value      REAL NOT NULL DEFAULT 0,
	owner      TEXT NOT NULL DEFAULT '',
	tags       TEXT NOT NULL DEFAULT '[]',
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_records_updated ON records(updated_at);
`

// Store is one SQLite-backed record database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) a record database at path.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("cannot create schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// OpenReadOnly opens an existing record database without write access.
func OpenReadOnly(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Insert upserts records by id.
func (s *Store) Insert(ctx context.Context, records ...model.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (id, title, category, status, priority, value, owner, tags, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			category = excluded.category,
			status = excluded.status,
			priority = excluded.priority,
			value = excluded.value,
			owner = excluded.owner,
			tags = excluded.tags,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		tags, err := json.Marshal(r.Tags)
		if err != nil {
			return fmt.Errorf("marshal tags for %s: %w", r.ID, err)
		}
		if _, err := stmt.ExecContext(ctx,
			r.ID, r.Title, r.Category, string(r.Status), r.Priority, r.Value,
			r.Owner, string(tags), r.CreatedAt, r.UpdatedAt,
		); err != nil {
			return fmt.Errorf("insert %s: %w", r.ID, err)
		}
	}
	return tx.Commit()
}

// Delete removes records by id, returning how many existed.
func (s *Store) Delete(ctx context.Context, ids ...string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	args := make([]any, len(ids))
	marks := make([]string, len(ids))
	for i, id := range ids {
		args[i] = id
		marks[i] = "?"
	}
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM records WHERE id IN ("+strings.Join(marks, ",")+")", args...)
	if err != nil {
		return 0, fmt.Errorf("delete: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// Count returns the number of records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records").Scan(&count); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return count, nil
}

// LastModified returns the most recent update time, zero for an empty store.
func (s *Store) LastModified(ctx context.Context) (time.Time, error) {
	var updatedAt sql.NullTime
	err := s.db.QueryRowContext(ctx, "SELECT MAX(updated_at) FROM records").Scan(&updatedAt)
	if err != nil {
		return time.Time{}, err
	}
	if !updatedAt.Valid {
		return time.Time{}, nil
	}
	return updatedAt.Time, nil
}

// LoadPage returns up to limit records starting at offset, ordered by id for
// a stable pagination sequence, plus the total record count. It implements
// collection.Loader.
func (s *Store) LoadPage(ctx context.Context, offset, limit int) ([]model.Record, int, error) {
	total, err := s.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, category, status, priority, value, owner, tags, created_at, updated_at
		FROM records
		ORDER BY id
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var out []model.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating records: %w", err)
	}
	return out, total, nil
}

// Get retrieves a single record. Absent records are (zero, false, nil), not
// an error.
func (s *Store) Get(ctx context.Context, id string) (model.Record, bool, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, category, status, priority, value, owner, tags, created_at, updated_at
		FROM records WHERE id = ?
	`, id)
	if err != nil {
		return model.Record{}, false, fmt.Errorf("query record: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return model.Record{}, false, rows.Err()
	}
	r, err := scanRecord(rows)
	if err != nil {
		return model.Record{}, false, err
	}
	return r, true, nil
}

func scanRecord(rows *sql.Rows) (model.Record, error) {
	var (
		r                    model.Record
		status, tagsJSON     string
		createdAt, updatedAt sql.NullTime
	)
	if err := rows.Scan(&r.ID, &r.Title, &r.Category, &status, &r.Priority,
		&r.Value, &r.Owner, &tagsJSON, &createdAt, &updatedAt); err != nil {
		return model.Record{}, fmt.Errorf("scan record: %w", err)
	}
	r.Status = model.Status(status)
	if createdAt.Valid {
		r.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		r.UpdatedAt = updatedAt.Time
	}
	r.Tags = parseTags(tagsJSON)
	return r, nil
}

// parseTags decodes the stored JSON tag array, tolerating malformed legacy
// values.
func parseTags(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || s == "null" || s == "[]" {
		return nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(s), &tags); err != nil {
		// Fallback for unquoted comma-joined values.
		for _, item := range strings.Split(strings.Trim(s, "[]"), ",") {
			item = strings.Trim(strings.TrimSpace(item), `"`)
			if item != "" {
				tags = append(tags, item)
			}
		}
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}
