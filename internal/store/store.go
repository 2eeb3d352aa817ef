// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists federated element records in a SQLite database:
// one flat table with six numeric bound columns, per-axis range indexes,
// and a schema-version marker checked before any reader trusts the layout.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/federation-index/pkg/types"
)

// SchemaVersion is written to the schema_info marker on initialization.
// Readers reject stores whose marker is missing or unreadable.
const SchemaVersion = "1.0.0"

// SchemaError reports a store whose schema cannot be trusted: missing
// version marker, missing table, or missing spatial indexes. Callers must
// treat it as fatal for that store.
type SchemaError struct {
	Path   string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("invalid federation store %s: %s", e.Path, e.Reason)
}

// Store is a handle to one federation database.
type Store struct {
	db    *sql.DB
	path  string
	limit int
}

// Open opens or creates the federation database at path. The schema is not
// created here; call InitSchema before writing or Validate before reading.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// SetLimit caps the number of records range and discipline queries return.
// Zero or negative means unlimited. Exact guid lookups are not affected.
func (s *Store) SetLimit(n int) {
	s.limit = n
}

// SizeMB returns the database file size in megabytes, or 0 when the file
// does not exist yet.
func (s *Store) SizeMB() float64 {
	info, err := os.Stat(s.path)
	if err != nil {
		return 0
	}
	return float64(info.Size()) / (1024 * 1024)
}

// InitSchema creates the elements table, its indexes, and the schema
// version marker. It is idempotent.
func (s *Store) InitSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS schema_info (
			key TEXT PRIMARY KEY,
			value TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS elements (
			guid TEXT PRIMARY KEY,
			discipline TEXT NOT NULL,
			type_tag TEXT NOT NULL,
			min_x REAL NOT NULL,
			min_y REAL NOT NULL,
			min_z REAL NOT NULL,
			max_x REAL NOT NULL,
			max_y REAL NOT NULL,
			max_z REAL NOT NULL,
			source_path TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_discipline ON elements(discipline)`,
		`CREATE INDEX IF NOT EXISTS idx_type_tag ON elements(type_tag)`,
		`CREATE INDEX IF NOT EXISTS idx_spatial_x ON elements(min_x, max_x)`,
		`CREATE INDEX IF NOT EXISTS idx_spatial_y ON elements(min_y, max_y)`,
		`CREATE INDEX IF NOT EXISTS idx_spatial_z ON elements(min_z, max_z)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO schema_info (key, value) VALUES ('version', ?)`,
		SchemaVersion)
	if err != nil {
		return fmt.Errorf("writing schema version: %w", err)
	}
	return nil
}

// Validate checks that the store carries a version marker, the elements
// table, and the spatial lookup indexes. It returns a *SchemaError when any
// of them is missing; there is no silent default.
func (s *Store) Validate(ctx context.Context) error {
	var version string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM schema_info WHERE key = 'version'`).Scan(&version)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return &SchemaError{Path: s.path, Reason: "missing schema version marker"}
	case err != nil:
		return &SchemaError{Path: s.path, Reason: fmt.Sprintf("missing schema_info table (%v)", err)}
	case version == "":
		return &SchemaError{Path: s.path, Reason: "empty schema version marker"}
	}

	var name string
	err = s.db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'elements'`).Scan(&name)
	if err != nil {
		return &SchemaError{Path: s.path, Reason: "missing elements table"}
	}

	var indexes int
	err = s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM sqlite_master WHERE type = 'index'
		 AND name IN ('idx_spatial_x', 'idx_spatial_y', 'idx_spatial_z')`).Scan(&indexes)
	if err != nil || indexes < 3 {
		return &SchemaError{Path: s.path, Reason: "missing spatial indexes"}
	}

	return nil
}

// UpsertBatch writes one file's record batch in a single transaction. Each
// record replaces any existing record with the same guid. An empty batch is
// a no-op.
func (s *Store) UpsertBatch(ctx context.Context, records []types.ElementRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO elements
		 (guid, discipline, type_tag, min_x, min_y, min_z, max_x, max_y, max_z, source_path)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		_, err := stmt.ExecContext(ctx,
			r.GUID, r.Discipline, r.TypeTag,
			r.BBox.MinX, r.BBox.MinY, r.BBox.MinZ,
			r.BBox.MaxX, r.BBox.MaxY, r.BBox.MaxZ,
			r.SourcePath,
		)
		if err != nil {
			return fmt.Errorf("inserting element %s: %w", r.GUID, err)
		}
	}

	return tx.Commit()
}

// Count returns the total number of element records.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM elements`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting elements: %w", err)
	}
	return n, nil
}

// Disciplines returns the distinct discipline codes present, sorted.
func (s *Store) Disciplines(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, "discipline")
}

// TypeTags returns the distinct type tags present, sorted.
func (s *Store) TypeTags(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, "type_tag")
}

func (s *Store) distinct(ctx context.Context, column string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT DISTINCT %s FROM elements ORDER BY %s`, column, column))
	if err != nil {
		return nil, fmt.Errorf("querying distinct %s: %w", column, err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", column, err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// QueryBox returns every record whose bbox intersects the query box under
// closed-interval AABB semantics: touching at a face counts. The optional
// discipline and type filters narrow the result with IN predicates; callers
// pass disciplines already normalized.
func (s *Store) QueryBox(ctx context.Context, box types.BoundingBox, disciplines, typeTags []string) ([]types.ElementRecord, error) {
	query := `SELECT guid, discipline, type_tag,
		min_x, min_y, min_z, max_x, max_y, max_z, source_path
		FROM elements
		WHERE min_x <= ? AND max_x >= ?
		  AND min_y <= ? AND max_y >= ?
		  AND min_z <= ? AND max_z >= ?`
	args := []any{
		box.MaxX, box.MinX,
		box.MaxY, box.MinY,
		box.MaxZ, box.MinZ,
	}

	if len(disciplines) > 0 {
		query += ` AND discipline IN (` + placeholders(len(disciplines)) + `)`
		for _, d := range disciplines {
			args = append(args, d)
		}
	}
	if len(typeTags) > 0 {
		query += ` AND type_tag IN (` + placeholders(len(typeTags)) + `)`
		for _, t := range typeTags {
			args = append(args, t)
		}
	}
	if s.limit > 0 {
		query += ` LIMIT ?`
		args = append(args, s.limit)
	}

	return s.queryRecords(ctx, query, args...)
}

// QueryDiscipline returns all records with the given (already normalized)
// discipline code, independent of box.
func (s *Store) QueryDiscipline(ctx context.Context, code string) ([]types.ElementRecord, error) {
	query := `SELECT guid, discipline, type_tag,
		 min_x, min_y, min_z, max_x, max_y, max_z, source_path
		 FROM elements WHERE discipline = ?`
	args := []any{code}
	if s.limit > 0 {
		query += ` LIMIT ?`
		args = append(args, s.limit)
	}
	return s.queryRecords(ctx, query, args...)
}

// GetByGUID returns the record with the exact guid, or nil when absent.
func (s *Store) GetByGUID(ctx context.Context, guid string) (*types.ElementRecord, error) {
	records, err := s.queryRecords(ctx,
		`SELECT guid, discipline, type_tag,
		 min_x, min_y, min_z, max_x, max_y, max_z, source_path
		 FROM elements WHERE guid = ?`, guid)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

func (s *Store) queryRecords(ctx context.Context, query string, args ...any) ([]types.ElementRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying elements: %w", err)
	}
	defer rows.Close()

	var records []types.ElementRecord
	for rows.Next() {
		var r types.ElementRecord
		err := rows.Scan(
			&r.GUID, &r.Discipline, &r.TypeTag,
			&r.BBox.MinX, &r.BBox.MinY, &r.BBox.MinZ,
			&r.BBox.MaxX, &r.BBox.MaxY, &r.BBox.MaxZ,
			&r.SourcePath,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning element: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
