// Package store persists an analysis snapshot to SQLite so hosts can query
// symbols and call edges without re-indexing, and warm-start the engine on
// the next run. The database is a cache of the in-memory registries, never
// the other way around: a snapshot is always written whole-file-at-a-time,
// and a stale file is simply overwritten on the next save.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the SQLite data access layer for the snapshot tables.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database at dbPath with WAL mode enabled.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use in transactions.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Migrate creates the snapshot tables and indexes. Idempotent.
func (s *Store) Migrate() error {
	if _, err := s.db.Exec(schemaDDL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS files (
  path            TEXT PRIMARY KEY,
  language        TEXT NOT NULL,
  hash            TEXT NOT NULL,
  last_indexed    TIMESTAMP
);

CREATE TABLE IF NOT EXISTS definitions (
  symbol          TEXT PRIMARY KEY,
  file            TEXT NOT NULL REFERENCES files(path),
  name            TEXT NOT NULL,
  kind            TEXT NOT NULL,
  exported        BOOLEAN DEFAULT FALSE,
  start_row       INTEGER,
  start_col       INTEGER,
  end_row         INTEGER,
  end_col         INTEGER
);

CREATE TABLE IF NOT EXISTS import_edges (
  from_file       TEXT NOT NULL REFERENCES files(path),
  to_file         TEXT NOT NULL,
  PRIMARY KEY (from_file, to_file)
);

CREATE TABLE IF NOT EXISTS resolutions (
  file            TEXT NOT NULL REFERENCES files(path),
  start_row       INTEGER NOT NULL,
  start_col       INTEGER NOT NULL,
  name            TEXT NOT NULL,
  kind            TEXT NOT NULL,
  symbol          TEXT NOT NULL,
  caller          TEXT,
  PRIMARY KEY (file, start_row, start_col)
);

CREATE TABLE IF NOT EXISTS call_edges (
  caller          TEXT NOT NULL,
  callee          TEXT NOT NULL,
  kind            TEXT NOT NULL,
  file            TEXT NOT NULL,
  start_row       INTEGER,
  start_col       INTEGER
);

CREATE INDEX IF NOT EXISTS idx_definitions_file ON definitions(file);
CREATE INDEX IF NOT EXISTS idx_definitions_name ON definitions(name);
CREATE INDEX IF NOT EXISTS idx_definitions_kind ON definitions(kind);
CREATE INDEX IF NOT EXISTS idx_import_edges_to ON import_edges(to_file);
CREATE INDEX IF NOT EXISTS idx_resolutions_symbol ON resolutions(symbol);
CREATE INDEX IF NOT EXISTS idx_call_edges_caller ON call_edges(caller);
CREATE INDEX IF NOT EXISTS idx_call_edges_callee ON call_edges(callee);
`

// DeleteFileData transactionally removes all data for a file: its row, its
// definitions, its outgoing import edges, its resolutions, and the call
// edges sited in it.
func (s *Store) DeleteFileData(path string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, q := range []string{
		"DELETE FROM call_edges WHERE file = ?",
		"DELETE FROM resolutions WHERE file = ?",
		"DELETE FROM import_edges WHERE from_file = ?",
		"DELETE FROM definitions WHERE file = ?",
		"DELETE FROM files WHERE path = ?",
	} {
		if _, err := tx.Exec(q, path); err != nil {
			return fmt.Errorf("delete file data: %w", err)
		}
	}
	return tx.Commit()
}
