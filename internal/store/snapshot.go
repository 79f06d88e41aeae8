package store

import (
	"database/sql"
	"fmt"
	"time"
)

// FileRow is one indexed file in the snapshot.
type FileRow struct {
	Path        string
	Language    string
	Hash        string
	LastIndexed time.Time
}

// DefRow is one definition in the snapshot.
type DefRow struct {
	Symbol   string
	File     string
	Name     string
	Kind     string
	Exported bool
	StartRow int
	StartCol int
	EndRow   int
	EndCol   int
}

// ResolutionRow is one resolved reference site.
type ResolutionRow struct {
	File     string
	StartRow int
	StartCol int
	Name     string
	Kind     string
	Symbol   string
	Caller   string
}

// CallEdgeRow is one call-graph edge with its site.
type CallEdgeRow struct {
	Caller   string
	Callee   string
	Kind     string
	File     string
	StartRow int
	StartCol int
}

// SaveFile replaces one file's snapshot data in a single transaction: the
// file row, its definitions, its outgoing import edges, and its resolutions.
// Call edges are saved separately because they span files.
func (s *Store) SaveFile(file FileRow, defs []DefRow, deps []string, resolutions []ResolutionRow) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, q := range []string{
		"DELETE FROM resolutions WHERE file = ?",
		"DELETE FROM import_edges WHERE from_file = ?",
		"DELETE FROM definitions WHERE file = ?",
	} {
		if _, err := tx.Exec(q, file.Path); err != nil {
			return fmt.Errorf("clear file data: %w", err)
		}
	}

	if _, err := tx.Exec(
		"INSERT INTO files (path, language, hash, last_indexed) VALUES (?, ?, ?, ?) "+
			"ON CONFLICT(path) DO UPDATE SET language = excluded.language, hash = excluded.hash, last_indexed = excluded.last_indexed",
		file.Path, file.Language, file.Hash, file.LastIndexed,
	); err != nil {
		return fmt.Errorf("upsert file: %w", err)
	}

	for _, d := range defs {
		if _, err := tx.Exec(
			"INSERT INTO definitions (symbol, file, name, kind, exported, start_row, start_col, end_row, end_col) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
			d.Symbol, d.File, d.Name, d.Kind, d.Exported, d.StartRow, d.StartCol, d.EndRow, d.EndCol,
		); err != nil {
			return fmt.Errorf("insert definition %s: %w", d.Symbol, err)
		}
	}

	for _, dep := range deps {
		if _, err := tx.Exec(
			"INSERT OR IGNORE INTO import_edges (from_file, to_file) VALUES (?, ?)",
			file.Path, dep,
		); err != nil {
			return fmt.Errorf("insert import edge: %w", err)
		}
	}

	for _, r := range resolutions {
		if _, err := tx.Exec(
			"INSERT INTO resolutions (file, start_row, start_col, name, kind, symbol, caller) VALUES (?, ?, ?, ?, ?, ?, ?)",
			r.File, r.StartRow, r.StartCol, r.Name, r.Kind, r.Symbol, r.Caller,
		); err != nil {
			return fmt.Errorf("insert resolution: %w", err)
		}
	}

	return tx.Commit()
}

// ReplaceCallEdges replaces the entire call_edges table. The call graph is
// always rebuilt whole, so the snapshot mirrors that.
func (s *Store) ReplaceCallEdges(edges []CallEdgeRow) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM call_edges"); err != nil {
		return fmt.Errorf("clear call edges: %w", err)
	}
	for _, e := range edges {
		if _, err := tx.Exec(
			"INSERT INTO call_edges (caller, callee, kind, file, start_row, start_col) VALUES (?, ?, ?, ?, ?, ?)",
			e.Caller, e.Callee, e.Kind, e.File, e.StartRow, e.StartCol,
		); err != nil {
			return fmt.Errorf("insert call edge: %w", err)
		}
	}
	return tx.Commit()
}

// Files returns every file row, ordered by path.
func (s *Store) Files() ([]FileRow, error) {
	rows, err := s.db.Query("SELECT path, language, hash, last_indexed FROM files ORDER BY path")
	if err != nil {
		return nil, fmt.Errorf("query files: %w", err)
	}
	defer rows.Close()

	var out []FileRow
	for rows.Next() {
		var f FileRow
		var ts sql.NullTime
		if err := rows.Scan(&f.Path, &f.Language, &f.Hash, &ts); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		if ts.Valid {
			f.LastIndexed = ts.Time
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// FileHash returns the stored content hash for a path.
func (s *Store) FileHash(path string) (string, bool, error) {
	var hash string
	err := s.db.QueryRow("SELECT hash FROM files WHERE path = ?", path).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query file hash: %w", err)
	}
	return hash, true, nil
}

// DefinitionsByName returns definitions matching a name, ordered by symbol.
func (s *Store) DefinitionsByName(name string) ([]DefRow, error) {
	return s.queryDefs("SELECT symbol, file, name, kind, exported, start_row, start_col, end_row, end_col FROM definitions WHERE name = ? ORDER BY symbol", name)
}

// DefinitionsByFile returns a file's definitions, ordered by position.
func (s *Store) DefinitionsByFile(path string) ([]DefRow, error) {
	return s.queryDefs("SELECT symbol, file, name, kind, exported, start_row, start_col, end_row, end_col FROM definitions WHERE file = ? ORDER BY start_row, start_col", path)
}

func (s *Store) queryDefs(q string, args ...any) ([]DefRow, error) {
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("query definitions: %w", err)
	}
	defer rows.Close()

	var out []DefRow
	for rows.Next() {
		var d DefRow
		if err := rows.Scan(&d.Symbol, &d.File, &d.Name, &d.Kind, &d.Exported, &d.StartRow, &d.StartCol, &d.EndRow, &d.EndCol); err != nil {
			return nil, fmt.Errorf("scan definition: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// CallersOf returns the call edges arriving at a symbol.
func (s *Store) CallersOf(symbol string) ([]CallEdgeRow, error) {
	return s.queryCallEdges("SELECT caller, callee, kind, file, start_row, start_col FROM call_edges WHERE callee = ? ORDER BY file, start_row, start_col", symbol)
}

// CalleesOf returns the call edges leaving a symbol.
func (s *Store) CalleesOf(symbol string) ([]CallEdgeRow, error) {
	return s.queryCallEdges("SELECT caller, callee, kind, file, start_row, start_col FROM call_edges WHERE caller = ? ORDER BY file, start_row, start_col", symbol)
}

func (s *Store) queryCallEdges(q string, args ...any) ([]CallEdgeRow, error) {
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("query call edges: %w", err)
	}
	defer rows.Close()

	var out []CallEdgeRow
	for rows.Next() {
		var e CallEdgeRow
		if err := rows.Scan(&e.Caller, &e.Callee, &e.Kind, &e.File, &e.StartRow, &e.StartCol); err != nil {
			return nil, fmt.Errorf("scan call edge: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// CallEdges returns every call edge, ordered by site.
func (s *Store) CallEdges() ([]CallEdgeRow, error) {
	return s.queryCallEdges("SELECT caller, callee, kind, file, start_row, start_col FROM call_edges ORDER BY file, start_row, start_col")
}

// EntryPoints returns the callable definitions no call edge arrives at,
// ordered by symbol.
func (s *Store) EntryPoints() ([]DefRow, error) {
	return s.queryDefs(`SELECT symbol, file, name, kind, exported, start_row, start_col, end_row, end_col
FROM definitions
WHERE kind IN ('function', 'method', 'constructor')
  AND symbol NOT IN (SELECT callee FROM call_edges)
ORDER BY symbol`)
}

// ImportEdges returns every (from_file, to_file) import edge.
func (s *Store) ImportEdges() (map[string][]string, error) {
	rows, err := s.db.Query("SELECT from_file, to_file FROM import_edges ORDER BY from_file, to_file")
	if err != nil {
		return nil, fmt.Errorf("query import edges: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var from, to string
		if err := rows.Scan(&from, &to); err != nil {
			return nil, fmt.Errorf("scan import edge: %w", err)
		}
		out[from] = append(out[from], to)
	}
	return out, rows.Err()
}

// Counts reports snapshot row counts for the stats surface.
func (s *Store) Counts() (files, defs, resolutions, callEdges int, err error) {
	for _, c := range []struct {
		table string
		dst   *int
	}{
		{"files", &files},
		{"definitions", &defs},
		{"resolutions", &resolutions},
		{"call_edges", &callEdges},
	} {
		if err = s.db.QueryRow("SELECT COUNT(*) FROM " + c.table).Scan(c.dst); err != nil {
			err = fmt.Errorf("count %s: %w", c.table, err)
			return
		}
	}
	return
}

// Dependents returns the files importing from path, per the stored edges.
func (s *Store) Dependents(path string) ([]string, error) {
	rows, err := s.db.Query("SELECT from_file FROM import_edges WHERE to_file = ? ORDER BY from_file", path)
	if err != nil {
		return nil, fmt.Errorf("query dependents: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var f string
		if err := rows.Scan(&f); err != nil {
			return nil, fmt.Errorf("scan dependent: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
