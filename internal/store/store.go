package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SchemaVersion is the version recorded in SchemaInfo by this build. Index
// files carrying any other version are refused.
const SchemaVersion = 1

// requiredTables lists every table an index file must contain.
var requiredTables = []string{
	"SourcePaths", "SourceLines", "SymbolNames", "Declarations", "DeclRefs", "SchemaInfo",
}

// Store is the SQLite data access layer for the six index tables.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens the index at dbPath. A file without tables (including one that
// does not exist yet) gets the full schema in a single transaction; an
// existing schema is verified and left untouched.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, ioErr("open database", "", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, classifyOpenError(dbPath, "ping database", err)
	}
	s := &Store{db: db, path: dbPath}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the file the store was opened from.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) ensureSchema() error {
	var tables int
	err := s.db.QueryRow("SELECT count(*) FROM sqlite_master WHERE type = 'table'").Scan(&tables)
	if err != nil {
		return classifyOpenError(s.path, "inspect schema", err)
	}
	if tables == 0 {
		return s.createSchema()
	}
	return s.checkSchema()
}

func (s *Store) createSchema() error {
	tx, err := s.db.Begin()
	if err != nil {
		return ioErr("create schema: begin", "", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(schemaDDL); err != nil {
		return ioErr("create schema", schemaDDL, err)
	}
	const insertVersion = "INSERT INTO SchemaInfo (version) VALUES (?)"
	if _, err := tx.Exec(insertVersion, SchemaVersion); err != nil {
		return ioErr("create schema: record version", insertVersion, err)
	}
	if err := tx.Commit(); err != nil {
		return ioErr("create schema: commit", "", err)
	}
	return nil
}

func (s *Store) checkSchema() error {
	for _, table := range requiredTables {
		var n int
		err := s.db.QueryRow(
			"SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table,
		).Scan(&n)
		if err != nil {
			return classifyOpenError(s.path, "inspect schema", err)
		}
		if n == 0 {
			if table == "SchemaInfo" {
				return &SchemaError{Path: s.path, Reason: "unversioned index: no SchemaInfo table"}
			}
			return &SchemaError{Path: s.path, Reason: fmt.Sprintf("missing table %s", table)}
		}
	}

	var version sql.NullInt64
	err := s.db.QueryRow("SELECT version FROM SchemaInfo LIMIT 1").Scan(&version)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !version.Valid) {
		return &SchemaError{Path: s.path, Reason: "unversioned index: SchemaInfo has no version"}
	}
	if err != nil {
		return classifyOpenError(s.path, "read schema version", err)
	}
	if version.Int64 != SchemaVersion {
		return &SchemaError{
			Path:   s.path,
			Reason: fmt.Sprintf("schema version %d, this build reads version %d", version.Int64, SchemaVersion),
			Found:  int(version.Int64),
		}
	}
	return nil
}

// Version returns the schema version recorded in the index.
func (s *Store) Version(ctx context.Context) (int, error) {
	var v int
	const q = "SELECT version FROM SchemaInfo LIMIT 1"
	if err := s.db.QueryRowContext(ctx, q).Scan(&v); err != nil {
		return 0, ioErr("schema version", q, err)
	}
	return v, nil
}

// Counts returns the schema version and the row count of every entity table.
func (s *Store) Counts(ctx context.Context) (*Counts, error) {
	v, err := s.Version(ctx)
	if err != nil {
		return nil, err
	}
	c := &Counts{SchemaVersion: v}
	for _, t := range []struct {
		table string
		dst   *int64
	}{
		{"SourcePaths", &c.SourcePaths},
		{"SourceLines", &c.SourceLines},
		{"SymbolNames", &c.SymbolNames},
		{"Declarations", &c.Declarations},
		{"DeclRefs", &c.DeclRefs},
	} {
		q := "SELECT count(*) FROM " + t.table
		if err := s.db.QueryRowContext(ctx, q).Scan(t.dst); err != nil {
			return nil, ioErr("count "+t.table, q, err)
		}
	}
	return c, nil
}

// The unique indexes back the dedup guarantees: the in-memory caches sit in
// front of them, never instead of them. SourcePaths folds NULL dirname_id into
// one bucket because SQLite treats NULLs as distinct in unique indexes.
const schemaDDL = `
CREATE TABLE SourcePaths (
  id              INTEGER PRIMARY KEY,
  dirname_id      INTEGER REFERENCES SourcePaths(id),
  pathname        TEXT NOT NULL
);

CREATE TABLE SourceLines (
  id              INTEGER PRIMARY KEY,
  source_path_id  INTEGER NOT NULL REFERENCES SourcePaths(id),
  lineno          INTEGER NOT NULL CHECK (lineno >= 1),
  text            TEXT NOT NULL
);

CREATE TABLE SymbolNames (
  id              INTEGER PRIMARY KEY,
  short_name      TEXT NOT NULL,
  full_name       TEXT NOT NULL
);

CREATE TABLE Declarations (
  id              INTEGER PRIMARY KEY,
  symbol_name_id  INTEGER NOT NULL REFERENCES SymbolNames(id),
  kind            TEXT NOT NULL
                  CHECK (kind IN ('function', 'type', 'variable', 'enum', 'macro', 'namespace')),
  is_definition   BOOLEAN NOT NULL,
  is_implicit     BOOLEAN NOT NULL
);

CREATE TABLE DeclRefs (
  id              INTEGER PRIMARY KEY,
  declaration_id  INTEGER NOT NULL REFERENCES Declarations(id),
  ref_kind        TEXT NOT NULL CHECK (ref_kind IN ('definition', 'declaration', 'use')),
  source_line_id  INTEGER NOT NULL REFERENCES SourceLines(id),
  colno           INTEGER NOT NULL CHECK (colno >= 1),
  is_implicit     BOOLEAN NOT NULL,
  context_ref_id  INTEGER REFERENCES DeclRefs(id)
);

CREATE TABLE SchemaInfo (
  version         INTEGER NOT NULL
);

-- Indexes

CREATE INDEX SourcePaths_pathname_idx ON SourcePaths (pathname);
CREATE UNIQUE INDEX SourcePaths_all_idx ON SourcePaths (IFNULL(dirname_id, 0), pathname);
CREATE UNIQUE INDEX SourceLines_all_idx ON SourceLines (source_path_id, lineno);
CREATE INDEX SymbolNames_full_name_idx ON SymbolNames (full_name);
CREATE UNIQUE INDEX SymbolNames_all_idx ON SymbolNames (short_name, full_name);
CREATE INDEX Declarations_kind_idx ON Declarations (kind);
CREATE UNIQUE INDEX Declarations_all_idx ON Declarations (symbol_name_id, kind, is_definition, is_implicit);
CREATE UNIQUE INDEX DeclRefs_all_idx ON DeclRefs (declaration_id, ref_kind, source_line_id, colno, is_implicit);
CREATE INDEX DeclRefs_line_col_idx ON DeclRefs (source_line_id, colno);
CREATE INDEX DeclRefs_ref_kind_idx ON DeclRefs (ref_kind);
`
