package store

import (
	"context"
	"database/sql"
	"errors"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// selectOrInsert returns the id of the row matched by selectSQL, inserting it
// with insertSQL first when no row matches. Dimension rows are written
// immediately (autocommit) so later cache hits always point at real rows.
func selectOrInsert(ctx context.Context, q querier, op, selectSQL string, selectArgs []any, insertSQL string, insertArgs []any) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, selectSQL, selectArgs...).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, ioErr(op+": select", selectSQL, err)
	}
	res, err := q.ExecContext(ctx, insertSQL, insertArgs...)
	if err != nil {
		return 0, ioErr(op+": insert", insertSQL, err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, ioErr(op+": last insert id", insertSQL, err)
	}
	return id, nil
}

// --- SourcePaths ---

const (
	selectSourcePath = "SELECT id FROM SourcePaths WHERE dirname_id IS ? AND pathname = ?"
	insertSourcePath = "INSERT INTO SourcePaths (dirname_id, pathname) VALUES (?, ?)"
)

// ResolveSourcePath returns the id of the (dirname_id, pathname) row,
// creating it if needed, and stores it in p.ID.
func (s *Store) ResolveSourcePath(ctx context.Context, p *SourcePath) (int64, error) {
	var dirname sql.NullInt64
	if p.DirnameID != nil {
		dirname = sql.NullInt64{Int64: *p.DirnameID, Valid: true}
	}
	id, err := selectOrInsert(ctx, s.db, "resolve source path",
		selectSourcePath, []any{dirname, p.Pathname},
		insertSourcePath, []any{dirname, p.Pathname},
	)
	if err != nil {
		return 0, err
	}
	p.ID = id
	return id, nil
}

// --- SourceLines ---

const (
	selectSourceLine = "SELECT id FROM SourceLines WHERE source_path_id = ? AND lineno = ?"
	insertSourceLine = "INSERT INTO SourceLines (source_path_id, lineno, text) VALUES (?, ?, ?)"
)

// ResolveSourceLine returns the id of the (source_path_id, lineno) row. The
// text is only written when the row is created; an existing row keeps the
// text it was first seen with.
func (s *Store) ResolveSourceLine(ctx context.Context, l *SourceLine) (int64, error) {
	id, err := selectOrInsert(ctx, s.db, "resolve source line",
		selectSourceLine, []any{l.SourcePathID, l.Lineno},
		insertSourceLine, []any{l.SourcePathID, l.Lineno, l.Text},
	)
	if err != nil {
		return 0, err
	}
	l.ID = id
	return id, nil
}

// SourceLineText returns the stored text of a source line.
func (s *Store) SourceLineText(ctx context.Context, id int64) (string, error) {
	const q = "SELECT text FROM SourceLines WHERE id = ?"
	var text string
	if err := s.db.QueryRowContext(ctx, q, id).Scan(&text); err != nil {
		return "", ioErr("source line text", q, err)
	}
	return text, nil
}

// --- SymbolNames ---

const (
	selectSymbolName = "SELECT id FROM SymbolNames WHERE short_name = ? AND full_name = ?"
	insertSymbolName = "INSERT INTO SymbolNames (short_name, full_name) VALUES (?, ?)"
)

// ResolveSymbolName returns the id of the (short_name, full_name) row,
// creating it if needed.
func (s *Store) ResolveSymbolName(ctx context.Context, n *SymbolName) (int64, error) {
	id, err := selectOrInsert(ctx, s.db, "resolve symbol name",
		selectSymbolName, []any{n.ShortName, n.FullName},
		insertSymbolName, []any{n.ShortName, n.FullName},
	)
	if err != nil {
		return 0, err
	}
	n.ID = id
	return id, nil
}

// --- Declarations ---

const (
	selectDeclaration = `SELECT id FROM Declarations
		WHERE symbol_name_id = ? AND kind = ? AND is_definition = ? AND is_implicit = ?`
	insertDeclaration = `INSERT INTO Declarations (symbol_name_id, kind, is_definition, is_implicit)
		VALUES (?, ?, ?, ?)`
)

// ResolveDeclaration returns the id of the declaration identity
// (symbol, kind, is_definition, is_implicit), creating it if needed.
func (s *Store) ResolveDeclaration(ctx context.Context, d *Declaration) (int64, error) {
	args := []any{d.SymbolNameID, string(d.Kind), d.IsDefinition, d.IsImplicit}
	id, err := selectOrInsert(ctx, s.db, "resolve declaration",
		selectDeclaration, args,
		insertDeclaration, args,
	)
	if err != nil {
		return 0, err
	}
	d.ID = id
	return id, nil
}
