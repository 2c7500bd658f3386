package store

import (
	"context"
	"database/sql"
)

const findDeclarationSQL = `
SELECT
    Declarations.id,
    SymbolNames.full_name,
    Dirs.pathname,
    Files.pathname,
    SourceLines.lineno,
    DeclRefs.colno,
    SourceLines.text,
    DeclRefs.ref_kind,
    Declarations.kind,
    Declarations.is_definition,
    Declarations.is_implicit
FROM DeclRefs
JOIN Declarations ON DeclRefs.declaration_id = Declarations.id
JOIN SymbolNames ON Declarations.symbol_name_id = SymbolNames.id
JOIN SourceLines ON DeclRefs.source_line_id = SourceLines.id
JOIN SourcePaths AS Files ON SourceLines.source_path_id = Files.id
LEFT JOIN SourcePaths AS Dirs ON Files.dirname_id = Dirs.id
WHERE SymbolNames.full_name = ?
ORDER BY DeclRefs.id`

// FindDeclaration returns every recorded occurrence of the symbol whose
// qualified name is fullName. An unknown name yields no tags and no error.
// Results are ordered by fact insertion, which is stable for an unchanged
// index.
func (s *Store) FindDeclaration(ctx context.Context, fullName string) ([]*Tag, error) {
	rows, err := s.db.QueryContext(ctx, findDeclarationSQL, fullName)
	if err != nil {
		return nil, ioErr("find declaration", findDeclarationSQL, err)
	}
	defer rows.Close()

	var tags []*Tag
	for rows.Next() {
		t := &Tag{}
		var dir sql.NullString
		var file, refKind, kind string
		if err := rows.Scan(
			&t.DeclarationID, &t.FullName, &dir, &file,
			&t.Line, &t.Col, &t.Text, &refKind, &kind,
			&t.IsDefinition, &t.IsImplicit,
		); err != nil {
			return nil, ioErr("find declaration: scan", findDeclarationSQL, err)
		}
		t.Path = file
		if dir.Valid {
			t.Path = JoinPath(dir.String, file)
		}
		t.RefKind = RefKind(refKind)
		t.Kind = DeclKind(kind)
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, ioErr("find declaration: rows", findDeclarationSQL, err)
	}
	return tags, nil
}
