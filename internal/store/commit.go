package store

import (
	"context"
	"fmt"
)

const insertDeclRef = `INSERT OR IGNORE INTO DeclRefs
	(declaration_id, ref_kind, source_line_id, colno, is_implicit, context_ref_id)
	VALUES (?, ?, ?, ?, ?, ?)`

// CommitBatch inserts every buffered DeclRef within a single transaction and
// returns how many rows were actually added (duplicates of existing facts
// are ignored). On error the transaction is rolled back, so either the whole
// batch lands or none of it does. The batch itself is not modified.
func (s *Store) CommitBatch(ctx context.Context, batch *BatchedStore) (int64, error) {
	if batch.Len() == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, ioErr("commit batch: begin", "", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertDeclRef)
	if err != nil {
		return 0, ioErr("commit batch: prepare", insertDeclRef, err)
	}
	defer stmt.Close()

	var inserted int64
	for i := range batch.Refs {
		ref := &batch.Refs[i]
		res, err := stmt.ExecContext(ctx,
			ref.DeclarationID, string(ref.RefKind), ref.SourceLineID,
			ref.Col, ref.IsImplicit, ref.ContextRefID,
		)
		if err != nil {
			return 0, ioErr(fmt.Sprintf("commit batch: fact %d of %d", i+1, batch.Len()), insertDeclRef, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, ioErr("commit batch: rows affected", insertDeclRef, err)
		}
		inserted += n
	}

	if err := tx.Commit(); err != nil {
		return 0, ioErr("commit batch: commit", "", err)
	}
	return inserted, nil
}
