package store

import "context"

// DataStore is the interface the ingestion pipeline writes through. *Store
// implements it against SQLite; tests substitute failing implementations.
type DataStore interface {
	// Dimension resolution: select-or-insert, each returns the row id.
	ResolveSourcePath(ctx context.Context, p *SourcePath) (int64, error)
	ResolveSourceLine(ctx context.Context, l *SourceLine) (int64, error)
	ResolveSymbolName(ctx context.Context, n *SymbolName) (int64, error)
	ResolveDeclaration(ctx context.Context, d *Declaration) (int64, error)

	// CommitBatch writes all buffered facts in one transaction.
	CommitBatch(ctx context.Context, batch *BatchedStore) (int64, error)
}

// Compile-time check: *Store satisfies DataStore.
var _ DataStore = (*Store)(nil)
