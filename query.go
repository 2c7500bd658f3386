package cltags

import (
	"context"
	"fmt"

	"github.com/jward/cltags/internal/store"
)

// QueryBuilder answers lookups against a committed index. It is read-only
// and builds no caches.
type QueryBuilder struct {
	store *store.Store
}

// FindDeclaration returns every recorded occurrence of the symbol whose
// qualified name is exactly fullName, in insertion order. An unknown name
// returns no tags and a nil error.
func (q *QueryBuilder) FindDeclaration(ctx context.Context, fullName string) ([]*Tag, error) {
	tags, err := q.store.FindDeclaration(ctx, fullName)
	if err != nil {
		return nil, fmt.Errorf("find declaration %q: %w", fullName, err)
	}
	return tags, nil
}

// Counts returns the schema version and the row count of every table.
func (q *QueryBuilder) Counts(ctx context.Context) (*Counts, error) {
	c, err := q.store.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("counts: %w", err)
	}
	return c, nil
}
