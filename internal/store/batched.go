package store

// BatchedStore buffers DeclRef facts in memory until CommitBatch writes them.
// Dimension rows are never buffered: only facts are numerous enough to be
// worth batching, and the caches must only ever point at committed rows.
//
// Not safe for concurrent use; ingestion has a single writer.
type BatchedStore struct {
	Refs []DeclRef
}

// NewBatchedStore creates an empty batch with room for sizeHint facts.
func NewBatchedStore(sizeHint int) *BatchedStore {
	if sizeHint < 0 {
		sizeHint = 0
	}
	return &BatchedStore{Refs: make([]DeclRef, 0, min(sizeHint, 1<<16))}
}

// InsertDeclRef queues a fact. It is not visible to queries until committed.
func (b *BatchedStore) InsertDeclRef(ref *DeclRef) {
	b.Refs = append(b.Refs, *ref)
}

// Len returns the number of queued facts.
func (b *BatchedStore) Len() int {
	return len(b.Refs)
}

// Reset drops every queued fact, keeping the allocated capacity.
func (b *BatchedStore) Reset() {
	clear(b.Refs)
	b.Refs = b.Refs[:0]
}
