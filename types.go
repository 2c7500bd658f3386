package cltags

import "github.com/jward/cltags/internal/store"

// Public aliases for the store types that appear in the Engine API. External
// consumers use these names; no conversion is needed.

type Store = store.Store
type Tag = store.Tag
type Counts = store.Counts
type DeclKind = store.DeclKind
type RefKind = store.RefKind

type SchemaError = store.SchemaError
type StorageIOError = store.StorageIOError
type InvalidRecordError = store.InvalidRecordError

const (
	KindFunction  = store.KindFunction
	KindType      = store.KindType
	KindVariable  = store.KindVariable
	KindEnum      = store.KindEnum
	KindMacro     = store.KindMacro
	KindNamespace = store.KindNamespace

	RefDefinition  = store.RefDefinition
	RefDeclaration = store.RefDeclaration
	RefUse         = store.RefUse
)

var (
	ErrSchema        = store.ErrSchema
	ErrStorageIO     = store.ErrStorageIO
	ErrInvalidRecord = store.ErrInvalidRecord
)

// SchemaVersion is the only index schema version this module reads or writes.
const SchemaVersion = store.SchemaVersion
