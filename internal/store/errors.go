package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
)

var (
	// ErrSchema is matched by every *SchemaError.
	ErrSchema = errors.New("incompatible index schema")
	// ErrStorageIO is matched by every *StorageIOError.
	ErrStorageIO = errors.New("storage I/O failure")
	// ErrInvalidRecord is matched by every *InvalidRecordError.
	ErrInvalidRecord = errors.New("invalid occurrence record")
)

// SchemaError reports an index file whose schema cannot be used: it is
// corrupt, not a SQLite database, unversioned, or carries another version.
type SchemaError struct {
	Path   string
	Reason string
	Found  int // schema version found, 0 when unknown
	Err    error
}

func (e *SchemaError) Error() string {
	msg := fmt.Sprintf("schema error in %s: %s", e.Path, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SchemaError) Unwrap() error { return e.Err }

func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

// StorageIOError reports a failed call into the storage engine. Statement
// holds the SQL that failed, when there is one.
type StorageIOError struct {
	Op        string
	Statement string
	Err       error
}

func (e *StorageIOError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageIOError) Unwrap() error { return e.Err }

func (e *StorageIOError) Is(target error) bool { return target == ErrStorageIO }

// InvalidRecordError rejects a malformed occurrence record.
type InvalidRecordError struct {
	Field  string
	Reason string
}

func (e *InvalidRecordError) Error() string {
	return fmt.Sprintf("invalid record: %s: %s", e.Field, e.Reason)
}

func (e *InvalidRecordError) Is(target error) bool { return target == ErrInvalidRecord }

func ioErr(op, stmt string, err error) error {
	return &StorageIOError{Op: op, Statement: stmt, Err: err}
}

// classifyOpenError maps errors raised while opening or inspecting an index
// file. A file SQLite refuses to read as a database is a schema problem;
// anything else is I/O.
func classifyOpenError(path, op string, err error) error {
	var se sqlite3.Error
	if errors.As(err, &se) && (se.Code == sqlite3.ErrNotADB || se.Code == sqlite3.ErrCorrupt) {
		return &SchemaError{Path: path, Reason: op, Err: err}
	}
	if msg := err.Error(); strings.Contains(msg, "not a database") || strings.Contains(msg, "malformed") {
		return &SchemaError{Path: path, Reason: op, Err: err}
	}
	return ioErr(op, "", err)
}
