package cltags

import (
	"strconv"

	"github.com/jward/cltags/internal/store"
)

// Occurrence is one declaration reference reported by the front end. The
// JSON field names are the record stream's wire format.
type Occurrence struct {
	ShortName    string   `json:"short_name"`
	FullName     string   `json:"full_name"`
	Kind         DeclKind `json:"kind"`
	IsDefinition bool     `json:"is_definition"`
	IsImplicit   bool     `json:"is_implicit"`
	RefKind      RefKind  `json:"ref_kind"`
	FilePath     string   `json:"file_path"`
	DirPath      string   `json:"dir_path"`
	Line         int      `json:"line_number"`
	Col          int      `json:"column_number"`
	LineText     string   `json:"line_text"`
}

// Validate checks the fields the index requires. An empty ShortName is not
// an error: such records are skipped by the session, not rejected.
func (o *Occurrence) Validate() error {
	switch {
	case o.FullName == "":
		return &InvalidRecordError{Field: "full_name", Reason: "empty"}
	case o.FilePath == "":
		return &InvalidRecordError{Field: "file_path", Reason: "empty"}
	case o.Line < 1:
		return &InvalidRecordError{Field: "line_number", Reason: "must be >= 1"}
	case o.Col < 1:
		return &InvalidRecordError{Field: "column_number", Reason: "must be >= 1"}
	case !o.Kind.Valid():
		return &InvalidRecordError{Field: "kind", Reason: "unknown kind " + strconv.Quote(string(o.Kind))}
	case !o.RefKind.Valid():
		return &InvalidRecordError{Field: "ref_kind", Reason: "unknown ref kind " + strconv.Quote(string(o.RefKind))}
	}
	return nil
}

// splitPath returns the directory row and the pathname stored beneath it.
func (o *Occurrence) splitPath() (dir, name string) {
	return store.SplitPath(o.FilePath, o.DirPath)
}
