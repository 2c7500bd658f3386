package store

import "fmt"

// DeclKind is the closed set of declaration kinds a front end may report.
type DeclKind string

const (
	KindFunction  DeclKind = "function"
	KindType      DeclKind = "type"
	KindVariable  DeclKind = "variable"
	KindEnum      DeclKind = "enum"
	KindMacro     DeclKind = "macro"
	KindNamespace DeclKind = "namespace"
)

// Valid reports whether k is one of the known declaration kinds.
func (k DeclKind) Valid() bool {
	switch k {
	case KindFunction, KindType, KindVariable, KindEnum, KindMacro, KindNamespace:
		return true
	}
	return false
}

// RefKind says how an occurrence refers to its declaration.
type RefKind string

const (
	RefDefinition  RefKind = "definition"
	RefDeclaration RefKind = "declaration"
	RefUse         RefKind = "use"
)

// Valid reports whether k is one of the known reference kinds.
func (k RefKind) Valid() bool {
	switch k {
	case RefDefinition, RefDeclaration, RefUse:
		return true
	}
	return false
}

// Dimension rows

type SourcePath struct {
	ID        int64
	DirnameID *int64 // nil for a directory (root) row
	Pathname  string
}

type SourceLine struct {
	ID           int64
	SourcePathID int64
	Lineno       int
	Text         string
}

type SymbolName struct {
	ID        int64
	ShortName string
	FullName  string
}

type Declaration struct {
	ID           int64
	SymbolNameID int64
	Kind         DeclKind
	IsDefinition bool
	IsImplicit   bool
}

// Fact rows

type DeclRef struct {
	ID            int64
	DeclarationID int64
	RefKind       RefKind
	SourceLineID  int64
	Col           int
	IsImplicit    bool
	ContextRefID  *int64 // reserved; the ingestion pipeline never sets it
}

// Tag is one resolved occurrence returned by FindDeclaration.
type Tag struct {
	DeclarationID int64
	FullName      string
	Path          string
	Line          int
	Col           int
	Text          string
	RefKind       RefKind
	Kind          DeclKind
	IsDefinition  bool
	IsImplicit    bool
}

// String formats the tag as path:line:col:text, the line format editors
// consume. Text is written verbatim.
func (t *Tag) String() string {
	return fmt.Sprintf("%s:%d:%d:%s", t.Path, t.Line, t.Col, t.Text)
}

// Counts summarises the contents of an index.
type Counts struct {
	SchemaVersion int
	SourcePaths   int64
	SourceLines   int64
	SymbolNames   int64
	Declarations  int64
	DeclRefs      int64
}
