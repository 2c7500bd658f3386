// Package cltags stores source-code symbol occurrences in a normalized
// SQLite index and answers "where is this qualified name declared, defined
// and used" lookups with precise file:line:column locations.
//
// # Pipeline
//
// An external front end (a compiler AST walker) emits one [Occurrence] per
// declaration reference it sees. A [Session] ingests them:
//
//  1. Dimensions: the directory, file, source line, symbol name and
//     declaration rows are resolved through select-or-insert. Lines, names
//     and declarations are cached for the life of the session, so repeated
//     keys cost no I/O.
//
//  2. Facts: each occurrence becomes one DeclRef row, queued in memory and
//     committed in a single transaction when the batch fills or the session
//     closes. Duplicate facts are ignored, so re-ingesting the same stream
//     into a populated index changes nothing.
//
// # Usage
//
//	e, err := cltags.New("CLTAGS", cltags.WithBatchSize(50000))
//	if err != nil { ... }
//	defer e.Close()
//
//	s, err := e.NewSession()
//	if err != nil { ... }
//	for _, occ := range occurrences {
//		if err := s.RecordOccurrence(ctx, occ); err != nil { ... }
//	}
//	err = s.Close(ctx)
//
//	tags, err := e.Query().FindDeclaration(ctx, "ns::foo")
//	for _, t := range tags {
//		fmt.Println(t) // /src/x.cpp:10:3:void foo() {}
//	}
//
// # Errors
//
// A [*SchemaError] means the index file cannot be used at all. A
// [*StorageIOError] from a session aborts it: every later call returns an
// error wrapping [ErrSessionAborted] and uncommitted facts are dropped. An
// [*InvalidRecordError] rejects one record and leaves the session usable.
package cltags
