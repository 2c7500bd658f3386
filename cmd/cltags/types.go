package main

// CLIResult is the top-level JSON envelope for every command.
type CLIResult struct {
	Command    string `json:"command"`
	Results    any    `json:"results"`
	TotalCount *int   `json:"total_count,omitempty"`
	Error      string `json:"error,omitempty"`
	Statement  string `json:"statement,omitempty"`
}

// CLITag is a JSON-friendly lookup result.
type CLITag struct {
	DeclarationID int64  `json:"declaration_id"`
	Name          string `json:"name"`
	Path          string `json:"path"`
	Line          int    `json:"line"`
	Col           int    `json:"col"`
	Text          string `json:"text"`
	RefKind       string `json:"ref_kind"`
	Kind          string `json:"kind"`
	IsDefinition  bool   `json:"is_definition"`
	IsImplicit    bool   `json:"is_implicit"`
}

// CLICounts is a JSON-friendly index summary.
type CLICounts struct {
	DB            string `json:"db"`
	SchemaVersion int    `json:"schema_version"`
	SourcePaths   int64  `json:"source_paths"`
	SourceLines   int64  `json:"source_lines"`
	SymbolNames   int64  `json:"symbol_names"`
	Declarations  int64  `json:"declarations"`
	DeclRefs      int64  `json:"decl_refs"`
}

// CLIIndexSummary reports one index run.
type CLIIndexSummary struct {
	DB             string `json:"db"`
	Records        int64  `json:"records"`
	Recorded       int64  `json:"recorded"`
	SkippedUnnamed int64  `json:"skipped_unnamed"`
	Excluded       int64  `json:"excluded"`
	Invalid        int64  `json:"invalid"`
	FactsAdded     int64  `json:"facts_added"`
	Flushes        int    `json:"flushes"`
	DurationMS     int64  `json:"duration_ms"`
}
