package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/jward/cltags"
)

// formatTagsText formats CLITag results as "path:line:col:text" lines.
func formatTagsText(w io.Writer, tags []CLITag) {
	for _, t := range tags {
		fmt.Fprintf(w, "%s:%d:%d:%s\n", t.Path, t.Line, t.Col, t.Text)
	}
}

// formatCountsText formats CLICounts as aligned columns.
func formatCountsText(w io.Writer, c CLICounts) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Index:\t%s\n", c.DB)
	fmt.Fprintf(tw, "Schema version:\t%d\n", c.SchemaVersion)
	fmt.Fprintf(tw, "Source paths:\t%d\n", c.SourcePaths)
	fmt.Fprintf(tw, "Source lines:\t%d\n", c.SourceLines)
	fmt.Fprintf(tw, "Symbol names:\t%d\n", c.SymbolNames)
	fmt.Fprintf(tw, "Declarations:\t%d\n", c.Declarations)
	fmt.Fprintf(tw, "Decl refs:\t%d\n", c.DeclRefs)
	tw.Flush()
}

// formatIndexSummaryText formats CLIIndexSummary as readable text.
func formatIndexSummaryText(w io.Writer, s CLIIndexSummary) {
	fmt.Fprintf(w, "Records:         %d\n", s.Records)
	fmt.Fprintf(w, "  recorded:      %d\n", s.Recorded)
	fmt.Fprintf(w, "  unnamed:       %d\n", s.SkippedUnnamed)
	fmt.Fprintf(w, "  excluded:      %d\n", s.Excluded)
	fmt.Fprintf(w, "  invalid:       %d\n", s.Invalid)
	fmt.Fprintf(w, "New facts:       %d\n", s.FactsAdded)
	fmt.Fprintf(w, "Flushes:         %d\n", s.Flushes)
}

// outputResultText dispatches to the appropriate text formatter based on the
// result type.
func outputResultText(w io.Writer, result CLIResult) error {
	switch v := result.Results.(type) {
	case []CLITag:
		formatTagsText(w, v)
	case CLICounts:
		formatCountsText(w, v)
	case CLIIndexSummary:
		formatIndexSummaryText(w, v)
	case nil:
		// No output for nil results.
	default:
		return fmt.Errorf("unsupported result type for text format: %T", v)
	}
	return nil
}

// outputResult writes result to stdout in the selected format.
func outputResult(result CLIResult) error {
	if flagFormat == "text" {
		return outputResultText(stdout, result)
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// outputError writes an error in the selected format and returns it so RunE
// can propagate it to Cobra. In JSON mode the error is written to stdout as a
// CLIResult envelope. In text mode it goes to stderr.
func outputError(command string, err error) error {
	errorHandled = true
	if flagFormat == "text" {
		printError(stderr, err)
		return err
	}
	result := CLIResult{
		Command: command,
		Error:   err.Error(),
	}
	var sio *cltags.StorageIOError
	if errors.As(err, &sio) {
		result.Statement = sio.Statement
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)
	return err
}

// validFormats lists accepted values for --format.
var validFormats = []string{"text", "json"}

// validateFormat checks that the --format flag value is recognized.
func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be %s", format, strings.Join(validFormats, " or "))
}
