package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jward/cltags"
)

var declCmd = &cobra.Command{
	Use:   "decl <qualified-name>",
	Short: "Print every declaration, definition and use of a qualified name",
	Long: `Looks up the exact qualified name (e.g. ns::Class::method) and prints one
path:line:column:source-text line per recorded occurrence, in the order they
were ingested. Nothing is printed when the name is unknown.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := openEngine()
		if err != nil {
			return outputError("decl", err)
		}
		defer engine.Close()

		tags, err := engine.Query().FindDeclaration(context.Background(), args[0])
		if err != nil {
			return outputError("decl", err)
		}
		total := len(tags)
		return outputResult(CLIResult{
			Command:    "decl",
			Results:    toCLITags(tags),
			TotalCount: &total,
		})
	},
}

// openEngine opens an existing index for reading. Lookups never create one.
func openEngine() (*cltags.Engine, error) {
	if _, err := os.Stat(cfg.DB); os.IsNotExist(err) {
		return nil, fmt.Errorf("index not found: %s (run 'cltags index' first)", cfg.DB)
	}
	return cltags.New(cfg.DB, cltags.WithLogger(logger))
}

func toCLITags(tags []*cltags.Tag) []CLITag {
	out := make([]CLITag, 0, len(tags))
	for _, t := range tags {
		out = append(out, CLITag{
			DeclarationID: t.DeclarationID,
			Name:          t.FullName,
			Path:          t.Path,
			Line:          t.Line,
			Col:           t.Col,
			Text:          t.Text,
			RefKind:       string(t.RefKind),
			Kind:          string(t.Kind),
			IsDefinition:  t.IsDefinition,
			IsImplicit:    t.IsImplicit,
		})
	}
	return out
}
