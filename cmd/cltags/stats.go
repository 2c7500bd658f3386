package main

import (
	"context"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the schema version and row counts of the index",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := openEngine()
		if err != nil {
			return outputError("stats", err)
		}
		defer engine.Close()

		c, err := engine.Query().Counts(context.Background())
		if err != nil {
			return outputError("stats", err)
		}
		return outputResult(CLIResult{
			Command: "stats",
			Results: CLICounts{
				DB:            cfg.DB,
				SchemaVersion: c.SchemaVersion,
				SourcePaths:   c.SourcePaths,
				SourceLines:   c.SourceLines,
				SymbolNames:   c.SymbolNames,
				Declarations:  c.Declarations,
				DeclRefs:      c.DeclRefs,
			},
		})
	},
}
