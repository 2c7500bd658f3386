package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jward/cltags"
	"github.com/jward/cltags/internal/config"
	"github.com/jward/cltags/internal/logging"
)

var (
	flagDB       string
	flagConfig   string
	flagFormat   string
	flagVerbose  int
	flagLogLevel string
)

// Set by PersistentPreRunE.
var (
	cfg    *config.Config
	logger *slog.Logger
)

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// errorHandled is set by outputError so main() doesn't double-print.
var errorHandled bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errorHandled {
			printError(stderr, err)
		}
		os.Exit(1)
	}
}

// printError writes "Error: ..." and, for storage failures, the statement
// that failed.
func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %s\n", err)
	var sio *cltags.StorageIOError
	if errors.As(err, &sio) && sio.Statement != "" {
		fmt.Fprintf(w, "Statement: %s\n", sio.Statement)
	}
}

var rootCmd = &cobra.Command{
	Use:           "cltags",
	Short:         "Symbol index for C-family source code",
	Long:          "cltags stores declaration occurrences emitted by a compiler front end in a SQLite index and looks up where qualified names are declared, defined and used.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := validateFormat(flagFormat); err != nil {
			return err
		}
		return loadConfig(cmd)
	},
	// No Run; prints help by default.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "index database path (default: CLTAGS)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: .cltags.yaml in the working directory)")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format: text|json")
	rootCmd.PersistentFlags().CountVarP(&flagVerbose, "verbose", "v", "more logging (repeatable)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug|info|warn|error|silent")

	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(declCmd)
	rootCmd.AddCommand(statsCmd)
}

// loadConfig reads defaults, the config file and CLTAGS_* variables, then
// applies any flags the user set explicitly.
func loadConfig(cmd *cobra.Command) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting cwd: %w", err)
	}
	c, err := config.Load(cwd, flagConfig)
	if err != nil {
		return err
	}
	applyFlagOverrides(cmd, c)
	if err := config.Validate(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	cfg = c
	level := logging.LevelFromVerbosity(logging.LevelFromString(cfg.LogLevel), flagVerbose)
	logger = logging.New(stderr, level)
	return nil
}

// applyFlagOverrides copies flags the user changed into c. Unchanged flags
// leave file and environment values alone.
func applyFlagOverrides(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("db") {
		c.DB = flagDB
	}
	if flags.Changed("log-level") {
		c.LogLevel = flagLogLevel
	}
	if flags.Changed("batch-size") {
		c.BatchSize = flagBatchSize
	}
	if flags.Changed("cache-capacity") {
		c.CacheCapacity = flagCacheCapacity
	}
	if flags.Changed("exclude") {
		c.Exclude = append(c.Exclude, flagExclude...)
	}
	if flags.Changed("progress") {
		c.Progress = flagProgress
	}
	if flags.Changed("metrics-file") {
		c.MetricsFile = flagMetricsFile
	}
}
