package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/jward/cltags"
	"github.com/jward/cltags/internal/metrics"
	"github.com/jward/cltags/internal/recordio"
)

var (
	flagForce         bool
	flagBatchSize     int
	flagCacheCapacity int
	flagExclude       []string
	flagKeepGoing     bool
	flagProgress      bool
	flagMetricsFile   string
)

var indexCmd = &cobra.Command{
	Use:   "index [records...]",
	Short: "Ingest occurrence records into the index",
	Long: `Reads JSON Lines occurrence records (one object per line) and adds them to the
index. Files ending in .gz or .zst are decompressed. With no arguments, or
with "-", records are read from stdin. Re-ingesting records already in the
index adds nothing.`,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&flagForce, "force", false, "delete the index and rebuild it from scratch")
	indexCmd.Flags().IntVar(&flagBatchSize, "batch-size", cltags.DefaultBatchSize, "facts per commit (0 = commit once at the end)")
	indexCmd.Flags().IntVar(&flagCacheCapacity, "cache-capacity", 0, "max entries per dimension cache (0 = unbounded)")
	indexCmd.Flags().StringSliceVar(&flagExclude, "exclude", nil, "skip records whose file path matches this glob (repeatable)")
	indexCmd.Flags().BoolVar(&flagKeepGoing, "keep-going", false, "log and skip invalid records instead of stopping")
	indexCmd.Flags().BoolVar(&flagProgress, "progress", false, "show a progress spinner on stderr")
	indexCmd.Flags().StringVar(&flagMetricsFile, "metrics-file", "", "write Prometheus metrics to this file when done")
}

func runIndex(cmd *cobra.Command, args []string) error {
	start := time.Now()
	inputs := args
	if len(inputs) == 0 {
		inputs = []string{recordio.Stdin}
	}

	if flagForce {
		if err := removeIndex(cfg.DB); err != nil {
			return fmt.Errorf("removing index for --force: %w", err)
		}
		logger.Info("cleared index", "db", cfg.DB)
	}

	var m *metrics.Ingest
	if cfg.MetricsFile != "" {
		m = metrics.NewIngest()
	}

	opts := []cltags.Option{
		cltags.WithBatchSize(cfg.BatchSize),
		cltags.WithCacheCapacity(cfg.CacheCapacity),
		cltags.WithExcludes(cfg.Exclude...),
		cltags.WithLogger(logger),
		cltags.WithMetrics(m),
	}
	var bar *progressbar.ProgressBar
	if cfg.Progress {
		bar = newProgressBar()
		opts = append(opts, cltags.WithProgress(cltags.DefaultProgressEvery, func(st cltags.SessionStats) {
			_ = bar.Set64(st.Seen)
		}))
	}

	engine, err := cltags.New(cfg.DB, opts...)
	if err != nil {
		return outputError("index", err)
	}
	defer engine.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	session, err := engine.NewSession()
	if err != nil {
		return outputError("index", err)
	}

	var ingestErr error
	for _, in := range inputs {
		if ingestErr = session.IngestFile(ctx, in, flagKeepGoing); ingestErr != nil {
			break
		}
	}
	// Records accepted before a failure are still committed unless the
	// session was aborted.
	closeErr := session.Close(context.Background())
	if bar != nil {
		_ = bar.Finish()
		fmt.Fprintln(stderr)
	}
	if m != nil {
		if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
			logger.Warn("writing metrics file", "path", cfg.MetricsFile, "error", err)
		}
	}
	if ingestErr != nil {
		if closeErr != nil && !errors.Is(ingestErr, cltags.ErrSessionAborted) {
			logger.Error("closing session", "error", closeErr)
		}
		return outputError("index", ingestErr)
	}
	if closeErr != nil {
		return outputError("index", closeErr)
	}

	st := session.Stats()
	summary := CLIIndexSummary{
		DB:             cfg.DB,
		Records:        st.Seen,
		Recorded:       st.Recorded,
		SkippedUnnamed: st.SkippedUnnamed,
		Excluded:       st.Excluded,
		Invalid:        st.Invalid,
		FactsAdded:     st.Inserted,
		Flushes:        st.Flushes,
		DurationMS:     time.Since(start).Milliseconds(),
	}
	if flagFormat == "json" {
		return outputResult(CLIResult{Command: "index", Results: summary})
	}
	// Text summaries go to stderr so stdout stays clean for pipelines.
	formatIndexSummaryText(stderr, summary)
	fmt.Fprintf(stderr, "Indexed %s in %s\n", cfg.DB, time.Since(start).Round(time.Millisecond))
	return nil
}

// removeIndex deletes the index file and its WAL side files.
func removeIndex(db string) error {
	for _, p := range []string{db, db + "-wal", db + "-shm"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

func newProgressBar() *progressbar.ProgressBar {
	return progressbar.NewOptions64(-1,
		progressbar.OptionSetWriter(stderr),
		progressbar.OptionSetDescription("Ingesting records"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("rec/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSpinnerType(14),
	)
}
