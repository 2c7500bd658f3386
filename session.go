package cltags

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gobwas/glob"
	"github.com/google/uuid"

	"github.com/jward/cltags/internal/cache"
	"github.com/jward/cltags/internal/metrics"
	"github.com/jward/cltags/internal/store"
)

var (
	// ErrSessionAborted is wrapped by every error a session returns after a
	// storage failure.
	ErrSessionAborted = errors.New("cltags: ingestion session aborted")
	// ErrSessionClosed is returned when a closed session is used.
	ErrSessionClosed = errors.New("cltags: ingestion session closed")
)

// Cache keys. Paths are not cached.
type lineKey struct {
	pathID int64
	lineno int
}

type symbolKey struct {
	short string
	full  string
}

type declKey struct {
	symbolID     int64
	kind         DeclKind
	isDefinition bool
	isImplicit   bool
}

// CacheStats reports lookups against one dimension cache.
type CacheStats = cache.Stats

// SessionStats is a snapshot of a session's counters.
type SessionStats struct {
	Seen           int64 // records passed to RecordOccurrence
	Recorded       int64 // records that queued a fact
	SkippedUnnamed int64
	Excluded       int64
	Invalid        int64
	Pending        int   // facts queued, not yet committed
	Inserted       int64 // facts added by committed flushes
	Flushes        int
	Lines          CacheStats
	Symbols        CacheStats
	Declarations   CacheStats
}

// ProgressFunc receives periodic stats snapshots during ingestion.
type ProgressFunc func(SessionStats)

// Session ingests occurrences into one index. It owns the dimension caches
// and the pending fact batch; both die with it.
//
// A Session is not safe for concurrent use.
type Session struct {
	id       string
	ds       store.DataStore
	cfg      settings
	logger   *slog.Logger
	metrics  *metrics.Ingest
	excludes []glob.Glob

	lines   cache.Cache[lineKey]
	symbols cache.Cache[symbolKey]
	decls   cache.Cache[declKey]
	batch   *store.BatchedStore

	stats  SessionStats
	err    error // sticky; set once the session is aborted
	closed bool
}

func newSession(ds store.DataStore, cfg settings) (*Session, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("cltags: %w", err)
	}
	excludes, err := compileExcludes(cfg.excludes)
	if err != nil {
		return nil, fmt.Errorf("cltags: %w", err)
	}

	s := &Session{
		id:       uuid.NewString(),
		ds:       ds,
		cfg:      cfg,
		metrics:  cfg.metrics,
		excludes: excludes,
		batch:    store.NewBatchedStore(cfg.batchSize),
	}
	s.logger = cfg.logger.With("session", s.id)

	if s.lines, err = cache.New[lineKey](cfg.cacheCapacity); err != nil {
		return nil, fmt.Errorf("cltags: line cache: %w", err)
	}
	if s.symbols, err = cache.New[symbolKey](cfg.cacheCapacity); err != nil {
		s.lines.Close()
		return nil, fmt.Errorf("cltags: symbol cache: %w", err)
	}
	if s.decls, err = cache.New[declKey](cfg.cacheCapacity); err != nil {
		s.lines.Close()
		s.symbols.Close()
		return nil, fmt.Errorf("cltags: declaration cache: %w", err)
	}

	s.logger.Info("session opened",
		"batch_size", cfg.batchSize,
		"cache_capacity", cfg.cacheCapacity,
		"excludes", len(excludes),
	)
	return s, nil
}

// ID returns the session's unique run id.
func (s *Session) ID() string {
	return s.id
}

// Err returns the error that aborted the session, or nil.
func (s *Session) Err() error {
	return s.err
}

// RecordOccurrence ingests one occurrence. Records with an empty short name
// or an excluded file path are skipped without error. An invalid record is
// rejected with an *InvalidRecordError and writes nothing. A storage failure
// aborts the session and discards its pending facts.
//
// The fact is durable only after the next flush.
func (s *Session) RecordOccurrence(ctx context.Context, occ *Occurrence) error {
	if s.closed {
		return ErrSessionClosed
	}
	if s.err != nil {
		return s.err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.stats.Seen++
	defer s.reportProgress()

	if occ.ShortName == "" {
		s.stats.SkippedUnnamed++
		s.metrics.ObserveRecord(metrics.OutcomeUnnamed)
		return nil
	}
	if err := occ.Validate(); err != nil {
		s.stats.Invalid++
		s.metrics.ObserveRecord(metrics.OutcomeInvalid)
		return err
	}
	if s.excluded(occ.FilePath) {
		s.stats.Excluded++
		s.metrics.ObserveRecord(metrics.OutcomeExcluded)
		return nil
	}

	ref, err := s.resolve(ctx, occ)
	if err != nil {
		return s.abort(err)
	}
	s.batch.InsertDeclRef(ref)
	s.stats.Recorded++
	s.metrics.ObserveRecord(metrics.OutcomeRecorded)
	s.metrics.SetPending(s.batch.Len())

	if s.cfg.batchSize > 0 && s.batch.Len() >= s.cfg.batchSize {
		return s.Flush(ctx)
	}
	return nil
}

// resolve walks the dimensions in dependency order (directory, file, line,
// symbol name, declaration) and builds the fact for occ.
func (s *Session) resolve(ctx context.Context, occ *Occurrence) (*store.DeclRef, error) {
	dir, name := occ.splitPath()

	var dirID *int64
	if dir != "" {
		id, err := s.ds.ResolveSourcePath(ctx, &store.SourcePath{Pathname: dir})
		if err != nil {
			return nil, err
		}
		dirID = &id
	}
	pathID, err := s.ds.ResolveSourcePath(ctx, &store.SourcePath{DirnameID: dirID, Pathname: name})
	if err != nil {
		return nil, err
	}

	lineID, err := s.lines.ResolveOrCreate(lineKey{pathID, occ.Line}, func() (int64, error) {
		return s.ds.ResolveSourceLine(ctx, &store.SourceLine{
			SourcePathID: pathID,
			Lineno:       occ.Line,
			Text:         occ.LineText,
		})
	})
	if err != nil {
		return nil, err
	}

	symbolID, err := s.symbols.ResolveOrCreate(symbolKey{occ.ShortName, occ.FullName}, func() (int64, error) {
		return s.ds.ResolveSymbolName(ctx, &store.SymbolName{
			ShortName: occ.ShortName,
			FullName:  occ.FullName,
		})
	})
	if err != nil {
		return nil, err
	}

	dk := declKey{symbolID, occ.Kind, occ.IsDefinition, occ.IsImplicit}
	declID, err := s.decls.ResolveOrCreate(dk, func() (int64, error) {
		return s.ds.ResolveDeclaration(ctx, &store.Declaration{
			SymbolNameID: symbolID,
			Kind:         occ.Kind,
			IsDefinition: occ.IsDefinition,
			IsImplicit:   occ.IsImplicit,
		})
	})
	if err != nil {
		return nil, err
	}

	return &store.DeclRef{
		DeclarationID: declID,
		RefKind:       occ.RefKind,
		SourceLineID:  lineID,
		Col:           occ.Col,
		IsImplicit:    occ.IsImplicit,
	}, nil
}

func (s *Session) excluded(path string) bool {
	for _, g := range s.excludes {
		if g.Match(path) {
			return true
		}
	}
	return false
}

// Flush commits every pending fact in one transaction. The batch is cleared
// whether or not the commit succeeds; on failure the session is aborted.
func (s *Session) Flush(ctx context.Context) error {
	if s.closed {
		return ErrSessionClosed
	}
	if s.err != nil {
		return s.err
	}
	return s.flush(ctx)
}

func (s *Session) flush(ctx context.Context) error {
	n := s.batch.Len()
	if n == 0 {
		return nil
	}

	start := time.Now()
	inserted, err := s.ds.CommitBatch(ctx, s.batch)
	elapsed := time.Since(start)
	s.batch.Reset()
	s.stats.Flushes++
	s.metrics.ObserveFlush(inserted, elapsed, err)
	s.metrics.SetPending(0)
	if err != nil {
		s.logger.Error("flush failed", "facts", n, "error", err)
		return s.abort(err)
	}

	s.stats.Inserted += inserted
	s.logger.Debug("flushed",
		"facts", n,
		"inserted", inserted,
		"duration", elapsed,
	)
	s.publishCacheStats()
	return nil
}

// abort marks the session failed and drops whatever is still pending.
func (s *Session) abort(cause error) error {
	if s.err == nil {
		dropped := s.batch.Len()
		s.batch.Reset()
		s.metrics.SetPending(0)
		s.err = fmt.Errorf("%w: %w", ErrSessionAborted, cause)
		s.logger.Error("session aborted", "dropped_facts", dropped, "error", cause)
	}
	return s.err
}

// Close flushes pending facts (if the session is healthy) and releases the
// caches. It returns the flush error, or the error that aborted the session.
// Closing twice is a no-op.
func (s *Session) Close(ctx context.Context) error {
	if s.closed {
		return nil
	}
	err := s.err
	if err == nil {
		err = s.flush(ctx)
	}
	s.publishCacheStats()

	st := s.Stats()
	s.stats.Lines, s.stats.Symbols, s.stats.Declarations = st.Lines, st.Symbols, st.Declarations
	s.closed = true
	s.lines.Close()
	s.symbols.Close()
	s.decls.Close()

	s.logger.Info("session closed",
		"seen", st.Seen,
		"recorded", st.Recorded,
		"skipped_unnamed", st.SkippedUnnamed,
		"excluded", st.Excluded,
		"invalid", st.Invalid,
		"inserted", st.Inserted,
		"flushes", st.Flushes,
		"aborted", s.err != nil,
	)
	return err
}

// Stats returns a snapshot of the session's counters.
func (s *Session) Stats() SessionStats {
	st := s.stats
	st.Pending = s.batch.Len()
	if !s.closed { // after Close, the last snapshot taken by Close is kept
		st.Lines = s.lines.Stats()
		st.Symbols = s.symbols.Stats()
		st.Declarations = s.decls.Stats()
	}
	return st
}

func (s *Session) reportProgress() {
	every := int64(max(s.cfg.progressEvery, 1))
	if s.cfg.progress == nil || s.stats.Seen%every != 0 {
		return
	}
	s.cfg.progress(s.Stats())
}

func (s *Session) publishCacheStats() {
	if s.metrics == nil {
		return
	}
	for name, c := range map[string]CacheStats{
		"lines":        s.lines.Stats(),
		"symbols":      s.symbols.Stats(),
		"declarations": s.decls.Stats(),
	} {
		s.metrics.SetCache(name, c.Hits, c.Misses, c.Size)
	}
}
