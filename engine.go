package cltags

import (
	"fmt"
	"log/slog"

	"github.com/gobwas/glob"

	"github.com/jward/cltags/internal/logging"
	"github.com/jward/cltags/internal/metrics"
	"github.com/jward/cltags/internal/store"
)

// DefaultBatchSize is the number of pending facts that triggers a flush.
const DefaultBatchSize = 50000

// DefaultProgressEvery is how many records pass between progress callbacks.
const DefaultProgressEvery = 1000

// Engine owns an index file and hands out ingestion sessions and queries
// over it.
type Engine struct {
	store    *store.Store
	settings settings
}

// settings is shared by every session an Engine creates.
type settings struct {
	batchSize     int
	cacheCapacity int
	logger        *slog.Logger
	excludes      []string
	metrics       *metrics.Ingest
	progress      ProgressFunc
	progressEvery int
}

func defaultSettings() settings {
	return settings{
		batchSize:     DefaultBatchSize,
		logger:        logging.Discard(),
		progressEvery: DefaultProgressEvery,
	}
}

// Option configures an Engine.
type Option func(*settings)

// WithBatchSize sets how many facts a session queues before flushing. Zero
// flushes only when the session closes.
func WithBatchSize(n int) Option {
	return func(s *settings) { s.batchSize = n }
}

// WithCacheCapacity bounds each dimension cache to n entries. Zero (the
// default) keeps every key for the life of the session.
func WithCacheCapacity(n int) Option {
	return func(s *settings) { s.cacheCapacity = n }
}

// WithLogger sets the logger used by the engine and its sessions.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithExcludes drops records whose file path matches any of the glob
// patterns. Patterns use "/" as the separator, so "*" stays inside one
// directory and "**" crosses them.
func WithExcludes(patterns ...string) Option {
	return func(s *settings) { s.excludes = append(s.excludes, patterns...) }
}

// WithMetrics mirrors session counters into m.
func WithMetrics(m *metrics.Ingest) Option {
	return func(s *settings) { s.metrics = m }
}

// WithProgress calls fn with a stats snapshot every `every` records. A
// non-positive every keeps DefaultProgressEvery.
func WithProgress(every int, fn ProgressFunc) Option {
	return func(s *settings) {
		s.progress = fn
		if every > 0 {
			s.progressEvery = every
		}
	}
}

func (s *settings) validate() error {
	if s.batchSize < 0 {
		return fmt.Errorf("batch size must be >= 0, got %d", s.batchSize)
	}
	if s.cacheCapacity < 0 {
		return fmt.Errorf("cache capacity must be >= 0, got %d", s.cacheCapacity)
	}
	if _, err := compileExcludes(s.excludes); err != nil {
		return err
	}
	return nil
}

func compileExcludes(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("exclude pattern %q: %w", p, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

// New opens (or creates) the index at dbPath.
func New(dbPath string, opts ...Option) (*Engine, error) {
	cfg := defaultSettings()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("cltags: %w", err)
	}

	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("cltags: open %s: %w", dbPath, err)
	}
	cfg.logger.Debug("index opened", "db", dbPath)
	return &Engine{store: s, settings: cfg}, nil
}

// Close releases the Engine's database resources. Sessions must be closed
// first.
func (e *Engine) Close() error {
	return e.store.Close()
}

// Store returns the underlying Store for direct access.
func (e *Engine) Store() *Store {
	return e.store
}

// Query returns a new QueryBuilder wrapping the Store.
func (e *Engine) Query() *QueryBuilder {
	return &QueryBuilder{store: e.store}
}

// NewSession starts an ingestion session writing into the engine's index.
// Only one session should be open at a time.
func (e *Engine) NewSession() (*Session, error) {
	return newSession(e.store, e.settings)
}
