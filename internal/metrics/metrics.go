// Package metrics exposes ingestion counters as Prometheus metrics. Each
// Ingest owns a private registry so separate sessions (and tests) never
// share state; batch runs dump it with WriteTextfile for the node exporter
// textfile collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Record outcomes.
const (
	OutcomeRecorded = "recorded"
	OutcomeUnnamed  = "unnamed"
	OutcomeExcluded = "excluded"
	OutcomeInvalid  = "invalid"
)

// Ingest holds the metrics of one ingestion session. A nil *Ingest is valid
// and records nothing.
type Ingest struct {
	Registry *prometheus.Registry

	Records       *prometheus.CounterVec
	FactsInserted prometheus.Counter
	Flushes       prometheus.Counter
	FlushErrors   prometheus.Counter
	FlushDuration prometheus.Histogram
	PendingFacts  prometheus.Gauge
	CacheHits     *prometheus.GaugeVec
	CacheMisses   *prometheus.GaugeVec
	CacheSize     *prometheus.GaugeVec
}

func NewIngest() *Ingest {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Ingest{
		Registry: reg,
		Records: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cltags_records_total",
			Help: "Occurrence records seen by the ingestion pipeline, by outcome.",
		}, []string{"outcome"}),
		FactsInserted: f.NewCounter(prometheus.CounterOpts{
			Name: "cltags_facts_inserted_total",
			Help: "DeclRef rows added by committed batches (duplicates excluded).",
		}),
		Flushes: f.NewCounter(prometheus.CounterOpts{
			Name: "cltags_flushes_total",
			Help: "Batch commits attempted.",
		}),
		FlushErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "cltags_flush_errors_total",
			Help: "Batch commits that failed and were discarded.",
		}),
		FlushDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "cltags_flush_seconds",
			Help:    "Time spent committing one batch of facts.",
			Buckets: prometheus.DefBuckets,
		}),
		PendingFacts: f.NewGauge(prometheus.GaugeOpts{
			Name: "cltags_pending_facts",
			Help: "Facts queued and not yet committed.",
		}),
		CacheHits: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "cltags_cache_hits",
			Help: "Dimension cache hits so far, by cache.",
		}, []string{"cache"}),
		CacheMisses: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "cltags_cache_misses",
			Help: "Dimension cache misses so far, by cache.",
		}, []string{"cache"}),
		CacheSize: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "cltags_cache_entries",
			Help: "Entries held by each dimension cache.",
		}, []string{"cache"}),
	}
}

func (m *Ingest) ObserveRecord(outcome string) {
	if m == nil {
		return
	}
	m.Records.WithLabelValues(outcome).Inc()
}

func (m *Ingest) SetPending(n int) {
	if m == nil {
		return
	}
	m.PendingFacts.Set(float64(n))
}

// ObserveFlush records one batch commit. inserted is ignored when err is set.
func (m *Ingest) ObserveFlush(inserted int64, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.Flushes.Inc()
	m.FlushDuration.Observe(d.Seconds())
	if err != nil {
		m.FlushErrors.Inc()
		return
	}
	m.FactsInserted.Add(float64(inserted))
}

func (m *Ingest) SetCache(name string, hits, misses uint64, size int) {
	if m == nil {
		return
	}
	m.CacheHits.WithLabelValues(name).Set(float64(hits))
	m.CacheMisses.WithLabelValues(name).Set(float64(misses))
	m.CacheSize.WithLabelValues(name).Set(float64(size))
}

// WriteTextfile writes every metric to path in the Prometheus text format.
func (m *Ingest) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.Registry)
}
