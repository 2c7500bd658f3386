package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngest_Counters(t *testing.T) {
	t.Parallel()
	m := NewIngest()

	m.ObserveRecord(OutcomeRecorded)
	m.ObserveRecord(OutcomeRecorded)
	m.ObserveRecord(OutcomeUnnamed)
	m.ObserveFlush(5, time.Millisecond, nil)
	m.ObserveFlush(3, time.Millisecond, errors.New("disk full"))
	m.SetPending(7)
	m.SetCache("lines", 10, 2, 2)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Records.WithLabelValues(OutcomeRecorded)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Records.WithLabelValues(OutcomeUnnamed)))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.FactsInserted), "failed flushes add no facts")
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Flushes))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FlushErrors))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.PendingFacts))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.CacheHits.WithLabelValues("lines")))
}

func TestIngest_NilIsNoop(t *testing.T) {
	t.Parallel()
	var m *Ingest
	m.ObserveRecord(OutcomeRecorded)
	m.ObserveFlush(1, time.Second, nil)
	m.SetPending(1)
	m.SetCache("names", 1, 1, 1)
	assert.NoError(t, m.WriteTextfile(filepath.Join(t.TempDir(), "never.prom")))
}

func TestIngest_WriteTextfile(t *testing.T) {
	t.Parallel()
	m := NewIngest()
	m.ObserveRecord(OutcomeExcluded)

	path := filepath.Join(t.TempDir(), "cltags.prom")
	require.NoError(t, m.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `cltags_records_total{outcome="excluded"} 1`)
}
