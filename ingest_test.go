package cltags

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const streamWithBadRecord = `{"short_name":"foo","full_name":"ns::foo","kind":"function","is_definition":true,"ref_kind":"definition","file_path":"/src/x.cpp","dir_path":"/src","line_number":10,"column_number":3,"line_text":"void foo() {}"}
{"short_name":"foo","full_name":"ns::foo","kind":"function","is_definition":true,"ref_kind":"use","file_path":"/src/x.cpp","dir_path":"/src","line_number":0,"column_number":3,"line_text":"bad"}
{"short_name":"foo","full_name":"ns::foo","kind":"function","is_definition":true,"ref_kind":"use","file_path":"/src/y.cpp","dir_path":"/src","line_number":4,"column_number":1,"line_text":"foo();"}
`

func TestIngest_StopsOnInvalidRecord(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)
	s := newTestSession(t, e)
	ctx := context.Background()

	err := s.Ingest(ctx, strings.NewReader(streamWithBadRecord), "recs.jsonl", false)
	require.ErrorIs(t, err, ErrInvalidRecord)
	assert.Contains(t, err.Error(), "recs.jsonl:2:")
	require.NoError(t, s.Close(ctx), "the session itself is still healthy")

	tags, err := e.Query().FindDeclaration(ctx, "ns::foo")
	require.NoError(t, err)
	assert.Len(t, tags, 1)
}

func TestIngest_KeepGoingSkipsInvalidRecords(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)
	s := newTestSession(t, e)
	ctx := context.Background()

	require.NoError(t, s.Ingest(ctx, strings.NewReader(streamWithBadRecord), "recs.jsonl", true))
	require.NoError(t, s.Close(ctx))
	assert.Equal(t, int64(1), s.Stats().Invalid)

	tags, err := e.Query().FindDeclaration(ctx, "ns::foo")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"/src/x.cpp:10:3:void foo() {}",
		"/src/y.cpp:4:1:foo();",
	}, tagStrings(tags))
}

func TestIngest_MalformedJSON(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)
	s := newTestSession(t, e)
	ctx := context.Background()

	err := s.Ingest(ctx, strings.NewReader("{\"short_name\":\n"), "broken", true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken:1:")
	require.NoError(t, s.Close(ctx))
}

func TestIngestFile_Gzip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "recs.jsonl.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := gzip.NewWriter(f)
	_, err = zw.Write([]byte(streamWithBadRecord))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	e := newTestEngine(t)
	s := newTestSession(t, e)
	ctx := context.Background()
	require.NoError(t, s.IngestFile(ctx, path, true))
	require.NoError(t, s.Close(ctx))
	assert.Equal(t, int64(2), counts(t, e).DeclRefs)
}

func TestIngestFile_Missing(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)
	s := newTestSession(t, e)
	err := s.IngestFile(context.Background(), filepath.Join(t.TempDir(), "nope.jsonl"), false)
	require.ErrorIs(t, err, os.ErrNotExist)
	require.NoError(t, s.Close(context.Background()))
}
