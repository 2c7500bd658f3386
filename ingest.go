package cltags

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jward/cltags/internal/recordio"
)

// Ingest records every occurrence in a JSON Lines stream. name labels the
// stream in errors and logs. With keepGoing, invalid records are logged and
// skipped; otherwise the first one stops ingestion. Storage failures always
// stop it.
//
// Ingest does not flush; pending facts are committed at the batch bound or
// when the session closes.
func (s *Session) Ingest(ctx context.Context, r io.Reader, name string, keepGoing bool) error {
	s.logger.Debug("ingesting stream", "stream", name)
	return recordio.ForEach(ctx, r, name, func(line int, occ *Occurrence) error {
		err := s.RecordOccurrence(ctx, occ)
		if err == nil {
			return nil
		}
		var invalid *InvalidRecordError
		if errors.As(err, &invalid) {
			if keepGoing {
				s.logger.Warn("skipping invalid record", "stream", name, "line", line, "error", err)
				return nil
			}
			return fmt.Errorf("%s:%d: %w", name, line, err)
		}
		return err
	})
}

// IngestFile opens path (or stdin for "-"), decompressing .gz and .zst
// streams, and ingests it.
func (s *Session) IngestFile(ctx context.Context, path string, keepGoing bool) error {
	rc, err := recordio.Open(path)
	if err != nil {
		return fmt.Errorf("open records: %w", err)
	}
	defer rc.Close()

	name := path
	if path == recordio.Stdin {
		name = "<stdin>"
	}
	return s.Ingest(ctx, rc, name, keepGoing)
}
