// Package recordio reads occurrence records as JSON Lines, optionally
// gzip- or zstd-compressed, from files or stdin.
package recordio

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Stdin is the path that selects standard input.
const Stdin = "-"

// maxLine bounds a single record. Source lines are stored verbatim, so
// generated code can produce very long ones.
const maxLine = 16 << 20

// DecodeError locates a malformed record in its stream.
type DecodeError struct {
	Name string
	Line int
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.Name, e.Line, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Open opens path for reading, decompressing by extension (.gz, .zst).
// "-" reads stdin; closing it leaves stdin open.
func Open(path string) (io.ReadCloser, error) {
	var f io.ReadCloser
	if path == Stdin {
		f = io.NopCloser(os.Stdin)
	} else {
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		f = file
	}
	return wrap(path, f)
}

func wrap(name string, f io.ReadCloser) (io.ReadCloser, error) {
	switch {
	case strings.HasSuffix(name, ".gz"):
		zr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return &stacked{Reader: zr, closers: []io.Closer{zr, f}}, nil
	case strings.HasSuffix(name, ".zst"), strings.HasSuffix(name, ".zstd"):
		dec, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		rc := dec.IOReadCloser()
		return &stacked{Reader: rc, closers: []io.Closer{rc, f}}, nil
	default:
		return f, nil
	}
}

// stacked closes a decompressor before the file under it.
type stacked struct {
	io.Reader
	closers []io.Closer
}

func (s *stacked) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// ForEach decodes one T per non-blank line of r and passes it to fn along
// with its 1-based line number. It stops at the first decode error, fn
// error or context cancellation. name labels decode errors.
func ForEach[T any](ctx context.Context, r io.Reader, name string, fn func(line int, rec *T) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)

	lineno := 0
	for sc.Scan() {
		lineno++
		if err := ctx.Err(); err != nil {
			return err
		}
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		var rec T
		if err := json.Unmarshal(raw, &rec); err != nil {
			return &DecodeError{Name: name, Line: lineno, Err: err}
		}
		if err := fn(lineno, &rec); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return &DecodeError{Name: name, Line: lineno + 1, Err: err}
	}
	return nil
}
