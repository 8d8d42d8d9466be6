// Package feed reads GRID-style series telemetry: a line-delimited JSON
// event log, optionally wrapped in a single-member zip archive or
// compressed as a zstd stream.
package feed

import (
	"archive/zip"
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
)

// maxLineBytes bounds a single JSONL line. Full series-state snapshots can
// run to several megabytes each.
const maxLineBytes = 64 * 1024 * 1024

// Record is one line of the event log.
type Record struct {
	SeriesID   string   `json:"seriesId,omitempty"`
	OccurredAt string   `json:"occurredAt,omitempty"`
	RawEvents  []*Event `json:"events"`
}

// Events returns the record's events with timestamp inheritance applied: an
// event missing its own occurredAt takes the record's.
func (r *Record) Events() []*Event {
	for _, ev := range r.RawEvents {
		if ev.OccurredAt == "" {
			ev.OccurredAt = r.OccurredAt
		}
	}
	return r.RawEvents
}

// Reader streams records from an event log. A Reader is single-traversal:
// once Next returns false it stays false.
type Reader struct {
	scanner *bufio.Scanner
	closers []io.Closer

	rec  *Record
	err  error
	line int
}

// Open opens the log at path. ".zip" paths must contain at least one
// ".jsonl" member (the first, in archive order, is read); ".zst" paths are
// decompressed as a zstd stream; anything else is read as plain JSONL.
func Open(path string) (*Reader, error) {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		return openZip(path)
	case strings.HasSuffix(lower, ".zst"):
		return openZstd(path)
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open log: %w", err)
		}
		return newReader(f, f), nil
	}
}

func openZip(path string) (*Reader, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	for _, member := range zr.File {
		if !strings.HasSuffix(strings.ToLower(member.Name), ".jsonl") {
			continue
		}
		rc, err := member.Open()
		if err != nil {
			zr.Close()
			return nil, fmt.Errorf("open archive member %s: %w", member.Name, err)
		}
		return newReader(rc, rc, zr), nil
	}
	zr.Close()
	return nil, fmt.Errorf("no .jsonl entry in %s", path)
}

func openZstd(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open zstd stream: %w", err)
	}
	// The decoder wrapper must be closed too, or its worker goroutines
	// outlive the Reader.
	rc := dec.IOReadCloser()
	return newReader(rc, rc, f), nil
}

func newReader(src io.Reader, closers ...io.Closer) *Reader {
	sc := bufio.NewScanner(src)
	sc.Buffer(make([]byte, 1024*1024), maxLineBytes)
	return &Reader{scanner: sc, closers: closers}
}

// Next advances to the next non-blank record. It returns false at EOF or on
// the first error; check Err afterwards.
func (r *Reader) Next() bool {
	if r.err != nil {
		return false
	}
	for r.scanner.Scan() {
		r.line++
		line := strings.TrimSpace(r.scanner.Text())
		if line == "" {
			continue
		}
		rec := &Record{}
		if err := json.Unmarshal([]byte(line), rec); err != nil {
			r.err = fmt.Errorf("line %d: %w", r.line, err)
			return false
		}
		r.rec = rec
		return true
	}
	r.err = r.scanner.Err()
	return false
}

// Record returns the record read by the last successful Next.
func (r *Reader) Record() *Record { return r.rec }

// Err returns the first error encountered, if any.
func (r *Reader) Err() error { return r.err }

// Close releases the underlying file handles.
func (r *Reader) Close() error {
	var first error
	for _, c := range r.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// ParseTime parses a feed timestamp. The second return is false when the
// value is absent or malformed; such events carry no round-elapsed time.
func ParseTime(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
