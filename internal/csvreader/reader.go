// Package csvreader implements a streaming, header-aware CSV reader for the
// import pipeline. It never buffers the whole file: rows are produced one at
// a time, which keeps memory flat on multi-million-row inputs.
//
// Header names are normalized on read (lowercased, trimmed, spaces and
// hyphens replaced with underscores) so the rest of the pipeline can address
// columns by a stable lower_snake_case name regardless of how the source file
// spells them.
package csvreader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"mediaetl/pkg/records"
)

// ErrMalformedHeader is returned when the first row is absent or unreadable.
var ErrMalformedHeader = errors.New("csvreader: malformed or missing header row")

// Reader streams records from a delimited file. It is not safe for
// concurrent use; the import pipeline is single-threaded by design.
type Reader struct {
	path    string
	delim   rune
	f       *os.File
	cr      *csv.Reader
	headers []string
	line    int // physical line of the last record returned by Read
	count   int // cached by Count
	counted bool
	closed  bool
}

// Open opens the file at path and reads the header row immediately, so a
// malformed header is reported before any records are consumed.
//
// The returned Reader must be closed. Close is also registered as a finalizer
// so a discarded Reader does not leak its file handle, but relying on the
// garbage collector for that is a bug in the caller, not a feature.
func Open(path string, delim rune) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("csvreader: file not found: %s: %w", path, err)
		}
		return nil, fmt.Errorf("csvreader: open %s: %w", path, err)
	}

	r := &Reader{path: path, delim: delim, f: f}
	r.cr = newCSVReader(f, delim)

	hdr, err := r.cr.Read()
	if err != nil {
		f.Close()
		if err == io.EOF {
			return nil, ErrMalformedHeader
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedHeader, err)
	}
	r.headers = normalizeHeaders(hdr)
	r.line = 1

	runtime.SetFinalizer(r, func(r *Reader) { r.Close() })
	return r, nil
}

func newCSVReader(src io.Reader, delim rune) *csv.Reader {
	cr := csv.NewReader(src)
	cr.Comma = delim
	cr.ReuseRecord = true   // cells are copied into the record map
	cr.FieldsPerRecord = -1 // short rows are padded, not rejected
	return cr
}

// normalizeHeaders lowercases, trims, and snake_cases raw header cells.
// The first cell additionally has a UTF-8 BOM stripped.
func normalizeHeaders(hdr []string) []string {
	out := make([]string, len(hdr))
	for i, h := range hdr {
		if i == 0 {
			h = strings.TrimPrefix(h, "\uFEFF")
		}
		h = strings.TrimSpace(h)
		h = strings.ToLower(h)
		h = strings.ReplaceAll(h, " ", "_")
		h = strings.ReplaceAll(h, "-", "_")
		out[i] = h
	}
	return out
}

// Headers returns the normalized column names from the header row, in file
// order. The returned slice must not be mutated.
func (r *Reader) Headers() []string { return r.headers }

// Line returns the physical 1-based line number of the record most recently
// returned by Read (the header is line 1).
func (r *Reader) Line() int { return r.line }

// Read returns the next data record as header-name -> cell string, or io.EOF
// when the file is exhausted. Fully blank rows (every cell empty after trim)
// are skipped. Short rows are padded with empty strings to header length, so
// every record has one entry per header.
//
// The sequence is not restartable; reopen the file to iterate again.
func (r *Reader) Read() (records.Record, error) {
	if r.closed {
		return nil, fmt.Errorf("csvreader: read after Close")
	}
	for {
		row, err := r.cr.Read()
		if err == io.EOF {
			return nil, io.EOF
		}
		if err != nil {
			return nil, fmt.Errorf("csvreader: read: %w", err)
		}
		r.line++
		if blankRow(row) {
			continue
		}

		rec := make(records.Record, len(r.headers))
		for i, h := range r.headers {
			if i < len(row) {
				rec[h] = strings.TrimSpace(row[i])
			} else {
				rec[h] = "" // pad short rows
			}
		}
		return rec, nil
	}
}

// blankRow reports whether every cell is empty after trimming.
func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Count returns the total number of data rows in the file, excluding the
// header and fully blank rows. The scan uses a second handle on the same
// path, so the main read position is untouched even if the scan fails
// mid-file. The result is cached for the lifetime of the Reader.
func (r *Reader) Count() (int, error) {
	if r.counted {
		return r.count, nil
	}
	f, err := os.Open(r.path)
	if err != nil {
		return 0, fmt.Errorf("csvreader: count: %w", err)
	}
	defer f.Close()

	cr := newCSVReader(f, r.delim)
	if _, err := cr.Read(); err != nil { // skip header
		if err == io.EOF {
			return 0, ErrMalformedHeader
		}
		return 0, fmt.Errorf("csvreader: count: %w", err)
	}

	n := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("csvreader: count: %w", err)
		}
		if !blankRow(row) {
			n++
		}
	}
	r.count, r.counted = n, true
	return n, nil
}

// Close releases the file handle. It is idempotent.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	runtime.SetFinalizer(r, nil)
	return r.f.Close()
}
