// Package csvio reads the raw census extract and writes refined/removed
// tables as delimited files.
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/statloom/refinery/pkg/io/ioutils"
)

type ReaderOptions struct {
	Delimiter rune // 0 means ','
}

// Reader is a record source over a delimited file with a header row. It
// satisfies refine.RecordSource.
type Reader struct {
	r      *csv.Reader
	rc     io.ReadCloser
	header []string
}

// Open opens path (gzip transparent) and reads the header row. A missing or
// empty header is a structural error.
func Open(path string, opt ReaderOptions) (*Reader, error) {
	rc, err := ioutils.OpenMaybeCompressed(path)
	if err != nil {
		return nil, err
	}
	rr := csv.NewReader(rc)
	if opt.Delimiter != 0 {
		rr.Comma = opt.Delimiter
	}
	rr.FieldsPerRecord = -1 // ragged records are a row-level concern
	rr.ReuseRecord = true

	rec, err := rr.Read()
	if err == io.EOF {
		_ = rc.Close()
		return nil, fmt.Errorf("source %s: missing header row", path)
	}
	if err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("source %s: %w", path, err)
	}
	header := make([]string, len(rec))
	for i := range rec {
		header[i] = strings.TrimSpace(strings.ToValidUTF8(rec[i], "?"))
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	return &Reader{r: rr, rc: rc, header: header}, nil
}

// NewReaderFrom builds a Reader over an arbitrary io.Reader; the caller owns
// closing the underlying source.
func NewReaderFrom(r io.Reader, opt ReaderOptions) (*Reader, error) {
	rr := csv.NewReader(r)
	if opt.Delimiter != 0 {
		rr.Comma = opt.Delimiter
	}
	rr.FieldsPerRecord = -1
	rr.ReuseRecord = true
	rec, err := rr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("source: missing header row")
	}
	if err != nil {
		return nil, err
	}
	header := make([]string, len(rec))
	for i := range rec {
		header[i] = strings.TrimSpace(strings.ToValidUTF8(rec[i], "?"))
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	return &Reader{r: rr, header: header}, nil
}

func (r *Reader) Header() []string { return r.header }

// Next returns the next record or io.EOF. The slice is reused between calls.
func (r *Reader) Next() ([]string, error) {
	return r.r.Read()
}

func (r *Reader) Close() error {
	if r.rc == nil {
		return nil
	}
	return r.rc.Close()
}
