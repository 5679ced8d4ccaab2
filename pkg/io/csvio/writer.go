package csvio

import (
	"encoding/csv"
	"io"

	"github.com/statloom/refinery/pkg/io/ioutils"
	"github.com/statloom/refinery/pkg/table"
)

type WriterOptions struct {
	Delimiter rune // 0 means ','
}

// WriteAll writes a frame to path with a header row. A .gz path is
// compressed.
func WriteAll(path string, f *table.Frame, opt WriterOptions) error {
	sw, err := NewStreamWriter(path, f.Schema(), opt)
	if err != nil {
		return err
	}
	if err := sw.Write(f); err != nil {
		_ = sw.Close()
		return err
	}
	return sw.Close()
}

// StreamWriter appends frames to a delimited file. The header is written at
// construction so an empty dataset still yields a well-formed table.
type StreamWriter struct {
	w   *csv.Writer
	out io.WriteCloser
}

func NewStreamWriter(path string, schema table.Schema, opt WriterOptions) (*StreamWriter, error) {
	out, err := ioutils.CreateMaybeCompressed(path)
	if err != nil {
		return nil, err
	}
	w := csv.NewWriter(out)
	if opt.Delimiter != 0 {
		w.Comma = opt.Delimiter
	}
	if err := w.Write(schema.Names()); err != nil {
		_ = out.Close()
		return nil, err
	}
	return &StreamWriter{w: w, out: out}, nil
}

func (s *StreamWriter) Write(f *table.Frame) error {
	ncol := f.Cols()
	row := make([]string, ncol)
	for r := 0; r < f.Rows(); r++ {
		for c := 0; c < ncol; c++ {
			row[c], _ = f.StringCell(r, c)
		}
		if err := s.w.Write(row); err != nil {
			return err
		}
	}
	s.w.Flush()
	return s.w.Error()
}

func (s *StreamWriter) Close() error {
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		_ = s.out.Close()
		return err
	}
	return s.out.Close()
}
