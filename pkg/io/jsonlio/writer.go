// Package jsonlio writes frames as JSON Lines, one object per row. Removed
// records are usually routed here: each rejected row stays a single
// self-describing object that is easy to grep and diff.
package jsonlio

import (
	"encoding/json"
	"io"

	"github.com/statloom/refinery/pkg/io/ioutils"
	"github.com/statloom/refinery/pkg/table"
)

// WriteAll writes a frame to path as JSONL.
func WriteAll(path string, f *table.Frame) error {
	sw, err := NewStreamWriter(path)
	if err != nil {
		return err
	}
	if err := sw.Write(f); err != nil {
		_ = sw.Close()
		return err
	}
	return sw.Close()
}

// StreamWriter appends frames to a JSONL file.
type StreamWriter struct {
	enc *json.Encoder
	out io.WriteCloser
}

func NewStreamWriter(path string) (*StreamWriter, error) {
	out, err := ioutils.CreateMaybeCompressed(path)
	if err != nil {
		return nil, err
	}
	return &StreamWriter{enc: json.NewEncoder(out), out: out}, nil
}

func (s *StreamWriter) Write(f *table.Frame) error {
	cols := f.Schema().Columns
	for r := 0; r < f.Rows(); r++ {
		m := make(map[string]any, len(cols))
		for c, cs := range cols {
			if v := f.Cell(r, c); v != nil {
				m[cs.Name] = v
			}
		}
		if err := s.enc.Encode(m); err != nil {
			return err
		}
	}
	return nil
}

func (s *StreamWriter) Close() error { return s.out.Close() }
