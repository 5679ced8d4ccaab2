package parquetio

import (
	"fmt"
	"os"

	parquet "github.com/segmentio/parquet-go"

	"github.com/statloom/refinery/pkg/table"
)

// parquetSchema builds the file schema for the generic writer. The writer
// cannot derive one from a map type, so the column kinds are mapped
// explicitly: string and sentinel-bearing columns to UTF8, clean ranges to
// INT64 or DOUBLE, everything optional.
func parquetSchema(s table.Schema) *parquet.Schema {
	g := parquet.Group{}
	for _, cs := range s.Columns {
		var n parquet.Node
		switch cs.Kind {
		case table.KindInt:
			n = parquet.Int(64)
		case table.KindFloat:
			n = parquet.Leaf(parquet.DoubleType)
		default:
			n = parquet.String()
		}
		g[cs.Name] = parquet.Optional(n)
	}
	return parquet.NewSchema("schema", g)
}

// StreamWriter writes frames to a Parquet file incrementally. It satisfies
// refine.FrameSink.
type StreamWriter struct {
	file   *os.File
	writer *parquet.GenericWriter[map[string]any]
}

func NewStreamWriter(path string, schema table.Schema) (*StreamWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w := parquet.NewGenericWriter[map[string]any](f, parquetSchema(schema))
	return &StreamWriter{file: f, writer: w}, nil
}

func (s *StreamWriter) Write(fr *table.Frame) error {
	cols := fr.Schema().Columns
	for r := 0; r < fr.Rows(); r++ {
		rec := make(map[string]any, len(cols))
		for c, cs := range cols {
			if v := fr.Cell(r, c); v != nil {
				rec[cs.Name] = v
			}
		}
		if _, err := s.writer.Write([]map[string]any{rec}); err != nil {
			return fmt.Errorf("parquet stream write: %w", err)
		}
	}
	return nil
}

func (s *StreamWriter) Close() error {
	if err := s.writer.Close(); err != nil {
		_ = s.file.Close()
		return err
	}
	return s.file.Close()
}
