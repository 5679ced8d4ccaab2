// Package parquetio writes frames to Parquet for analysis tooling that
// prefers columnar input over CSV.
package parquetio

import (
	"encoding/json"
	"fmt"

	local "github.com/xitongsys/parquet-go-source/local"
	pw "github.com/xitongsys/parquet-go/writer"

	"github.com/statloom/refinery/pkg/table"
)

func parquetSchemaJSON(s table.Schema) string {
	type field struct {
		Tag string `json:"Tag"`
	}
	type schema struct {
		Tag    string  `json:"Tag"`
		Fields []field `json:"Fields"`
	}
	sc := schema{Tag: "name=schema, repetitiontype=REQUIRED"}
	for _, cs := range s.Columns {
		tag := "name=" + cs.Name + ", repetitiontype=OPTIONAL, type="
		switch cs.Kind {
		case table.KindInt:
			tag += "INT64"
		case table.KindFloat:
			tag += "DOUBLE"
		default:
			tag += "UTF8"
		}
		sc.Fields = append(sc.Fields, field{Tag: tag})
	}
	b, _ := json.Marshal(sc)
	return string(b)
}

// WriteAll writes a frame to a Parquet file.
func WriteAll(path string, f *table.Frame) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	writer, err := pw.NewJSONWriter(parquetSchemaJSON(f.Schema()), fw, 4)
	if err != nil {
		_ = fw.Close()
		return fmt.Errorf("parquet writer init: %w", err)
	}
	cols := f.Schema().Columns
	for r := 0; r < f.Rows(); r++ {
		rec := make(map[string]any, len(cols))
		for c, cs := range cols {
			if v := f.Cell(r, c); v != nil {
				rec[cs.Name] = v
			}
		}
		// the writer consumes each record as a JSON document
		b, err := json.Marshal(rec)
		if err != nil {
			_ = writer.WriteStop()
			_ = fw.Close()
			return err
		}
		if err := writer.Write(string(b)); err != nil {
			_ = writer.WriteStop()
			_ = fw.Close()
			return fmt.Errorf("parquet write row: %w", err)
		}
	}
	if err := writer.WriteStop(); err != nil {
		_ = fw.Close()
		return err
	}
	return fw.Close()
}
