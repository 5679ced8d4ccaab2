package refine

import (
	"fmt"
	"io"

	"github.com/statloom/refinery/pkg/dict"
	"github.com/statloom/refinery/pkg/table"
)

// RecordSource yields raw records until io.EOF. Header is available before
// the first Next call. Returned slices may be reused between calls.
type RecordSource interface {
	Header() []string
	Next() ([]string, error)
}

// FrameSink consumes frames, typically writing them out.
type FrameSink interface {
	Write(*table.Frame) error
	Close() error
}

type Options struct {
	// KeyField removes records that repeat an already-seen value of this
	// source column (first occurrence wins). Empty disables the check.
	KeyField string
	// ChunkSize is the number of rows per frame pushed to the sinks.
	// Defaults to 1024.
	ChunkSize int
}

// Stats summarises one run. Removed includes Duplicates.
type Stats struct {
	Rows       int
	Refined    int
	Removed    int
	Duplicates int
	ByField    map[string]int
	ByReason   map[string]int
}

func (s Stats) record(ferr *FieldError) Stats {
	s.Removed++
	if ferr.Reason == ReasonDuplicate {
		s.Duplicates++
	}
	s.ByField[ferr.Field]++
	s.ByReason[ferr.Reason]++
	return s
}

// Stream drives records from src through validation, writing accepted rows
// to refined and rejected rows to removed, in source order within each
// stream. removed may be nil, in which case rejected rows are counted and
// discarded. Both sinks are closed before Stream returns. Invalid row data
// never fails the run; only structural errors (unreadable source, missing
// header fields, sink write failures) do.
func Stream(d *dict.Dictionary, src RecordSource, refined FrameSink, removed FrameSink, opt Options) (stats Stats, err error) {
	defer func() {
		if cerr := refined.Close(); err == nil {
			err = cerr
		}
		if removed != nil {
			if cerr := removed.Close(); err == nil {
				err = cerr
			}
		}
	}()

	stats.ByField = map[string]int{}
	stats.ByReason = map[string]int{}

	b, err := bind(d, src.Header())
	if err != nil {
		return stats, err
	}

	keyPos := -1
	if opt.KeyField != "" {
		for i, name := range src.Header() {
			if name == opt.KeyField {
				keyPos = i
				break
			}
		}
		if keyPos < 0 {
			return stats, fmt.Errorf("key field %q not in source header", opt.KeyField)
		}
	}

	chunkSize := opt.ChunkSize
	if chunkSize <= 0 {
		chunkSize = 1024
	}

	refinedSchema := b.schema()
	removedSchema := b.removedSchema()
	refinedChunk := table.NewFrame(refinedSchema)
	var removedChunk *table.Frame
	if removed != nil {
		removedChunk = table.NewFrame(removedSchema)
	}

	var seen map[string]bool
	if keyPos >= 0 {
		seen = map[string]bool{}
	}

	for {
		rec, rerr := src.Next()
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return stats, rerr
		}
		stats.Rows++

		var ferr *FieldError
		if keyPos >= 0 && keyPos < len(rec) {
			key := rec[keyPos]
			if seen[key] {
				ferr = &FieldError{Field: opt.KeyField, Raw: key, Reason: ReasonDuplicate}
			} else {
				seen[key] = true
			}
		}

		var cells []any
		if ferr == nil {
			cells, ferr = b.process(rec)
		}
		if ferr != nil {
			stats = stats.record(ferr)
			if removed != nil {
				if aerr := removedChunk.AppendRow(b.removedCells(rec, ferr)); aerr != nil {
					return stats, aerr
				}
				if removedChunk.Rows() >= chunkSize {
					if werr := removed.Write(removedChunk); werr != nil {
						return stats, werr
					}
					removedChunk = table.NewFrame(removedSchema)
				}
			}
			continue
		}

		stats.Refined++
		if aerr := refinedChunk.AppendRow(cells); aerr != nil {
			return stats, aerr
		}
		if refinedChunk.Rows() >= chunkSize {
			if werr := refined.Write(refinedChunk); werr != nil {
				return stats, werr
			}
			refinedChunk = table.NewFrame(refinedSchema)
		}
	}

	if refinedChunk.Rows() > 0 {
		if werr := refined.Write(refinedChunk); werr != nil {
			return stats, werr
		}
	}
	if removed != nil && removedChunk.Rows() > 0 {
		if werr := removed.Write(removedChunk); werr != nil {
			return stats, werr
		}
	}
	return stats, nil
}

// Result is the in-memory outcome of a batch Refine.
type Result struct {
	Refined *table.Frame
	// Removed is nil unless Options asked for retention via Refine's
	// keepRemoved argument.
	Removed *table.Frame
	Stats   Stats
}

// Refine processes the whole source in memory. When keepRemoved is false,
// rejected rows are counted but not retained.
func Refine(d *dict.Dictionary, src RecordSource, opt Options, keepRemoved bool) (*Result, error) {
	ref := &appender{}
	var rem FrameSink
	var remApp *appender
	if keepRemoved {
		remApp = &appender{}
		rem = remApp
	}
	stats, err := Stream(d, src, ref, rem, opt)
	if err != nil {
		return nil, err
	}
	res := &Result{Stats: stats}
	b, _ := bind(d, src.Header())
	if ref.frame == nil {
		ref.frame = table.NewFrame(b.schema())
	}
	res.Refined = ref.frame
	if remApp != nil {
		if remApp.frame == nil {
			remApp.frame = table.NewFrame(b.removedSchema())
		}
		res.Removed = remApp.frame
	}
	return res, nil
}

// appender is a FrameSink that concatenates chunks into one frame.
type appender struct {
	frame *table.Frame
}

func (a *appender) Write(ch *table.Frame) error {
	if a.frame == nil {
		a.frame = table.NewFrame(ch.Schema())
	}
	for r := 0; r < ch.Rows(); r++ {
		cells := make([]any, ch.Cols())
		for c := 0; c < ch.Cols(); c++ {
			cells[c] = ch.Cell(r, c)
		}
		if err := a.frame.AppendRow(cells); err != nil {
			return err
		}
	}
	return nil
}

func (a *appender) Close() error { return nil }
