package refine

import (
	"strings"

	"github.com/statloom/refinery/pkg/dict"
	"github.com/statloom/refinery/pkg/table"
)

// Removed-table columns appended after the source columns. Prefixed so they
// cannot collide with census field names.
const (
	RejectFieldCol  = "reject_field"
	RejectValueCol  = "reject_value"
	RejectReasonCol = "reject_reason"
)

// HeaderError reports dictionary fields the source header does not provide.
// Refinement cannot start without them.
type HeaderError struct {
	Missing []string
}

func (e *HeaderError) Error() string {
	return "source header missing dictionary fields: " + strings.Join(e.Missing, ", ")
}

// binding fixes, once per run, where each dictionary field sits in a source
// record and which source columns pass through unvalidated.
type binding struct {
	dict      *dict.Dictionary
	header    []string
	fieldPos  []int // dictionary order -> source column index
	passPos   []int // pass-through source column indexes, header order
	passNames []string
}

func bind(d *dict.Dictionary, header []string) (*binding, error) {
	b := &binding{dict: d, header: header, fieldPos: make([]int, d.Len())}
	byName := make(map[string]int, len(header))
	for i, name := range header {
		byName[name] = i
	}
	var missing []string
	for i, f := range d.Fields() {
		pos, ok := byName[f.Name]
		if !ok {
			missing = append(missing, f.Name)
			continue
		}
		b.fieldPos[i] = pos
	}
	if len(missing) > 0 {
		return nil, &HeaderError{Missing: missing}
	}
	for i, name := range header {
		if !d.Has(name) {
			b.passPos = append(b.passPos, i)
			b.passNames = append(b.passNames, name)
		}
	}
	return b, nil
}

// schema is the refined-output shape: dictionary fields in document order,
// then pass-through columns in source-header order.
func (b *binding) schema() table.Schema {
	var s table.Schema
	for _, f := range b.dict.Fields() {
		s.Columns = append(s.Columns, table.ColumnSchema{Name: f.Name, Kind: ColumnKind(f)})
	}
	for _, name := range b.passNames {
		s.Columns = append(s.Columns, table.ColumnSchema{Name: name, Kind: table.KindString})
	}
	return s
}

// removedSchema is the removed-output shape: the source columns verbatim,
// plus the rejection triplet.
func (b *binding) removedSchema() table.Schema {
	var s table.Schema
	for _, name := range b.header {
		s.Columns = append(s.Columns, table.ColumnSchema{Name: name, Kind: table.KindString})
	}
	s.Columns = append(s.Columns,
		table.ColumnSchema{Name: RejectFieldCol, Kind: table.KindString},
		table.ColumnSchema{Name: RejectValueCol, Kind: table.KindString},
		table.ColumnSchema{Name: RejectReasonCol, Kind: table.KindString},
	)
	return s
}

// OutputSchemas returns the refined and removed table schemas implied by a
// dictionary and a source header, so stream writers can be opened before the
// first row is processed.
func OutputSchemas(d *dict.Dictionary, header []string) (refined, removed table.Schema, err error) {
	b, err := bind(d, header)
	if err != nil {
		return table.Schema{}, table.Schema{}, err
	}
	return b.schema(), b.removedSchema(), nil
}

// process validates one record in dictionary order, short-circuiting on the
// first failing field. On success it returns the recoded cells aligned with
// b.schema().
func (b *binding) process(rec []string) ([]any, *FieldError) {
	fields := b.dict.Fields()
	cells := make([]any, 0, len(fields)+len(b.passPos))
	for i, f := range fields {
		pos := b.fieldPos[i]
		if pos >= len(rec) {
			return nil, &FieldError{Field: f.Name, Raw: "", Reason: ReasonMissing}
		}
		v, ferr := Recode(f, rec[pos])
		if ferr != nil {
			return nil, ferr
		}
		cells = append(cells, v)
	}
	for _, pos := range b.passPos {
		if pos >= len(rec) {
			cells = append(cells, nil)
			continue
		}
		cells = append(cells, strings.TrimSpace(rec[pos]))
	}
	return cells, nil
}

// removedCells builds a removed-table row: raw source values (null-padded
// for short records) plus the rejection triplet.
func (b *binding) removedCells(rec []string, ferr *FieldError) []any {
	cells := make([]any, 0, len(b.header)+3)
	for i := range b.header {
		if i < len(rec) {
			cells = append(cells, rec[i])
		} else {
			cells = append(cells, nil)
		}
	}
	return append(cells, ferr.Field, ferr.Raw, ferr.Reason)
}
