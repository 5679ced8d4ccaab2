// Package table holds the columnar container the refinement pipeline fills
// and the output writers consume.
package table

import (
	"fmt"
	"strconv"
)

// Kind enumerates supported column types. Recoded census values are labels,
// integer codes, or measured numbers, so three kinds suffice.
type Kind int

const (
	KindInvalid Kind = iota
	KindInt
	KindFloat
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	default:
		return "invalid"
	}
}

// Schema describes the logical shape of a dataset.
type Schema struct {
	Columns []ColumnSchema
}

type ColumnSchema struct {
	Name string
	Kind Kind
}

// Names returns the column names in schema order; this is the header row of
// any delimited output.
func (s Schema) Names() []string {
	names := make([]string, len(s.Columns))
	for i, cs := range s.Columns {
		names[i] = cs.Name
	}
	return names
}

// Column is a typed, nullable column.
type Column interface {
	Name() string
	Kind() Kind
	Len() int
	IsNull(i int) bool
}

type IntColumn struct {
	name  string
	data  []int64
	nulls []bool
}

func (c *IntColumn) Name() string            { return c.name }
func (c *IntColumn) Kind() Kind              { return KindInt }
func (c *IntColumn) Len() int                { return len(c.data) }
func (c *IntColumn) IsNull(i int) bool       { return c.nulls[i] }
func (c *IntColumn) Get(i int) (int64, bool) { return c.data[i], !c.nulls[i] }
func (c *IntColumn) Append(v int64)          { c.data = append(c.data, v); c.nulls = append(c.nulls, false) }
func (c *IntColumn) AppendNull()             { c.data = append(c.data, 0); c.nulls = append(c.nulls, true) }

type FloatColumn struct {
	name  string
	data  []float64
	nulls []bool
}

func (c *FloatColumn) Name() string              { return c.name }
func (c *FloatColumn) Kind() Kind                { return KindFloat }
func (c *FloatColumn) Len() int                  { return len(c.data) }
func (c *FloatColumn) IsNull(i int) bool         { return c.nulls[i] }
func (c *FloatColumn) Get(i int) (float64, bool) { return c.data[i], !c.nulls[i] }
func (c *FloatColumn) Append(v float64) {
	c.data = append(c.data, v)
	c.nulls = append(c.nulls, false)
}
func (c *FloatColumn) AppendNull() { c.data = append(c.data, 0); c.nulls = append(c.nulls, true) }

type StringColumn struct {
	name  string
	data  []string
	nulls []bool
}

func (c *StringColumn) Name() string             { return c.name }
func (c *StringColumn) Kind() Kind               { return KindString }
func (c *StringColumn) Len() int                 { return len(c.data) }
func (c *StringColumn) IsNull(i int) bool        { return c.nulls[i] }
func (c *StringColumn) Get(i int) (string, bool) { return c.data[i], !c.nulls[i] }
func (c *StringColumn) Append(v string) {
	c.data = append(c.data, v)
	c.nulls = append(c.nulls, false)
}
func (c *StringColumn) AppendNull() { c.data = append(c.data, ""); c.nulls = append(c.nulls, true) }

// Frame is a columnar container for tabular data.
type Frame struct {
	schema Schema
	cols   []Column
	index  map[string]int
	nrows  int
}

func NewFrame(s Schema) *Frame {
	f := &Frame{schema: s, cols: make([]Column, len(s.Columns)), index: make(map[string]int)}
	for i, cs := range s.Columns {
		switch cs.Kind {
		case KindInt:
			f.cols[i] = &IntColumn{name: cs.Name}
		case KindFloat:
			f.cols[i] = &FloatColumn{name: cs.Name}
		case KindString:
			f.cols[i] = &StringColumn{name: cs.Name}
		default:
			panic("invalid column kind")
		}
		f.index[cs.Name] = i
	}
	return f
}

func (f *Frame) Schema() Schema { return f.schema }
func (f *Frame) Rows() int      { return f.nrows }
func (f *Frame) Cols() int      { return len(f.cols) }

func (f *Frame) Column(i int) Column { return f.cols[i] }

func (f *Frame) ColumnByName(name string) (Column, bool) {
	i, ok := f.index[name]
	if !ok {
		return nil, false
	}
	return f.cols[i], true
}

// AppendRow appends one row. cells must align with the schema; a nil cell
// becomes a null. Accepted cell types per kind: int64 (int), float64 or
// int64 (float), string (string). The frame is unchanged on error.
func (f *Frame) AppendRow(cells []any) error {
	if len(cells) != len(f.cols) {
		return fmt.Errorf("table: row has %d cells, schema has %d columns", len(cells), len(f.cols))
	}
	for i, v := range cells {
		if v == nil {
			continue
		}
		switch c := f.cols[i].(type) {
		case *IntColumn:
			if _, ok := v.(int64); !ok {
				return fmt.Errorf("table: column %s expects int64, got %T", c.name, v)
			}
		case *FloatColumn:
			switch v.(type) {
			case float64, int64:
			default:
				return fmt.Errorf("table: column %s expects float64, got %T", c.name, v)
			}
		case *StringColumn:
			if _, ok := v.(string); !ok {
				return fmt.Errorf("table: column %s expects string, got %T", c.name, v)
			}
		}
	}
	for i, v := range cells {
		if v == nil {
			switch c := f.cols[i].(type) {
			case *IntColumn:
				c.AppendNull()
			case *FloatColumn:
				c.AppendNull()
			case *StringColumn:
				c.AppendNull()
			}
			continue
		}
		switch c := f.cols[i].(type) {
		case *IntColumn:
			c.Append(v.(int64))
		case *FloatColumn:
			switch x := v.(type) {
			case float64:
				c.Append(x)
			case int64:
				c.Append(float64(x))
			}
		case *StringColumn:
			c.Append(v.(string))
		}
	}
	f.nrows++
	return nil
}

// StringCell renders the cell at (row, col) for delimited output. Null cells
// render as the empty string with ok=false.
func (f *Frame) StringCell(row, col int) (string, bool) {
	switch c := f.cols[col].(type) {
	case *IntColumn:
		if v, ok := c.Get(row); ok {
			return strconv.FormatInt(v, 10), true
		}
	case *FloatColumn:
		if v, ok := c.Get(row); ok {
			return strconv.FormatFloat(v, 'g', -1, 64), true
		}
	case *StringColumn:
		if v, ok := c.Get(row); ok {
			return v, true
		}
	}
	return "", false
}

// Cell returns the typed value at (row, col), or nil for a null cell.
func (f *Frame) Cell(row, col int) any {
	switch c := f.cols[col].(type) {
	case *IntColumn:
		if v, ok := c.Get(row); ok {
			return v
		}
	case *FloatColumn:
		if v, ok := c.Get(row); ok {
			return v
		}
	case *StringColumn:
		if v, ok := c.Get(row); ok {
			return v
		}
	}
	return nil
}
