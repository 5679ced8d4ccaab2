// Package golearn converts refined frames to and from golearn
// DenseInstances, the tabular contract the statistical consumers of the
// refined dataset work against.
package golearn

import (
	"fmt"

	"github.com/sjwhitworth/golearn/base"

	"github.com/statloom/refinery/pkg/table"
)

// ToDenseInstances converts a frame into golearn DenseInstances. classColumn
// names the attribute marked as the class; empty selects the last column.
func ToDenseInstances(f *table.Frame, classColumn string) (*base.DenseInstances, error) {
	cols := f.Schema().Columns
	if len(cols) == 0 {
		return nil, fmt.Errorf("golearn adapter: frame has no columns")
	}
	classIdx := len(cols) - 1
	attrs := make([]base.Attribute, len(cols))
	for i, cs := range cols {
		switch cs.Kind {
		case table.KindInt, table.KindFloat:
			attrs[i] = base.NewFloatAttribute(cs.Name)
		default:
			ca := new(base.CategoricalAttribute)
			ca.SetName(cs.Name)
			attrs[i] = ca
		}
		if cs.Name == classColumn {
			classIdx = i
		}
	}
	if classColumn != "" && cols[classIdx].Name != classColumn {
		return nil, fmt.Errorf("golearn adapter: no column %q", classColumn)
	}

	inst := base.NewDenseInstances()
	specs := make([]base.AttributeSpec, len(attrs))
	for i, a := range attrs {
		specs[i] = inst.AddAttribute(a)
	}
	if err := inst.Extend(f.Rows()); err != nil {
		return nil, err
	}

	for r := 0; r < f.Rows(); r++ {
		for c, cs := range cols {
			switch cs.Kind {
			case table.KindInt, table.KindFloat:
				switch v := f.Cell(r, c).(type) {
				case int64:
					inst.Set(specs[c], r, base.PackFloatToBytes(float64(v)))
				case float64:
					inst.Set(specs[c], r, base.PackFloatToBytes(v))
				}
			default:
				if v, ok := f.Cell(r, c).(string); ok {
					inst.Set(specs[c], r, base.Attribute.GetSysValFromString(attrs[c], v))
				}
			}
		}
	}
	if err := inst.AddClassAttribute(attrs[classIdx]); err != nil {
		return nil, err
	}
	return inst, nil
}

// FromDenseInstances converts golearn DenseInstances back into a frame.
func FromDenseInstances(inst *base.DenseInstances) (*table.Frame, error) {
	attrs := inst.AllAttributes()
	schema := table.Schema{Columns: make([]table.ColumnSchema, len(attrs))}
	specs := make([]base.AttributeSpec, len(attrs))
	for i, a := range attrs {
		k := table.KindString
		if a.GetType() == base.Float64Type {
			k = table.KindFloat
		}
		schema.Columns[i] = table.ColumnSchema{Name: a.GetName(), Kind: k}
		spec, err := inst.GetAttribute(a)
		if err != nil {
			return nil, err
		}
		specs[i] = spec
	}
	f := table.NewFrame(schema)
	_, nrows := inst.Size()
	cells := make([]any, len(attrs))
	for r := 0; r < nrows; r++ {
		for c, cs := range schema.Columns {
			if cs.Kind == table.KindFloat {
				cells[c] = base.UnpackBytesToFloat(inst.Get(specs[c], r))
			} else {
				cells[c] = base.Attribute.GetStringFromSysVal(specs[c].GetAttribute(), inst.Get(specs[c], r))
			}
		}
		if err := f.AppendRow(cells); err != nil {
			return nil, err
		}
	}
	return f, nil
}
