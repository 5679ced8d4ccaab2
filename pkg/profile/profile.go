// Package profile summarises refined frames for the run report: numeric
// stats per column and labelled value counts, the same figures the census
// analysis notebooks chart downstream.
package profile

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/statloom/refinery/pkg/table"
)

type NumStats struct {
	Count int
	Nulls int
	Min   float64
	Max   float64
	Sum   float64
}

func (s NumStats) Mean() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.Sum / float64(s.Count)
}

type LabelStats struct {
	Count int
	Nulls int
	Freqs map[string]int
}

type ColumnProfile struct {
	Name  string
	Kind  table.Kind
	Num   *NumStats
	Label *LabelStats
}

// Collector accumulates column profiles across frames; it can sit behind a
// streaming sink and consume each refined chunk as it passes.
type Collector struct {
	cols  []ColumnProfile
	index map[string]int
	topK  int
}

func NewCollector(schema table.Schema, topK int) *Collector {
	c := &Collector{index: make(map[string]int), topK: topK}
	c.cols = make([]ColumnProfile, len(schema.Columns))
	for i, cs := range schema.Columns {
		cp := ColumnProfile{Name: cs.Name, Kind: cs.Kind}
		switch cs.Kind {
		case table.KindInt, table.KindFloat:
			cp.Num = &NumStats{Min: math.Inf(1), Max: math.Inf(-1)}
		default:
			cp.Label = &LabelStats{Freqs: make(map[string]int)}
		}
		c.cols[i] = cp
		c.index[cs.Name] = i
	}
	return c
}

func (c *Collector) ConsumeFrame(f *table.Frame) {
	for ci, cs := range f.Schema().Columns {
		idx, ok := c.index[cs.Name]
		if !ok {
			continue
		}
		cp := &c.cols[idx]
		col := f.Column(ci)
		switch cc := col.(type) {
		case *table.IntColumn:
			for i := 0; i < cc.Len(); i++ {
				v, ok := cc.Get(i)
				if !ok {
					cp.Num.Nulls++
					continue
				}
				cp.Num.Count++
				fv := float64(v)
				if fv < cp.Num.Min {
					cp.Num.Min = fv
				}
				if fv > cp.Num.Max {
					cp.Num.Max = fv
				}
				cp.Num.Sum += fv
			}
		case *table.FloatColumn:
			for i := 0; i < cc.Len(); i++ {
				v, ok := cc.Get(i)
				if !ok {
					cp.Num.Nulls++
					continue
				}
				cp.Num.Count++
				if v < cp.Num.Min {
					cp.Num.Min = v
				}
				if v > cp.Num.Max {
					cp.Num.Max = v
				}
				cp.Num.Sum += v
			}
		case *table.StringColumn:
			for i := 0; i < cc.Len(); i++ {
				v, ok := cc.Get(i)
				if !ok {
					cp.Label.Nulls++
					continue
				}
				cp.Label.Count++
				cp.Label.Freqs[v]++
			}
		}
	}
}

// Columns exposes the accumulated profiles in schema order.
func (c *Collector) Columns() []ColumnProfile { return c.cols }

// TopValues returns the most frequent values of a label column, by count
// descending with value as the tie break.
func (c *Collector) TopValues(name string, n int) ([]string, []int) {
	idx, ok := c.index[name]
	if !ok || c.cols[idx].Label == nil {
		return nil, nil
	}
	type kv struct {
		k string
		v int
	}
	freqs := c.cols[idx].Label.Freqs
	arr := make([]kv, 0, len(freqs))
	for k, v := range freqs {
		arr = append(arr, kv{k, v})
	}
	sort.Slice(arr, func(i, j int) bool {
		if arr[i].v != arr[j].v {
			return arr[i].v > arr[j].v
		}
		return arr[i].k < arr[j].k
	})
	if n <= 0 || n > len(arr) {
		n = len(arr)
	}
	vals := make([]string, n)
	counts := make([]int, n)
	for i := 0; i < n; i++ {
		vals[i], counts[i] = arr[i].k, arr[i].v
	}
	return vals, counts
}

func (c *Collector) ReportText() string {
	var b strings.Builder
	b.WriteString("Refined data summary\n")
	for _, cp := range c.cols {
		fmt.Fprintf(&b, "- %s (%s): ", cp.Name, cp.Kind)
		switch {
		case cp.Num != nil:
			fmt.Fprintf(&b, "count=%d nulls=%d min=%.6g max=%.6g mean=%.6g\n",
				cp.Num.Count, cp.Num.Nulls, cp.Num.Min, cp.Num.Max, cp.Num.Mean())
		default:
			fmt.Fprintf(&b, "count=%d nulls=%d\n", cp.Label.Count, cp.Label.Nulls)
			vals, counts := c.TopValues(cp.Name, c.topK)
			for i := range vals {
				fmt.Fprintf(&b, "    %q: %d\n", vals[i], counts[i])
			}
		}
	}
	return b.String()
}

type JSONProfile struct {
	Columns []JSONColumn `json:"columns"`
}

type JSONColumn struct {
	Name string         `json:"name"`
	Kind string         `json:"kind"`
	Num  *NumStats      `json:"num,omitempty"`
	Top  map[string]int `json:"top,omitempty"`
}

func (c *Collector) ReportJSON() JSONProfile {
	out := JSONProfile{Columns: make([]JSONColumn, 0, len(c.cols))}
	for _, cp := range c.cols {
		jc := JSONColumn{Name: cp.Name, Kind: cp.Kind.String()}
		if cp.Num != nil {
			jc.Num = cp.Num
		} else if len(cp.Label.Freqs) > 0 {
			jc.Top = cp.Label.Freqs
		}
		out.Columns = append(out.Columns, jc)
	}
	return out
}

// RejectionReport renders the per-field and per-reason rejection counts the
// CLI prints after a run.
func RejectionReport(byField, byReason map[string]int) string {
	if len(byField) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Rejections by field:\n")
	for _, k := range sortedKeys(byField) {
		fmt.Fprintf(&b, "  %s: %d\n", k, byField[k])
	}
	b.WriteString("Rejections by reason:\n")
	for _, k := range sortedKeys(byReason) {
		fmt.Fprintf(&b, "  %s: %d\n", k, byReason[k])
	}
	return b.String()
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
