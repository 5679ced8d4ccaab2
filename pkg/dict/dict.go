// Package dict loads the census data dictionary: for each field, either an
// enumerated code-to-label mapping or a numeric range with optional sentinel
// codes. The dictionary's declared field order fixes the column order of
// every downstream table.
package dict

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
)

// Kind discriminates the two field-spec variants.
type Kind int

const (
	Categorical Kind = iota
	Ranged
)

// Field is one entry of the dictionary.
type Field struct {
	Name string
	Kind Kind

	// Categorical: raw code -> label, with declared code order.
	Codes  []string
	Labels map[string]string

	// Ranged: closed interval plus sentinel codes valid by special rule.
	Min           float64
	Max           float64
	SentinelCodes []string
	Sentinels     map[string]string
}

// IntegralRange reports whether both bounds are whole numbers, in which case
// raw values are expected to be integers.
func (f Field) IntegralRange() bool {
	return f.Min == math.Trunc(f.Min) && f.Max == math.Trunc(f.Max)
}

// Dictionary is the loaded schema: ordered fields with O(1) lookup by name.
type Dictionary struct {
	fields []Field
	index  map[string]int
}

func newDictionary(fields []Field) *Dictionary {
	d := &Dictionary{fields: fields, index: make(map[string]int, len(fields))}
	for i, f := range fields {
		d.index[f.Name] = i
	}
	return d
}

func (d *Dictionary) Len() int { return len(d.fields) }

// Fields returns all field specs in document order.
func (d *Dictionary) Fields() []Field { return d.fields }

func (d *Dictionary) Field(name string) (Field, bool) {
	i, ok := d.index[name]
	if !ok {
		return Field{}, false
	}
	return d.fields[i], true
}

func (d *Dictionary) Has(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Names returns the field names in document order.
func (d *Dictionary) Names() []string {
	names := make([]string, len(d.fields))
	for i, f := range d.fields {
		names[i] = f.Name
	}
	return names
}

// FormatError reports a structurally malformed dictionary document.
type FormatError struct {
	Path   string // source file, if loaded from one
	Field  string // offending field, if known
	Reason string
}

func (e *FormatError) Error() string {
	var b strings.Builder
	b.WriteString("dictionary")
	if e.Path != "" {
		fmt.Fprintf(&b, " %s", e.Path)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, ": field %q", e.Field)
	}
	fmt.Fprintf(&b, ": %s", e.Reason)
	return b.String()
}

// Load reads a dictionary file, choosing the parser by extension:
// .yaml/.yml for YAML, anything else is treated as JSON.
func Load(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var d *Dictionary
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		d, err = ParseYAML(f)
	default:
		d, err = ParseJSON(f)
	}
	if err != nil {
		if fe, ok := err.(*FormatError); ok {
			fe.Path = path
		}
		return nil, err
	}
	return d, nil
}
