package dict

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// ParseJSON parses a dictionary document. The top level is an object keyed by
// field name; each value is either a code->label object (categorical) or an
// object with numeric "min" and "max" and an optional "sentinels" object
// (ranged). encoding/json maps do not keep key order, so the document is
// walked token by token instead.
func ParseJSON(r io.Reader) (*Dictionary, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, &FormatError{Reason: "invalid JSON: " + err.Error()}
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, &FormatError{Reason: "top level must be an object of field specs"}
	}

	var fields []Field
	seen := map[string]bool{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, &FormatError{Reason: "invalid JSON: " + err.Error()}
		}
		name := tok.(string)
		if seen[name] {
			return nil, &FormatError{Field: name, Reason: "duplicate field"}
		}
		seen[name] = true
		f, err := parseFieldJSON(dec, name)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	if _, err := dec.Token(); err != nil {
		return nil, &FormatError{Reason: "invalid JSON: " + err.Error()}
	}
	if len(fields) == 0 {
		return nil, &FormatError{Reason: "document defines no fields"}
	}
	return newDictionary(fields), nil
}

// jsonEntry is one key/value pair of a field-spec object, in document order.
type jsonEntry struct {
	key  string
	str  string
	num  json.Number
	obj  []jsonEntry // nested object (sentinels)
	kind byte        // 's', 'n', 'o'
}

func parseFieldJSON(dec *json.Decoder, field string) (Field, error) {
	entries, err := parseObjectJSON(dec, field, true)
	if err != nil {
		return Field{}, err
	}
	if len(entries) == 0 {
		return Field{}, &FormatError{Field: field, Reason: "spec object is empty"}
	}

	var minE, maxE *jsonEntry
	for i := range entries {
		switch entries[i].key {
		case "min":
			if entries[i].kind == 'n' {
				minE = &entries[i]
			}
		case "max":
			if entries[i].kind == 'n' {
				maxE = &entries[i]
			}
		}
	}

	if minE != nil && maxE != nil {
		return buildRanged(field, entries)
	}
	return buildCategorical(field, entries)
}

// parseObjectJSON consumes one JSON object, preserving entry order.
// nested controls whether one level of child objects is accepted.
func parseObjectJSON(dec *json.Decoder, field string, nested bool) ([]jsonEntry, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, &FormatError{Field: field, Reason: "invalid JSON: " + err.Error()}
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, &FormatError{Field: field, Reason: "spec must be an object"}
	}
	var entries []jsonEntry
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, &FormatError{Field: field, Reason: "invalid JSON: " + err.Error()}
		}
		key := tok.(string)
		tok, err = dec.Token()
		if err != nil {
			return nil, &FormatError{Field: field, Reason: "invalid JSON: " + err.Error()}
		}
		e := jsonEntry{key: key}
		switch v := tok.(type) {
		case string:
			e.kind = 's'
			e.str = v
		case json.Number:
			e.kind = 'n'
			e.num = v
		case json.Delim:
			if v != '{' || !nested {
				return nil, &FormatError{Field: field, Reason: fmt.Sprintf("unexpected nesting at key %q", key)}
			}
			e.kind = 'o'
			// rewind is not possible; re-walk the child inline
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, &FormatError{Field: field, Reason: "invalid JSON: " + err.Error()}
				}
				vt, err := dec.Token()
				if err != nil {
					return nil, &FormatError{Field: field, Reason: "invalid JSON: " + err.Error()}
				}
				s, ok := vt.(string)
				if !ok {
					return nil, &FormatError{Field: field, Reason: fmt.Sprintf("value for %q.%v must be a string", key, kt)}
				}
				e.obj = append(e.obj, jsonEntry{key: kt.(string), kind: 's', str: s})
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return nil, &FormatError{Field: field, Reason: "invalid JSON: " + err.Error()}
			}
		default:
			return nil, &FormatError{Field: field, Reason: fmt.Sprintf("value for key %q must be a string, number, or object", key)}
		}
		entries = append(entries, e)
	}
	if _, err := dec.Token(); err != nil { // consume '}'
		return nil, &FormatError{Field: field, Reason: "invalid JSON: " + err.Error()}
	}
	return entries, nil
}

func buildRanged(field string, entries []jsonEntry) (Field, error) {
	f := Field{Name: field, Kind: Ranged, Sentinels: map[string]string{}}
	var haveMin, haveMax bool
	for _, e := range entries {
		switch e.key {
		case "min":
			v, err := strconv.ParseFloat(e.num.String(), 64)
			if err != nil {
				return Field{}, &FormatError{Field: field, Reason: "min is not numeric"}
			}
			f.Min, haveMin = v, true
		case "max":
			v, err := strconv.ParseFloat(e.num.String(), 64)
			if err != nil {
				return Field{}, &FormatError{Field: field, Reason: "max is not numeric"}
			}
			f.Max, haveMax = v, true
		case "sentinels":
			if e.kind != 'o' {
				return Field{}, &FormatError{Field: field, Reason: "sentinels must be an object"}
			}
			for _, s := range e.obj {
				if _, dup := f.Sentinels[s.key]; dup {
					return Field{}, &FormatError{Field: field, Reason: fmt.Sprintf("duplicate sentinel code %q", s.key)}
				}
				f.SentinelCodes = append(f.SentinelCodes, s.key)
				f.Sentinels[s.key] = s.str
			}
		default:
			return Field{}, &FormatError{Field: field, Reason: fmt.Sprintf("unexpected key %q in ranged spec", e.key)}
		}
	}
	if !haveMin || !haveMax {
		return Field{}, &FormatError{Field: field, Reason: "ranged spec requires numeric min and max"}
	}
	if f.Min > f.Max {
		return Field{}, &FormatError{Field: field, Reason: "min exceeds max"}
	}
	return f, nil
}

func buildCategorical(field string, entries []jsonEntry) (Field, error) {
	f := Field{Name: field, Kind: Categorical, Labels: map[string]string{}}
	for _, e := range entries {
		if e.kind != 's' {
			return Field{}, &FormatError{Field: field, Reason: fmt.Sprintf("label for code %q must be a string", e.key)}
		}
		if _, dup := f.Labels[e.key]; dup {
			return Field{}, &FormatError{Field: field, Reason: fmt.Sprintf("duplicate code %q", e.key)}
		}
		f.Codes = append(f.Codes, e.key)
		f.Labels[e.key] = e.str
	}
	return f, nil
}
