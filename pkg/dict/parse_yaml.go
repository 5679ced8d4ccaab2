package dict

import (
	"fmt"
	"io"
	"strconv"

	yaml "gopkg.in/yaml.v3"
)

// ParseYAML parses the same document shape as ParseJSON from YAML. The Node
// API is used directly because mapping order must survive decoding.
func ParseYAML(r io.Reader) (*Dictionary, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, &FormatError{Reason: "document defines no fields"}
		}
		return nil, &FormatError{Reason: "invalid YAML: " + err.Error()}
	}
	root := &doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return nil, &FormatError{Reason: "document defines no fields"}
		}
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, &FormatError{Reason: "top level must be a mapping of field specs"}
	}

	var fields []Field
	seen := map[string]bool{}
	for i := 0; i < len(root.Content); i += 2 {
		name := root.Content[i].Value
		if seen[name] {
			return nil, &FormatError{Field: name, Reason: "duplicate field"}
		}
		seen[name] = true
		f, err := parseFieldYAML(name, root.Content[i+1])
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	if len(fields) == 0 {
		return nil, &FormatError{Reason: "document defines no fields"}
	}
	return newDictionary(fields), nil
}

func parseFieldYAML(field string, n *yaml.Node) (Field, error) {
	if n.Kind != yaml.MappingNode {
		return Field{}, &FormatError{Field: field, Reason: "spec must be a mapping"}
	}
	if len(n.Content) == 0 {
		return Field{}, &FormatError{Field: field, Reason: "spec mapping is empty"}
	}

	var hasMin, hasMax bool
	for i := 0; i < len(n.Content); i += 2 {
		k, v := n.Content[i].Value, n.Content[i+1]
		if (k == "min" || k == "max") && v.Kind == yaml.ScalarNode {
			if _, err := strconv.ParseFloat(v.Value, 64); err == nil {
				if k == "min" {
					hasMin = true
				} else {
					hasMax = true
				}
			}
		}
	}
	ranged := hasMin && hasMax

	if !ranged {
		f := Field{Name: field, Kind: Categorical, Labels: map[string]string{}}
		for i := 0; i < len(n.Content); i += 2 {
			code, v := n.Content[i].Value, n.Content[i+1]
			if v.Kind != yaml.ScalarNode {
				return Field{}, &FormatError{Field: field, Reason: fmt.Sprintf("label for code %q must be a scalar", code)}
			}
			if _, dup := f.Labels[code]; dup {
				return Field{}, &FormatError{Field: field, Reason: fmt.Sprintf("duplicate code %q", code)}
			}
			f.Codes = append(f.Codes, code)
			f.Labels[code] = v.Value
		}
		return f, nil
	}

	f := Field{Name: field, Kind: Ranged, Sentinels: map[string]string{}}
	for i := 0; i < len(n.Content); i += 2 {
		k, v := n.Content[i].Value, n.Content[i+1]
		switch k {
		case "min":
			x, err := strconv.ParseFloat(v.Value, 64)
			if err != nil {
				return Field{}, &FormatError{Field: field, Reason: "min is not numeric"}
			}
			f.Min = x
		case "max":
			x, err := strconv.ParseFloat(v.Value, 64)
			if err != nil {
				return Field{}, &FormatError{Field: field, Reason: "max is not numeric"}
			}
			f.Max = x
		case "sentinels":
			if v.Kind != yaml.MappingNode {
				return Field{}, &FormatError{Field: field, Reason: "sentinels must be a mapping"}
			}
			for j := 0; j < len(v.Content); j += 2 {
				code, lv := v.Content[j].Value, v.Content[j+1]
				if lv.Kind != yaml.ScalarNode {
					return Field{}, &FormatError{Field: field, Reason: fmt.Sprintf("label for sentinel %q must be a scalar", code)}
				}
				if _, dup := f.Sentinels[code]; dup {
					return Field{}, &FormatError{Field: field, Reason: fmt.Sprintf("duplicate sentinel code %q", code)}
				}
				f.SentinelCodes = append(f.SentinelCodes, code)
				f.Sentinels[code] = lv.Value
			}
		default:
			return Field{}, &FormatError{Field: field, Reason: fmt.Sprintf("unexpected key %q in ranged spec", k)}
		}
	}
	if f.Min > f.Max {
		return Field{}, &FormatError{Field: field, Reason: "min exceeds max"}
	}
	return f, nil
}
