// Package refine applies a data dictionary to raw census records: each field
// is validated and recoded, each record is accepted into the refined stream
// or rejected into the removed stream with a reason.
package refine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/statloom/refinery/pkg/dict"
	"github.com/statloom/refinery/pkg/table"
)

// Rejection reasons. A record carries the reason of its first failing field.
const (
	ReasonUnmapped     = "unmapped code"
	ReasonTypeMismatch = "type mismatch"
	ReasonOutOfRange   = "out of range"
	ReasonMissing      = "missing field"
	ReasonDuplicate    = "duplicate key"
)

// FieldError reports one field value that failed validation. It is always
// recovered into a removed row, never a run-level failure.
type FieldError struct {
	Field  string
	Raw    string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s: %s (raw value %q)", e.Field, e.Reason, e.Raw)
}

// ColumnKind maps a field spec onto the column kind its recoded values take.
// Categorical fields recode to labels; ranged fields with sentinels mix
// numbers and sentinel labels, so they stay textual; clean ranges are
// numeric, integer when both bounds are whole.
func ColumnKind(f dict.Field) table.Kind {
	if f.Kind == dict.Categorical || len(f.Sentinels) > 0 {
		return table.KindString
	}
	if f.IntegralRange() {
		return table.KindInt
	}
	return table.KindFloat
}

// Recode validates one raw value against its field spec and returns the
// recoded value: a label string, a trimmed numeric string (sentinel-bearing
// ranges), or an int64/float64 (clean ranges). The returned value's type
// matches ColumnKind(f). Deterministic, no I/O.
func Recode(f dict.Field, raw string) (any, *FieldError) {
	v := strings.TrimSpace(raw)

	if f.Kind == dict.Categorical {
		if label, ok := f.Labels[v]; ok {
			return label, nil
		}
		return nil, &FieldError{Field: f.Name, Raw: raw, Reason: ReasonUnmapped}
	}

	if label, ok := f.Sentinels[v]; ok {
		return label, nil
	}

	if len(f.Sentinels) == 0 && f.IntegralRange() {
		x, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, &FieldError{Field: f.Name, Raw: raw, Reason: ReasonTypeMismatch}
		}
		if float64(x) < f.Min || float64(x) > f.Max {
			return nil, &FieldError{Field: f.Name, Raw: raw, Reason: ReasonOutOfRange}
		}
		return x, nil
	}

	x, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, &FieldError{Field: f.Name, Raw: raw, Reason: ReasonTypeMismatch}
	}
	if x < f.Min || x > f.Max {
		return nil, &FieldError{Field: f.Name, Raw: raw, Reason: ReasonOutOfRange}
	}
	if len(f.Sentinels) > 0 {
		// identity recode into the textual column
		return v, nil
	}
	return x, nil
}
