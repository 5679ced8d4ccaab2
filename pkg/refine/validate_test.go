package refine

import (
	"testing"

	"github.com/statloom/refinery/pkg/dict"
	"github.com/statloom/refinery/pkg/table"
)

func categoricalSex() dict.Field {
	return dict.Field{
		Name:   "SEX",
		Kind:   dict.Categorical,
		Codes:  []string{"1", "2"},
		Labels: map[string]string{"1": "Male", "2": "Female"},
	}
}

func rangedAge() dict.Field {
	return dict.Field{
		Name:          "AGE",
		Kind:          dict.Ranged,
		Min:           0,
		Max:           120,
		SentinelCodes: []string{"-9"},
		Sentinels:     map[string]string{"-9": "Not Stated"},
	}
}

func TestRecodeCategorical(t *testing.T) {
	spec := categoricalSex()

	v, ferr := Recode(spec, "1")
	if ferr != nil {
		t.Fatal(ferr)
	}
	if v != "Male" {
		t.Fatalf("expected label Male, got %v", v)
	}

	if _, ferr := Recode(spec, "9"); ferr == nil || ferr.Reason != ReasonUnmapped {
		t.Fatalf("code 9 should fail as %q, got %v", ReasonUnmapped, ferr)
	}

	// whitespace around a valid code is not a defect of the value
	if v, ferr := Recode(spec, " 2 "); ferr != nil || v != "Female" {
		t.Fatalf("expected Female, got %v (%v)", v, ferr)
	}
}

func TestRecodeRangedWithSentinel(t *testing.T) {
	spec := rangedAge()

	if _, ferr := Recode(spec, "130"); ferr == nil || ferr.Reason != ReasonOutOfRange {
		t.Fatalf("130 should fail as %q, got %v", ReasonOutOfRange, ferr)
	}
	if v, ferr := Recode(spec, "-9"); ferr != nil || v != "Not Stated" {
		t.Fatalf("sentinel should recode to its label, got %v (%v)", v, ferr)
	}
	if v, ferr := Recode(spec, "45"); ferr != nil || v != "45" {
		t.Fatalf("in-range value keeps its textual form, got %v (%v)", v, ferr)
	}
	if _, ferr := Recode(spec, "abc"); ferr == nil || ferr.Reason != ReasonTypeMismatch {
		t.Fatalf("non-numeric should fail as %q, got %v", ReasonTypeMismatch, ferr)
	}
}

func TestRecodeCleanIntegralRange(t *testing.T) {
	spec := dict.Field{Name: "ROOMS", Kind: dict.Ranged, Min: 1, Max: 20}

	v, ferr := Recode(spec, "4")
	if ferr != nil {
		t.Fatal(ferr)
	}
	if v != int64(4) {
		t.Fatalf("expected int64 4, got %T %v", v, v)
	}
	if _, ferr := Recode(spec, "4.5"); ferr == nil || ferr.Reason != ReasonTypeMismatch {
		t.Fatalf("fractional value in an integer range should fail as %q, got %v", ReasonTypeMismatch, ferr)
	}
	if _, ferr := Recode(spec, "0"); ferr == nil || ferr.Reason != ReasonOutOfRange {
		t.Fatalf("0 is below min, got %v", ferr)
	}
}

func TestRecodeCleanFloatRange(t *testing.T) {
	spec := dict.Field{Name: "HOURS", Kind: dict.Ranged, Min: 0, Max: 99.5}

	v, ferr := Recode(spec, "37.5")
	if ferr != nil {
		t.Fatal(ferr)
	}
	if v != 37.5 {
		t.Fatalf("expected 37.5, got %v", v)
	}
	// bounds are inclusive
	if _, ferr := Recode(spec, "99.5"); ferr != nil {
		t.Fatalf("max is valid: %v", ferr)
	}
	if _, ferr := Recode(spec, "0"); ferr != nil {
		t.Fatalf("min is valid: %v", ferr)
	}
}

func TestRecodeDeterministic(t *testing.T) {
	spec := rangedAge()
	for i := 0; i < 3; i++ {
		v, ferr := Recode(spec, "-9")
		if ferr != nil || v != "Not Stated" {
			t.Fatalf("run %d differed: %v (%v)", i, v, ferr)
		}
		_, ferr = Recode(spec, "200")
		if ferr == nil || ferr.Reason != ReasonOutOfRange {
			t.Fatalf("run %d differed: %v", i, ferr)
		}
	}
}

func TestColumnKind(t *testing.T) {
	if k := ColumnKind(categoricalSex()); k != table.KindString {
		t.Fatalf("categorical should map to string, got %v", k)
	}
	if k := ColumnKind(rangedAge()); k != table.KindString {
		t.Fatalf("sentinel-bearing range should map to string, got %v", k)
	}
	if k := ColumnKind(dict.Field{Kind: dict.Ranged, Min: 0, Max: 10}); k != table.KindInt {
		t.Fatalf("integral range should map to int, got %v", k)
	}
	if k := ColumnKind(dict.Field{Kind: dict.Ranged, Min: 0, Max: 9.5}); k != table.KindFloat {
		t.Fatalf("fractional range should map to float, got %v", k)
	}
}
