package refine

import (
	"strings"
	"testing"

	"github.com/statloom/refinery/pkg/dict"
	"github.com/statloom/refinery/pkg/table"
)

const censusDict = `{
  "SEX": {"1": "Male", "2": "Female"},
  "AGE": {"min": 0, "max": 120, "sentinels": {"-9": "Not Stated"}},
  "TENURE": {"0": "Owned", "1": "Rented"}
}`

func mustDict(t *testing.T) *dict.Dictionary {
	t.Helper()
	d, err := dict.ParseJSON(strings.NewReader(censusDict))
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestBindMissingFields(t *testing.T) {
	d := mustDict(t)
	_, _, err := OutputSchemas(d, []string{"SEX", "TENURE"})
	he, ok := err.(*HeaderError)
	if !ok {
		t.Fatalf("expected *HeaderError, got %v", err)
	}
	if len(he.Missing) != 1 || he.Missing[0] != "AGE" {
		t.Fatalf("expected AGE reported missing, got %v", he.Missing)
	}
}

func TestOutputSchemas(t *testing.T) {
	d := mustDict(t)
	// source order differs from dictionary order and carries an extra column
	refined, removed, err := OutputSchemas(d, []string{"SerialNum", "AGE", "SEX", "TENURE"})
	if err != nil {
		t.Fatal(err)
	}
	// dictionary fields first, in dictionary order, then pass-through
	want := []string{"SEX", "AGE", "TENURE", "SerialNum"}
	if got := refined.Names(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("refined columns %v, want %v", got, want)
	}
	rn := removed.Names()
	if len(rn) != 7 || rn[len(rn)-1] != RejectReasonCol {
		t.Fatalf("removed columns wrong: %v", rn)
	}
}

func TestProcessFirstFailureWins(t *testing.T) {
	d := mustDict(t)
	b, err := bind(d, []string{"SEX", "AGE", "TENURE"})
	if err != nil {
		t.Fatal(err)
	}

	// SEX (dictionary-earlier) and AGE both invalid: SEX must be cited
	_, ferr := b.process([]string{"9", "200", "0"})
	if ferr == nil {
		t.Fatal("expected a rejection")
	}
	if ferr.Field != "SEX" || ferr.Reason != ReasonUnmapped {
		t.Fatalf("first failing field in dictionary order should win, got %+v", ferr)
	}

	// the same holds when the source column order is reversed
	b2, err := bind(d, []string{"TENURE", "AGE", "SEX"})
	if err != nil {
		t.Fatal(err)
	}
	_, ferr = b2.process([]string{"0", "200", "9"})
	if ferr == nil || ferr.Field != "SEX" {
		t.Fatalf("dictionary order, not source order, decides: %+v", ferr)
	}
}

func TestProcessRecodesInDictionaryOrder(t *testing.T) {
	d := mustDict(t)
	b, err := bind(d, []string{"SerialNum", "TENURE", "AGE", "SEX"})
	if err != nil {
		t.Fatal(err)
	}
	cells, ferr := b.process([]string{"A17", "1", "-9", "2"})
	if ferr != nil {
		t.Fatal(ferr)
	}
	if len(cells) != 4 {
		t.Fatalf("expected 4 cells, got %d", len(cells))
	}
	if cells[0] != "Female" || cells[1] != "Not Stated" || cells[2] != "Rented" || cells[3] != "A17" {
		t.Fatalf("recoded cells wrong: %v", cells)
	}
}

func TestProcessShortRecord(t *testing.T) {
	d := mustDict(t)
	b, err := bind(d, []string{"SEX", "AGE", "TENURE"})
	if err != nil {
		t.Fatal(err)
	}
	_, ferr := b.process([]string{"1", "34"})
	if ferr == nil || ferr.Reason != ReasonMissing || ferr.Field != "TENURE" {
		t.Fatalf("short record should reject the missing field, got %+v", ferr)
	}
}

func TestRemovedCellsPadShortRecords(t *testing.T) {
	d := mustDict(t)
	b, err := bind(d, []string{"SEX", "AGE", "TENURE"})
	if err != nil {
		t.Fatal(err)
	}
	ferr := &FieldError{Field: "TENURE", Raw: "", Reason: ReasonMissing}
	cells := b.removedCells([]string{"1", "34"}, ferr)
	if len(cells) != 6 {
		t.Fatalf("expected 6 cells, got %d", len(cells))
	}
	if cells[2] != nil {
		t.Fatalf("missing source cell should be null, got %v", cells[2])
	}
	if cells[3] != "TENURE" || cells[5] != ReasonMissing {
		t.Fatalf("rejection triplet wrong: %v", cells[3:])
	}

	fr := table.NewFrame(b.removedSchema())
	if err := fr.AppendRow(cells); err != nil {
		t.Fatal(err)
	}
}
