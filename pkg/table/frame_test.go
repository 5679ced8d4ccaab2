package table

import "testing"

func demoSchema() Schema {
	return Schema{Columns: []ColumnSchema{
		{Name: "label", Kind: KindString},
		{Name: "count", Kind: KindInt},
		{Name: "rate", Kind: KindFloat},
	}}
}

func TestAppendRowAndCells(t *testing.T) {
	f := NewFrame(demoSchema())
	if err := f.AppendRow([]any{"a", int64(3), 0.5}); err != nil {
		t.Fatal(err)
	}
	if err := f.AppendRow([]any{nil, nil, int64(2)}); err != nil {
		t.Fatal(err)
	}
	if f.Rows() != 2 || f.Cols() != 3 {
		t.Fatalf("frame is %dx%d", f.Rows(), f.Cols())
	}

	if v, ok := f.StringCell(0, 0); !ok || v != "a" {
		t.Fatalf("cell (0,0) = %q, %v", v, ok)
	}
	if v, ok := f.StringCell(0, 1); !ok || v != "3" {
		t.Fatalf("cell (0,1) = %q, %v", v, ok)
	}
	if v, ok := f.StringCell(1, 0); ok || v != "" {
		t.Fatalf("null cell should render empty, got %q, %v", v, ok)
	}
	// int64 is accepted into a float column
	if v, ok := f.StringCell(1, 2); !ok || v != "2" {
		t.Fatalf("cell (1,2) = %q, %v", v, ok)
	}

	if v := f.Cell(0, 1); v != int64(3) {
		t.Fatalf("typed cell = %T %v", v, v)
	}
	if v := f.Cell(1, 1); v != nil {
		t.Fatalf("null typed cell = %v", v)
	}
}

func TestAppendRowErrors(t *testing.T) {
	f := NewFrame(demoSchema())
	if err := f.AppendRow([]any{"a", int64(1)}); err == nil {
		t.Fatal("short row must be rejected")
	}
	if err := f.AppendRow([]any{"a", "not an int", 0.5}); err == nil {
		t.Fatal("mistyped cell must be rejected")
	}
	if f.Rows() != 0 {
		t.Fatalf("failed appends must not grow the frame, rows=%d", f.Rows())
	}
}

func TestColumnByName(t *testing.T) {
	f := NewFrame(demoSchema())
	col, ok := f.ColumnByName("count")
	if !ok || col.Kind() != KindInt {
		t.Fatalf("lookup failed: %v %v", col, ok)
	}
	if _, ok := f.ColumnByName("nope"); ok {
		t.Fatal("unknown column should not resolve")
	}
}
