package ioutils

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestPlainRoundTrip(t *testing.T) {
	p := filepath.Join(t.TempDir(), "data.csv")
	w, err := CreateMaybeCompressed(p)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte("a,b\n1,2\n")); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	r, err := OpenMaybeCompressed(p)
	if err != nil {
		t.Fatal(err)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
	if string(b) != "a,b\n1,2\n" {
		t.Fatalf("content mismatch: %q", b)
	}
}

func TestGzipRoundTrip(t *testing.T) {
	p := filepath.Join(t.TempDir(), "data.csv.gz")
	w, err := CreateMaybeCompressed(p)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte("a,b\n1,2\n")); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	// the file on disk is compressed
	raw, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if len(raw) < 2 || raw[0] != 0x1f || raw[1] != 0x8b {
		t.Fatal("expected a gzip file on disk")
	}

	r, err := OpenMaybeCompressed(p)
	if err != nil {
		t.Fatal(err)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	_ = r.Close()
	if string(b) != "a,b\n1,2\n" {
		t.Fatalf("content mismatch: %q", b)
	}
}

func TestGzipSniffWithoutExtension(t *testing.T) {
	dir := t.TempDir()
	gz := filepath.Join(dir, "data.csv.gz")
	w, err := CreateMaybeCompressed(gz)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte("hello")); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	// rename away the extension; the magic bytes still identify it
	plain := filepath.Join(dir, "data.bin")
	if err := os.Rename(gz, plain); err != nil {
		t.Fatal(err)
	}
	r, err := OpenMaybeCompressed(plain)
	if err != nil {
		t.Fatal(err)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	_ = r.Close()
	if string(b) != "hello" {
		t.Fatalf("content mismatch: %q", b)
	}
}
