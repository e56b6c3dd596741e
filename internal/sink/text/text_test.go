package text

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"recpipe/internal/record"
)

/*
TestWriter_TrimsTrailingSpaces verifies that records are written one per line
with their fixed-width padding removed.
*/
func TestWriter_TrimsTrailingSpaces(t *testing.T) {
	var buf bytes.Buffer
	w, err := New("", &buf)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	recs := []record.Record{
		record.FromString("FIRST"),
		record.FromString("SECOND  RECORD"),
		record.New(), // fully blank
	}
	if err := w.Write(context.Background(), 1, recs); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	want := "FIRST\nSECOND  RECORD\n\n"
	if buf.String() != want {
		t.Fatalf("output = %q, want %q", buf.String(), want)
	}
}

/*
TestWriter_File verifies the file-backed path: output lands on disk only
after Close flushes the buffer.
*/
func TestWriter_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	w, err := New(path, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := w.Write(context.Background(), 1, []record.Record{record.FromString("HELLO")}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(b) != "HELLO\n" {
		t.Fatalf("file = %q, want %q", b, "HELLO\n")
	}
}

/*
TestWriter_CanceledContext verifies that a canceled context aborts the write.
*/
func TestWriter_CanceledContext(t *testing.T) {
	var buf bytes.Buffer
	w, err := New("", &buf)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := w.Write(ctx, 1, []record.Record{record.New()}); err == nil {
		t.Fatalf("Write succeeded with canceled context")
	}
}
