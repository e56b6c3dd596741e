package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"recpipe/internal/record"
)

/*
TestSink_WriteRoundTrip exercises the sink against a real on-disk SQLite
database: auto-created table, two Write batches with continuing sequence
numbers, and a read-back in seq order.
*/
func TestSink_WriteRoundTrip(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "out.db")

	s, err := New(ctx, dsn, "pipe_out", true)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	first := []record.Record{record.FromString("ALPHA"), record.FromString("BETA")}
	second := []record.Record{record.FromString("GAMMA")}
	if err := s.Write(ctx, 1, first); err != nil {
		t.Fatalf("Write first batch: %v", err)
	}
	if err := s.Write(ctx, 3, second); err != nil {
		t.Fatalf("Write second batch: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, "SELECT seq, rec FROM pipe_out ORDER BY seq")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	defer rows.Close()

	want := []string{"ALPHA", "BETA", "GAMMA"}
	i := 0
	for rows.Next() {
		var seq int64
		var rec string
		if err := rows.Scan(&seq, &rec); err != nil {
			t.Fatalf("scan: %v", err)
		}
		if seq != int64(i+1) {
			t.Errorf("row %d: seq = %d, want %d", i, seq, i+1)
		}
		if got := strings.TrimRight(rec, " "); got != want[i] {
			t.Errorf("row %d: rec = %q, want %q", i, got, want[i])
		}
		i++
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("rows: %v", err)
	}
	if i != len(want) {
		t.Fatalf("rows = %d, want %d", i, len(want))
	}
}

/*
TestNew_Validation verifies the fail-fast checks for empty DSN and table.
*/
func TestNew_Validation(t *testing.T) {
	ctx := context.Background()
	if _, err := New(ctx, "", "t", false); err == nil {
		t.Fatalf("New accepted empty DSN")
	}
	if _, err := New(ctx, "x.db", "", false); err == nil {
		t.Fatalf("New accepted empty table")
	}
}

/*
TestWrite_EmptyBatch verifies that a zero-record Write is a no-op.
*/
func TestWrite_EmptyBatch(t *testing.T) {
	ctx := context.Background()
	s, err := New(ctx, filepath.Join(t.TempDir(), "e.db"), "pipe_out", true)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	if err := s.Write(ctx, 1, nil); err != nil {
		t.Fatalf("Write(nil): %v", err)
	}
}
