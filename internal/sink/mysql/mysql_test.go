package mysql

import (
	"context"
	"testing"

	"recpipe/internal/record"
	"recpipe/internal/sink"
)

/*
TestNew_Validation verifies the fail-fast checks for empty DSN and table. No
server is needed: both checks reject before any connection is attempted.
*/
func TestNew_Validation(t *testing.T) {
	ctx := context.Background()
	if _, err := New(ctx, "", "t", false); err == nil {
		t.Fatalf("New accepted empty DSN")
	}
	if _, err := New(ctx, "user:pw@tcp(127.0.0.1:3306)/db", "", false); err == nil {
		t.Fatalf("New accepted empty table")
	}
}

/*
TestWrite_EmptyBatch verifies that a zero-record Write is a no-op that never
touches the connection.
*/
func TestWrite_EmptyBatch(t *testing.T) {
	s := &Sink{table: "pipe_out"}
	if err := s.Write(context.Background(), 1, nil); err != nil {
		t.Fatalf("Write(nil): %v", err)
	}
	if err := s.Write(context.Background(), 1, []record.Record{}); err != nil {
		t.Fatalf("Write(empty): %v", err)
	}
}

/*
TestRegistered verifies the init registration makes the backend reachable
through the factory's kind listing.
*/
func TestRegistered(t *testing.T) {
	for _, kind := range sink.Kinds() {
		if kind == "mysql" {
			return
		}
	}
	t.Fatalf("mysql not in sink.Kinds() = %v", sink.Kinds())
}
