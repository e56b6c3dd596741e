package datadog

import (
	"sort"
	"testing"

	"recpipe/internal/metrics"
)

// TestNewBackend verifies the required-address check and that a UDP address
// produces a usable client (DogStatsD is connectionless, so no agent needs to
// be listening).
func TestNewBackend(t *testing.T) {
	if _, err := NewBackend(Config{}); err == nil {
		t.Fatalf("NewBackend with empty Addr should fail")
	}

	b, err := NewBackend(Config{
		Addr:       "127.0.0.1:18125",
		Namespace:  "pipe.",
		GlobalTags: []string{"env:test"},
	})
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}

	// These must not panic or block even with no agent listening.
	b.IncCounter("pipe_runs_total", 1, metrics.Labels{"mode": "batch", "status": "success"})
	b.ObserveHistogram("pipe_run_duration_seconds", 0.25, metrics.Labels{"mode": "batch"})
	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
}

// TestNilClientIsSafe ensures the zero-value backend is a safe no-op.
func TestNilClientIsSafe(t *testing.T) {
	b := &Backend{}
	b.IncCounter("x", 1, nil)
	b.ObserveHistogram("y", 2, nil)
	if err := b.Flush(); err != nil {
		t.Fatalf("Flush on nil client: %v", err)
	}
}

// TestLabelsToTags verifies the "key:value" tag mapping.
func TestLabelsToTags(t *testing.T) {
	if got := labelsToTags(nil); got != nil {
		t.Fatalf("labelsToTags(nil) = %v, want nil", got)
	}

	got := labelsToTags(metrics.Labels{"mode": "batch", "status": "success"})
	sort.Strings(got)
	want := []string{"mode:batch", "status:success"}
	if len(got) != len(want) {
		t.Fatalf("tags = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tags = %v, want %v", got, want)
		}
	}
}
