package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

/*
TestLocal_Open verifies reading a file from disk and the not-found error
shape (wrapped so errors.Is still sees os.ErrNotExist).
*/
func TestLocal_Open(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "input.data")
	if err := os.WriteFile(path, []byte("RECORD ONE\nRECORD TWO\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	b, err := ReadAll(context.Background(), NewLocal(path))
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(b) != "RECORD ONE\nRECORD TWO\n" {
		t.Fatalf("content = %q", b)
	}

	_, err = ReadAll(context.Background(), NewLocal(filepath.Join(dir, "missing.data")))
	if err == nil {
		t.Fatalf("ReadAll succeeded for missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("error %v should wrap os.ErrNotExist", err)
	}
}

/*
TestLocal_CanceledContext verifies that a canceled context short-circuits
before touching the filesystem.
*/
func TestLocal_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewLocal("anything").Open(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

// newTestHTTP builds an HTTP source against url with fast deterministic
// retries: backoff sleeps are recorded instead of slept.
func newTestHTTP(t *testing.T, url string, maxRetries int) (*HTTP, *[]time.Duration) {
	t.Helper()
	h := NewHTTP(url, HTTPConfig{
		Timeout:        2 * time.Second,
		MaxRetries:     maxRetries,
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     350 * time.Millisecond,
	})
	var slept []time.Duration
	h.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return h, &slept
}

/*
TestHTTP_RetriesServerErrors verifies that 5xx responses are retried with
doubling, capped backoff until a success arrives.
*/
func TestHTTP_RetriesServerErrors(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls <= 3 {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("PAYLOAD"))
	}))
	defer srv.Close()

	h, slept := newTestHTTP(t, srv.URL, 5)
	b, err := ReadAll(context.Background(), h)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(b) != "PAYLOAD" {
		t.Fatalf("body = %q", b)
	}
	if calls != 4 {
		t.Fatalf("server calls = %d, want 4", calls)
	}

	// 100ms, 200ms, then capped at 350ms.
	want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 350 * time.Millisecond}
	if len(*slept) != len(want) {
		t.Fatalf("sleeps = %v, want %v", *slept, want)
	}
	for i := range want {
		if (*slept)[i] != want[i] {
			t.Fatalf("sleep %d = %v, want %v", i, (*slept)[i], want[i])
		}
	}
}

/*
TestHTTP_ExhaustsRetries verifies the terminal error after all attempts fail.
*/
func TestHTTP_ExhaustsRetries(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	h, _ := newTestHTTP(t, srv.URL, 2)
	_, err := h.Open(context.Background())
	if err == nil {
		t.Fatalf("Open succeeded, want retries exhausted")
	}
	if !strings.Contains(err.Error(), "retries exhausted") {
		t.Fatalf("error = %v", err)
	}
	if calls != 3 { // initial attempt + 2 retries
		t.Fatalf("server calls = %d, want 3", calls)
	}
}

/*
TestHTTP_ClientErrorFailsFast verifies that non-5xx failures (e.g. 404) are
not retried.
*/
func TestHTTP_ClientErrorFailsFast(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.NotFound(w, r)
	}))
	defer srv.Close()

	h, slept := newTestHTTP(t, srv.URL, 5)
	if _, err := h.Open(context.Background()); err == nil {
		t.Fatalf("Open succeeded on 404")
	}
	if calls != 1 {
		t.Fatalf("server calls = %d, want 1", calls)
	}
	if len(*slept) != 0 {
		t.Fatalf("unexpected retries: %v", *slept)
	}
}

/*
TestHTTP_CanceledDuringBackoff verifies that cancellation interrupts a backoff
wait in progress instead of letting it run to completion. The source is
configured with a long backoff; cancellation arrives shortly after the first
failed attempt and must end Open well before the backoff expires.
*/
func TestHTTP_CanceledDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	h := NewHTTP(srv.URL, HTTPConfig{
		Timeout:        2 * time.Second,
		MaxRetries:     5,
		InitialBackoff: 30 * time.Second,
		MaxBackoff:     30 * time.Second,
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := h.Open(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("Open returned after %v; backoff wait was not interrupted", elapsed)
	}
}

/*
TestSleepWithContext_Canceled verifies that an already-canceled context
returns immediately regardless of the requested duration.
*/
func TestSleepWithContext_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := sleepWithContext(ctx, time.Hour)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if time.Since(start) > time.Second {
		t.Fatalf("sleepWithContext waited despite canceled context")
	}
}
