// Package sink contains the storage-agnostic contract for pipeline output
// destinations, plus a factory through which concrete backends register
// themselves at init time.
//
// Backends live in subpackages (text, sqlite, postgres, mssql) and are wired
// in via blank imports of recpipe/internal/sink/all, so callers can stay
// backend-agnostic and select a sink by its configured kind.
package sink

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"recpipe/internal/record"
)

// Sink persists pipeline output records. Write may be called multiple times
// per run; records arrive in output order with their 1-based sequence numbers
// assigned across calls by the caller-side seq offset.
type Sink interface {
	// Write persists the given records, assigning them the sequence numbers
	// seq, seq+1, ... in order. seq is 1-based.
	Write(ctx context.Context, seq int64, recs []record.Record) error
	// Close releases the sink's resources, flushing anything buffered.
	Close() error
}

// Config selects and configures a sink backend.
type Config struct {
	// Kind selects the backend: "text", "sqlite", "postgres", "mssql".
	Kind string

	// Path is the output file path for the "text" kind; empty means stdout.
	Path string

	// DSN and Table configure the database-backed kinds. When AutoCreate is
	// set, the backend issues its CREATE TABLE bootstrap on open.
	DSN        string
	Table      string
	AutoCreate bool
}

// Factory constructs a Sink from a Config.
type Factory func(ctx context.Context, cfg Config) (Sink, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register registers (or replaces) a sink factory for the given kind. It is
// typically called from backend packages' init() functions.
func Register(kind string, fn Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = fn
}

// New opens a sink of the configured kind. Unknown kinds report the set of
// registered backends, so a missing blank import shows up clearly.
func New(ctx context.Context, cfg Config) (Sink, error) {
	mu.RLock()
	fn, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("sink: unknown kind %q (registered: %v)", cfg.Kind, Kinds())
	}
	return fn(ctx, cfg)
}

// Kinds returns the registered backend kinds in sorted order.
func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
