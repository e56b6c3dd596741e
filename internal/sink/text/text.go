// Package text implements the plain-text sink: one record per line with
// trailing spaces trimmed, written to a file or stdout. This is the default
// sink and reproduces the CLI output format exactly.
package text

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"recpipe/internal/record"
	"recpipe/internal/sink"
)

// Writer is a text implementation of sink.Sink.
type Writer struct {
	w     *bufio.Writer
	close func() error
}

// ensure interface compliance at compile time.
var _ sink.Sink = (*Writer)(nil)

// New returns a text sink writing to path, or to w when path is empty.
func New(path string, w io.Writer) (*Writer, error) {
	if path == "" {
		if w == nil {
			w = os.Stdout
		}
		return &Writer{w: bufio.NewWriter(w), close: nil}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("text sink: create %s: %w", path, err)
	}
	return &Writer{w: bufio.NewWriter(f), close: f.Close}, nil
}

// Write appends records one per line. The sequence number is not rendered;
// line order carries it.
func (t *Writer) Write(ctx context.Context, seq int64, recs []record.Record) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	for _, rec := range recs {
		if _, err := t.w.WriteString(strings.TrimRight(rec.String(), " ")); err != nil {
			return fmt.Errorf("text sink: write: %w", err)
		}
		if err := t.w.WriteByte('\n'); err != nil {
			return fmt.Errorf("text sink: write: %w", err)
		}
	}
	return nil
}

// Close flushes buffered output and closes the underlying file, if any.
func (t *Writer) Close() error {
	if err := t.w.Flush(); err != nil {
		return fmt.Errorf("text sink: flush: %w", err)
	}
	if t.close != nil {
		return t.close()
	}
	return nil
}

// init registers the "text" backend with the sink factory.
func init() {
	sink.Register("text", func(ctx context.Context, cfg sink.Config) (sink.Sink, error) {
		return New(cfg.Path, nil)
	})
}
