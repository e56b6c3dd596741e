// Package source provides the input data sources for pipeline runs: local
// files and HTTP endpoints. Sources hand back raw bytes; record parsing
// happens downstream in the record package.
package source

import (
	"context"
	"io"
)

// Source opens a stream of raw input bytes.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// ReadAll opens the source and reads it to completion.
func ReadAll(ctx context.Context, s Source) ([]byte, error) {
	rc, err := s.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
