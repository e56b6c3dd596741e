// Package postgres implements a Postgres-backed sink using pgx v5. Records
// are loaded with COPY, pgx's most efficient bulk primitive, one COPY per
// Write call.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"recpipe/internal/record"
	"recpipe/internal/sink"
)

// Sink is a Postgres-backed implementation of sink.Sink.
type Sink struct {
	pool  *pgxpool.Pool
	table string
}

var _ sink.Sink = (*Sink)(nil)

// New opens a pgx pool for dsn. table must be a (possibly schema-qualified)
// table name, e.g. "public.pipe_out". When autoCreate is set, the output
// table is created if missing.
func New(ctx context.Context, dsn, table string, autoCreate bool) (*Sink, error) {
	if strings.TrimSpace(table) == "" {
		return nil, fmt.Errorf("postgres: table must not be empty")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: pgxpool: %w", err)
	}

	s := &Sink{pool: pool, table: table}
	if autoCreate {
		if err := s.ensureTable(ctx); err != nil {
			pool.Close()
			return nil, err
		}
	}
	return s, nil
}

func (s *Sink) ensureTable(ctx context.Context) error {
	ddl := fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (seq BIGINT PRIMARY KEY, rec CHAR(%d) NOT NULL)",
		s.table, record.Width,
	)
	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("postgres: create table: %w", err)
	}
	return nil
}

// Write performs one COPY of the given records. Sequence numbers seq, seq+1,
// ... are assigned in record order.
func (s *Sink) Write(ctx context.Context, seq int64, recs []record.Record) error {
	if len(recs) == 0 {
		return nil
	}

	rows := make([][]any, len(recs))
	for i, rec := range recs {
		rows[i] = []any{seq + int64(i), rec.String()}
	}

	ident := pgx.Identifier(strings.Split(s.table, "."))
	n, err := s.pool.CopyFrom(ctx, ident, []string{"seq", "rec"}, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("postgres: copy: %w", err)
	}
	if n != int64(len(recs)) {
		return fmt.Errorf("postgres: copy reported %d of %d rows", n, len(recs))
	}
	return nil
}

// Close releases the connection pool.
func (s *Sink) Close() error {
	s.pool.Close()
	return nil
}

// init registers the "postgres" backend with the sink factory.
func init() {
	sink.Register("postgres", func(ctx context.Context, cfg sink.Config) (sink.Sink, error) {
		return New(ctx, cfg.DSN, cfg.Table, cfg.AutoCreate)
	})
}
