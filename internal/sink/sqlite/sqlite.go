// Package sqlite implements a SQLite-backed sink using database/sql. It
// performs batched INSERTs inside a transaction; SQLite has no dedicated
// bulk-load API, but transactions keep performance acceptable for the record
// volumes a pipeline run produces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	// SQLite driver; replace with your preferred driver if desired.
	_ "modernc.org/sqlite" // alternative: github.com/mattn/go-sqlite3

	"recpipe/internal/record"
	"recpipe/internal/sink"
)

// Sink is a SQLite-backed implementation of sink.Sink.
type Sink struct {
	db    *sql.DB
	table string
}

var _ sink.Sink = (*Sink)(nil)

// New opens a SQLite connection using the provided DSN. DSN is passed
// directly to database/sql; for example:
//
//	"file:out.db?cache=shared"
//	"out.db"
//
// When autoCreate is set, the output table is created if missing.
func New(ctx context.Context, dsn, table string, autoCreate bool) (*Sink, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("sqlite: DSN must not be empty")
	}
	if strings.TrimSpace(table) == "" {
		return nil, fmt.Errorf("sqlite: table must not be empty")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}

	// Basic ping with a short timeout to fail fast on invalid DSNs.
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	s := &Sink{db: db, table: table}
	if autoCreate {
		if err := s.ensureTable(ctx); err != nil {
			db.Close()
			return nil, err
		}
	}
	return s, nil
}

func (s *Sink) ensureTable(ctx context.Context) error {
	ddl := fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (seq INTEGER PRIMARY KEY, rec TEXT NOT NULL)",
		s.table,
	)
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("sqlite: create table: %w", err)
	}
	return nil
}

// Write inserts records inside a single transaction using a prepared
// statement. Sequence numbers seq, seq+1, ... are assigned in record order.
func (s *Sink) Write(ctx context.Context, seq int64, recs []record.Record) error {
	if len(recs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		fmt.Sprintf("INSERT INTO %s (seq, rec) VALUES (?, ?)", s.table))
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range recs {
		if _, err := stmt.ExecContext(ctx, seq+int64(i), rec.String()); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("sqlite: insert seq=%d: %w", seq+int64(i), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

// Close closes the underlying database handle.
func (s *Sink) Close() error {
	return s.db.Close()
}

// init registers the "sqlite" backend with the sink factory.
func init() {
	sink.Register("sqlite", func(ctx context.Context, cfg sink.Config) (sink.Sink, error) {
		return New(ctx, cfg.DSN, cfg.Table, cfg.AutoCreate)
	})
}
