// Package mssql implements a Microsoft SQL Server sink using the go-mssqldb
// bulk copy API. The DSN is validated with msdsn before a connection is
// opened, so obvious configuration mistakes fail fast.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	mssql "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"

	"recpipe/internal/record"
	"recpipe/internal/sink"
)

// Sink is an MSSQL-backed implementation of sink.Sink.
type Sink struct {
	db    *sql.DB
	table string
}

var _ sink.Sink = (*Sink)(nil)

// New validates the DSN, opens the connection, and optionally bootstraps the
// output table.
func New(ctx context.Context, dsn, table string, autoCreate bool) (*Sink, error) {
	if strings.TrimSpace(table) == "" {
		return nil, fmt.Errorf("mssql: table must not be empty")
	}
	if _, err := msdsn.Parse(dsn); err != nil {
		return nil, fmt.Errorf("mssql: dsn: %w", err)
	}
	db, err := sql.Open("sqlserver", dsn)
	if err != nil {
		return nil, fmt.Errorf("mssql: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("mssql: ping: %w", err)
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
		"IF OBJECT_ID(N'%s', N'U') IS NULL CREATE TABLE %s (seq BIGINT PRIMARY KEY, rec CHAR(%d) NOT NULL)",
		s.table, s.table, record.Width,
	)
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("mssql: create table: %w", err)
	}
	return nil
}

// Write bulk-copies the given records inside a transaction. Sequence numbers
// seq, seq+1, ... are assigned in record order.
func (s *Sink) Write(ctx context.Context, seq int64, recs []record.Record) error {
	if len(recs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("mssql: begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, mssql.CopyIn(s.table, mssql.BulkOptions{}, "seq", "rec"))
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("mssql: prepare bulk copy: %w", err)
	}

	for i, rec := range recs {
		if _, err := stmt.ExecContext(ctx, seq+int64(i), rec.String()); err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return fmt.Errorf("mssql: bulk row seq=%d: %w", seq+int64(i), err)
		}
	}
	// Final Exec with no args flushes the bulk copy.
	if _, err := stmt.ExecContext(ctx); err != nil {
		_ = stmt.Close()
		_ = tx.Rollback()
		return fmt.Errorf("mssql: bulk flush: %w", err)
	}
	if err := stmt.Close(); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("mssql: close bulk stmt: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("mssql: commit: %w", err)
	}
	return nil
}

// Close closes the underlying database handle.
func (s *Sink) Close() error {
	return s.db.Close()
}

// init registers the "mssql" backend with the sink factory.
func init() {
	sink.Register("mssql", func(ctx context.Context, cfg sink.Config) (sink.Sink, error) {
		return New(ctx, cfg.DSN, cfg.Table, cfg.AutoCreate)
	})
}
