// Package mysql implements a MySQL-backed sink using database/sql with the
// go-sql-driver. Batches are written as multi-row INSERTs inside a
// transaction, the cheapest bulk path MySQL offers without LOAD DATA.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver

	"recpipe/internal/record"
	"recpipe/internal/sink"
)

// Sink is a MySQL-backed implementation of sink.Sink.
type Sink struct {
	db    *sql.DB
	table string
}

var _ sink.Sink = (*Sink)(nil)

// New opens a MySQL connection using the provided DSN, for example:
//
//	"user:pass@tcp(127.0.0.1:3306)/pipedb?parseTime=true"
//
// When autoCreate is set, the output table is created if missing.
func New(ctx context.Context, dsn, table string, autoCreate bool) (*Sink, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("mysql: DSN must not be empty")
	}
	if strings.TrimSpace(table) == "" {
		return nil, fmt.Errorf("mysql: table must not be empty")
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql: open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("mysql: ping: %w", err)
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
		"CREATE TABLE IF NOT EXISTS %s (seq BIGINT PRIMARY KEY, rec CHAR(%d) NOT NULL)",
		s.table, record.Width,
	)
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("mysql: create table: %w", err)
	}
	return nil
}

// Write inserts records as one multi-row INSERT per transaction. Sequence
// numbers seq, seq+1, ... are assigned in record order.
func (s *Sink) Write(ctx context.Context, seq int64, recs []record.Record) error {
	if len(recs) == 0 {
		return nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s (seq, rec) VALUES ", s.table)
	args := make([]any, 0, len(recs)*2)
	for i, rec := range recs {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?)")
		args = append(args, seq+int64(i), rec.String())
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("mysql: begin tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, sb.String(), args...); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("mysql: insert batch at seq=%d: %w", seq, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("mysql: commit: %w", err)
	}
	return nil
}

// Close closes the underlying database handle.
func (s *Sink) Close() error {
	return s.db.Close()
}

// init registers the "mysql" backend with the sink factory.
func init() {
	sink.Register("mysql", func(ctx context.Context, cfg sink.Config) (sink.Sink, error) {
		return New(ctx, cfg.DSN, cfg.Table, cfg.AutoCreate)
	})
}
