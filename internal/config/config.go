// Package config defines the canonical, JSON-serializable configuration model
// for pipeline jobs. It is intentionally small, explicit, and dependency-free
// so that jobs can be loaded from disk (or other sources) and passed through
// the program without additional glue code.
//
// Design goals:
//
//  1. Stability: changes to this package should be additive and backwards-
//     compatible whenever possible.
//  2. Clarity: field names in Go mirror the JSON structure used in job files
//     under configs/*.json.
//  3. Minimalism: no third-party config libraries; decoding is performed by
//     the standard library.
//
// Example (trimmed):
//
//	{
//	  "job":      "payroll-extract",
//	  "source":   { "kind": "file", "file": { "path": "employees.data" } },
//	  "pipeline": { "path": "payroll.pipe" },
//	  "sink":     { "kind": "sqlite", "db": { "dsn": "out.db", "table": "pipe_out", "auto_create": true } }
//	}
package config

import (
	"encoding/json"
	"fmt"
	"io"
)

// Job describes one full pipeline job decoded from a job file.
type Job struct {
	// Job names the run; it labels metrics and log lines.
	Job string `json:"job"`

	// Source describes where input records come from.
	Source Source `json:"source"`

	// Pipeline supplies the DSL text, either inline or from a file.
	Pipeline Pipeline `json:"pipeline"`

	// Normalize configures input text normalization before records are built.
	Normalize Normalize `json:"normalize"`

	// Sink describes where output records are written.
	Sink Sink `json:"sink"`

	// Metrics selects the metrics backend for the run.
	Metrics Metrics `json:"metrics"`
}

// Source identifies the input data source.
type Source struct {
	// Kind selects the source implementation: "file" or "http".
	Kind string `json:"kind"`

	// File carries options for the "file" source kind.
	File SourceFile `json:"file"`

	// HTTP carries options for the "http" source kind.
	HTTP SourceHTTP `json:"http"`
}

// SourceFile holds configuration for the "file" source kind.
type SourceFile struct {
	// Path is the local filesystem path to the input file.
	Path string `json:"path"`
}

// SourceHTTP holds configuration for the "http" source kind.
type SourceHTTP struct {
	// URL is the endpoint fetched with GET.
	URL string `json:"url"`

	// TimeoutSeconds is the per-request timeout; 0 uses the default.
	TimeoutSeconds int `json:"timeout_seconds"`

	// MaxRetries is the retry budget for transient failures; 0 uses the
	// default.
	MaxRetries int `json:"max_retries"`
}

// Pipeline supplies the pipeline DSL. Exactly one of Path or Text should be
// set; Text wins when both are present.
type Pipeline struct {
	// Path is a .pipe file holding the DSL text.
	Path string `json:"path"`

	// Text is the DSL inline.
	Text string `json:"text"`
}

// Normalize configures input normalization.
type Normalize struct {
	// Fold transliterates accented letters to their ASCII base before the
	// usual '?' substitution for non-ASCII bytes.
	Fold bool `json:"fold"`
}

// Sink selects the output destination.
type Sink struct {
	// Kind selects the sink implementation: "text", "sqlite", "postgres",
	// "mssql". Empty defaults to "text".
	Kind string `json:"kind"`

	// Path is the output file for the "text" kind; empty means stdout.
	Path string `json:"path"`

	// DB carries options for the database-backed kinds.
	DB DB `json:"db"`
}

// DB holds configuration shared by the database sink kinds.
type DB struct {
	// DSN is the backend-specific connection string.
	DSN string `json:"dsn"`

	// Table is the output table name.
	Table string `json:"table"`

	// AutoCreate issues the backend's CREATE TABLE bootstrap on open.
	AutoCreate bool `json:"auto_create"`
}

// Metrics selects and configures the metrics backend.
type Metrics struct {
	// Backend is "pushgateway", "datadog", or "none"/"" (disabled).
	Backend string `json:"backend"`

	// PushgatewayURL is the Pushgateway base URL for the "pushgateway"
	// backend.
	PushgatewayURL string `json:"pushgateway_url"`

	// StatsdAddr is the DogStatsD address for the "datadog" backend.
	StatsdAddr string `json:"statsd_addr"`
}

// Load decodes a Job from JSON.
func Load(r io.Reader) (Job, error) {
	var j Job
	if err := json.NewDecoder(r).Decode(&j); err != nil {
		return Job{}, fmt.Errorf("config: decode: %w", err)
	}
	return j, nil
}
