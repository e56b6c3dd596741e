// Package metrics provides a small, backend-agnostic abstraction for
// recording operational metrics from pipeline runs.
//
// The package is intentionally minimal and opinionated:
//
//   - It exposes a narrow interface (Backend) focused on counters and timing
//     data.
//   - It provides a global, pluggable backend that defaults to a no-op
//     implementation, so metrics are always safe to call even when no real
//     backend is configured.
//   - It mirrors the sink abstraction pattern used elsewhere in the project,
//     keeping concrete metric systems (Prometheus, Datadog) isolated in
//     subpackages while the engine and CLIs depend only on this interface.
package metrics

import "time"

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends. It is intentionally
// generic so Prometheus, Datadog, etc. can be plugged in.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g.
	// Pushgateway).
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing one.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordRun records one pipeline run: its executor mode ("batch" or "rat"),
// outcome, and duration.
func RecordRun(job, mode string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"job":    job,
		"mode":   mode,
		"status": status,
	}

	backend.IncCounter("pipe_runs_total", 1, lbls)
	backend.ObserveHistogram("pipe_run_duration_seconds", d.Seconds(), lbls)
}

// RecordRecords increments a record-level counter for the given job and kind.
//
// Typical kinds:
//   - "in"      input records consumed
//   - "out"     output records emitted
//   - "dropped" records removed by filter/take/skip/dedup stages
func RecordRecords(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("pipe_records_total", float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}
