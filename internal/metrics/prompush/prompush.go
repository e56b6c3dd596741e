// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// This package adapts the generic metrics.Backend interface to Prometheus by:
//
//   - Using client_golang CounterVec and SummaryVec collectors.
//   - Mapping the common run labels (mode, status, kind) onto Prometheus
//     labels; the job name becomes the Pushgateway grouping key.
//   - Pushing collected metrics to a Prometheus Pushgateway instance instead
//     of exposing an HTTP scrape endpoint, since pipeline runs are short-lived
//     batch jobs.
//
// All Prometheus-specific dependencies live here so the rest of the project
// stays decoupled and can swap to alternative backends (e.g. Datadog) without
// changes to the engine or CLIs.
package prompush

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"recpipe/internal/metrics"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string // Pushgateway "job" group
	reg        *prometheus.Registry

	runCounter  *prometheus.CounterVec // "pipe_runs_total"
	runDuration *prometheus.SummaryVec // "pipe_run_duration_seconds"
	recCounter  *prometheus.CounterVec // "pipe_records_total"
}

// NewBackend constructs a Prometheus Pushgateway backend.
// jobName is the Pushgateway "job" name (usually the pipeline job name);
// gatewayURL is the base URL of the Pushgateway server.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "recpipe"
	}

	reg := prometheus.NewRegistry()

	runCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipe_runs_total",
			Help: "Total number of pipeline runs, partitioned by executor mode and status.",
		},
		[]string{"mode", "status"},
	)
	runDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "pipe_run_duration_seconds",
			Help:       "Duration of pipeline runs in seconds, partitioned by executor mode and status.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"mode", "status"},
	)
	recCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipe_records_total",
			Help: "Record-level counts per kind (in, out, dropped).",
		},
		[]string{"kind"},
	)

	if err := reg.Register(runCounter); err != nil {
		return nil, fmt.Errorf("prompush: register run counter: %w", err)
	}
	if err := reg.Register(runDuration); err != nil {
		return nil, fmt.Errorf("prompush: register run summary: %w", err)
	}
	if err := reg.Register(recCounter); err != nil {
		return nil, fmt.Errorf("prompush: register record counter: %w", err)
	}

	return &Backend{
		gatewayURL:  gatewayURL,
		jobName:     jobName,
		reg:         reg,
		runCounter:  runCounter,
		runDuration: runDuration,
		recCounter:  recCounter,
	}, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case "pipe_runs_total":
		if b.runCounter == nil {
			return
		}
		b.runCounter.WithLabelValues(labels["mode"], labels["status"]).Add(delta)

	case "pipe_records_total":
		if b.recCounter == nil {
			return
		}
		b.recCounter.WithLabelValues(labels["kind"]).Add(delta)

	default:
		// unknown metric name: ignore
	}
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != "pipe_run_duration_seconds" || b.runDuration == nil {
		return
	}
	b.runDuration.WithLabelValues(labels["mode"], labels["status"]).Observe(value)
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}
