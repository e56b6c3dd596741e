// Package main is the config-driven pipeline job runner. It loads a job
// config, pulls input from the configured source, runs the pipeline, and
// delivers output to the configured sink with metrics and timing.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"recpipe/internal/config"
	"recpipe/internal/dsl"
	"recpipe/internal/metrics"
	"recpipe/internal/metrics/datadog"
	"recpipe/internal/metrics/prompush"
	"recpipe/internal/pipeline"
	"recpipe/internal/record"
	"recpipe/internal/sink"
	"recpipe/internal/source"

	// register all backends with the sink factory.
	// config specifies which to use but we need to build in support for all of them.
	_ "recpipe/internal/sink/all"
)

// main is the entry point for the pipejob binary. It loads the job config,
// optionally initializes a metrics backend, and executes the run.
func main() {
	var (
		cfgPath           string
		metricsBackendFlg string
		pushGatewayURLFlg string
		statsdAddrFlg     string
		validate          bool
	)

	flag.StringVar(&cfgPath, "config", "configs/jobs/sample.json", "job config JSON path")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "", "metrics backend to use (pushgateway, datadog, none; overrides config)")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL (overrides config and env PUSHGATEWAY_URL)")
	flag.StringVar(&statsdAddrFlg, "statsd-addr", "", "DogStatsD address (overrides config and env STATSD_ADDR)")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	f, err := os.Open(cfgPath)
	if err != nil {
		fatalf("open config: %v", err)
	}
	job, err := config.Load(f)
	f.Close()
	if err != nil {
		fatalf("decode config: %v", err)
	}

	issues := config.Validate(job)
	hasError := false
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
		if iss.Severity == config.SeverityError {
			hasError = true
		}
	}
	if hasError {
		log.Printf("Configuration is invalid: %v", cfgPath)
		os.Exit(1)
	}

	// If validate flag is set, only validate the configuration and exit
	if validate {
		log.Printf("Configuration is valid: %v", cfgPath)
		os.Exit(0)
	}

	initMetrics(job, metricsBackendFlg, pushGatewayURLFlg, statsdAddrFlg, *verbose)
	defer func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}()

	ctx := context.Background()
	start := time.Now()

	if *verbose {
		log.Printf("job: name=%s source=%s sink=%s", job.Job, job.Source.Kind, job.Sink.Kind)
	}

	err = run(ctx, job, *verbose)
	metrics.RecordRun(job.Job, "batch", err, time.Since(start))
	if err != nil {
		log.Fatalf("%v", err)
	}

	if *verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
}

// run executes one job end-to-end: source, pipeline, sink.
func run(ctx context.Context, job config.Job, verbose bool) error {
	p, err := buildPipeline(job.Pipeline)
	if err != nil {
		return err
	}

	src, err := buildSource(job.Source)
	if err != nil {
		return err
	}
	raw, err := source.ReadAll(ctx, src)
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}
	text := string(raw)
	if job.Normalize.Fold {
		text = record.FoldASCII(text)
	}
	input := record.FromLines(text)
	metrics.RecordRecords(job.Job, "in", int64(len(input)))

	out := p.Run(input)
	metrics.RecordRecords(job.Job, "out", int64(len(out)))
	if dropped := int64(len(input) - len(out)); dropped > 0 {
		metrics.RecordRecords(job.Job, "dropped", dropped)
	}

	if verbose {
		log.Printf("pipeline: stages=%d in=%d out=%d", p.StageCount(), len(input), len(out))
	}

	snk, err := sink.New(ctx, sink.Config{
		Kind:       sinkKind(job.Sink),
		Path:       job.Sink.Path,
		DSN:        job.Sink.DB.DSN,
		Table:      job.Sink.DB.Table,
		AutoCreate: job.Sink.DB.AutoCreate,
	})
	if err != nil {
		return fmt.Errorf("init sink: %w", err)
	}
	if err := snk.Write(ctx, 1, out); err != nil {
		snk.Close()
		return fmt.Errorf("sink write: %w", err)
	}
	if err := snk.Close(); err != nil {
		return fmt.Errorf("sink close: %w", err)
	}

	log.Printf("summary: job=%s in=%d out=%d sink=%s", job.Job, len(input), len(out), sinkKind(job.Sink))
	return nil
}

// buildPipeline compiles the job's pipeline from inline text or a file path.
// Inline text takes precedence.
func buildPipeline(pc config.Pipeline) (*pipeline.Pipeline, error) {
	text := pc.Text
	if text == "" {
		b, err := os.ReadFile(pc.Path)
		if err != nil {
			return nil, fmt.Errorf("read pipeline: %w", err)
		}
		text = string(b)
	}
	cmds, err := dsl.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse pipeline: %w", err)
	}
	p, err := pipeline.Compile(cmds)
	if err != nil {
		return nil, fmt.Errorf("compile pipeline: %w", err)
	}
	return p, nil
}

// buildSource maps source configuration onto a concrete source implementation.
func buildSource(sc config.Source) (source.Source, error) {
	switch sc.Kind {
	case "file":
		return source.NewLocal(sc.File.Path), nil
	case "http":
		cfg := source.HTTPConfig{}
		if sc.HTTP.TimeoutSeconds > 0 {
			cfg.Timeout = time.Duration(sc.HTTP.TimeoutSeconds) * time.Second
		}
		if sc.HTTP.MaxRetries > 0 {
			cfg.MaxRetries = sc.HTTP.MaxRetries
		}
		return source.NewHTTP(sc.HTTP.URL, cfg), nil
	default:
		return nil, fmt.Errorf("unsupported source.kind=%s", sc.Kind)
	}
}

func sinkKind(sc config.Sink) string {
	if sc.Kind == "" {
		return "text"
	}
	return sc.Kind
}

// initMetrics decides and installs the metrics backend: flag, then config,
// then env. Failures fall back to the nop backend with a log line.
func initMetrics(job config.Job, backendFlg, gwURLFlg, statsdFlg string, verbose bool) {
	backendName := backendFlg
	if backendName == "" {
		backendName = job.Metrics.Backend
	}
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}

	switch backendName {
	case "pushgateway":
		gwURL := gwURLFlg
		if gwURL == "" {
			gwURL = job.Metrics.PushgatewayURL
		}
		if gwURL == "" {
			gwURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}

		b, err := prompush.NewBackend(job.Job, gwURL)
		if err != nil {
			log.Printf("metrics: failed to init prom push backend: %v; using nop", err)
			return
		}
		log.Printf("metrics: url=%v, backend=%v, job_name=%v", gwURL, backendName, job.Job)
		metrics.SetBackend(b)

	case "datadog":
		addr := statsdFlg
		if addr == "" {
			addr = job.Metrics.StatsdAddr
		}
		if addr == "" {
			addr = os.Getenv("STATSD_ADDR")
		}

		b, err := datadog.NewBackend(datadog.Config{Addr: addr})
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; using nop", err)
			return
		}
		log.Printf("metrics: addr=%v, backend=%v, job_name=%v", addr, backendName, job.Job)
		metrics.SetBackend(b)

	case "", "none":
		// metrics disabled; nop backend remains
		if verbose {
			log.Printf("metrics: disabled (backend=%q)", backendName)
		}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
