package config

import (
	"strings"
	"testing"
)

/*
TestLoad_FullJob verifies that a complete job document decodes into the
expected nested structure.
*/
func TestLoad_FullJob(t *testing.T) {
	doc := `{
		"job": "monthly-sales",
		"source": {
			"kind": "http",
			"http": {"url": "https://example.com/input.data", "timeout_seconds": 10, "max_retries": 2}
		},
		"pipeline": {"text": "PIPE FILTER 18,10 = \"SALES\""},
		"normalize": {"fold": true},
		"sink": {
			"kind": "postgres",
			"db": {"dsn": "postgres://user@localhost/db", "table": "public.sales", "auto_create": true}
		},
		"metrics": {"backend": "pushgateway", "pushgateway_url": "http://localhost:9091"}
	}`

	j, err := Load(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if j.Job != "monthly-sales" {
		t.Errorf("job = %q", j.Job)
	}
	if j.Source.Kind != "http" || j.Source.HTTP.URL != "https://example.com/input.data" {
		t.Errorf("source = %+v", j.Source)
	}
	if j.Source.HTTP.TimeoutSeconds != 10 || j.Source.HTTP.MaxRetries != 2 {
		t.Errorf("http options = %+v", j.Source.HTTP)
	}
	if !strings.Contains(j.Pipeline.Text, "FILTER 18,10") {
		t.Errorf("pipeline text = %q", j.Pipeline.Text)
	}
	if !j.Normalize.Fold {
		t.Errorf("normalize.fold not decoded")
	}
	if j.Sink.Kind != "postgres" || j.Sink.DB.Table != "public.sales" || !j.Sink.DB.AutoCreate {
		t.Errorf("sink = %+v", j.Sink)
	}
	if j.Metrics.Backend != "pushgateway" || j.Metrics.PushgatewayURL != "http://localhost:9091" {
		t.Errorf("metrics = %+v", j.Metrics)
	}
}

/*
TestLoad_Minimal verifies that omitted sections decode to zero values rather
than erroring.
*/
func TestLoad_Minimal(t *testing.T) {
	j, err := Load(strings.NewReader(`{"job": "tiny"}`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if j.Job != "tiny" {
		t.Errorf("job = %q", j.Job)
	}
	if j.Source.Kind != "" || j.Sink.Kind != "" || j.Normalize.Fold {
		t.Errorf("expected zero values, got %+v", j)
	}
}

/*
TestLoad_Malformed verifies that invalid JSON reports an error.
*/
func TestLoad_Malformed(t *testing.T) {
	if _, err := Load(strings.NewReader(`{"job": `)); err == nil {
		t.Fatalf("Load succeeded on malformed JSON")
	}
}
