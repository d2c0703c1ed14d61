package core

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type observation struct {
	op      string
	success bool
}

type captureMetricsRecorder struct {
	observed []observation
}

func (c *captureMetricsRecorder) Observe(_ context.Context, op string, success bool, _ time.Duration) {
	c.observed = append(c.observed, observation{op: op, success: success})
}

func (c *captureMetricsRecorder) has(op string, success bool) bool {
	for _, o := range c.observed {
		if o.op == op && o.success == success {
			return true
		}
	}
	return false
}

type spanRecord struct {
	op  string
	err error
}

type captureTracer struct {
	started []string
	ended   []spanRecord
}

func (c *captureTracer) Start(ctx context.Context, op string) (context.Context, TraceSpan) {
	c.started = append(c.started, op)
	return ctx, &captureSpan{tracer: c, op: op}
}

type captureSpan struct {
	tracer *captureTracer
	op     string
}

func (s *captureSpan) End(err error) {
	s.tracer.ended = append(s.tracer.ended, spanRecord{op: s.op, err: err})
}

func TestServiceObservesEveryOperation(t *testing.T) {
	ctx := context.Background()
	metrics := &captureMetricsRecorder{}
	tracer := &captureTracer{}
	svc := NewInMemoryService(NewDefaultRulesEngine(),
		WithMetricsRecorder(metrics),
		WithTracer(tracer),
	)

	product, _, err := svc.AddProduct(ctx, Product{Name: "Tea", Price: price("1.00"), Quantity: 5})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !metrics.has("add_product", true) {
		t.Fatalf("missing add_product success observation: %+v", metrics.observed)
	}

	if _, _, err := svc.UpdateProduct(ctx, Product{ID: "ghost", Name: "x", Price: price("1.00")}); err == nil {
		t.Fatalf("expected not-found")
	}
	if !metrics.has("update_product", false) {
		t.Fatalf("missing update_product error observation")
	}

	if _, err := svc.DeleteProduct(ctx, product.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	wantSpans := []string{"add_product", "update_product", "delete_product"}
	if len(tracer.started) != len(wantSpans) || len(tracer.ended) != len(wantSpans) {
		t.Fatalf("spans started=%v ended=%v", tracer.started, tracer.ended)
	}
	for i, op := range wantSpans {
		if tracer.started[i] != op {
			t.Fatalf("span %d = %q, want %q", i, tracer.started[i], op)
		}
	}
	if tracer.ended[1].err == nil {
		t.Fatalf("failed operation should end its span with the error")
	}
}

func TestExpvarMetricsRecorderExports(t *testing.T) {
	recorder := NewExpvarMetricsRecorder("")
	if recorder.Name() == "" {
		t.Fatalf("expected generated expvar name")
	}

	recorder.Observe(context.Background(), "add_product", true, 10*time.Millisecond)
	recorder.Observe(context.Background(), "add_product", false, 5*time.Millisecond)
	recorder.Observe(context.Background(), "", true, time.Millisecond) // ignored

	snap := recorder.Snapshot()
	if snap.Results["add_product"]["success"] != 1 || snap.Results["add_product"]["error"] != 1 {
		t.Fatalf("results = %+v", snap.Results)
	}
	if snap.DurationsMS["add_product"] < 15 {
		t.Fatalf("durations = %+v", snap.DurationsMS)
	}
}

func TestJSONTraceTracerExports(t *testing.T) {
	var buf bytes.Buffer
	tracer := NewJSONTracer(&buf)

	_, span := tracer.Start(context.Background(), "record_sale")
	span.End(nil)
	_, span = tracer.Start(context.Background(), "record_sale")
	span.End(context.DeadlineExceeded)

	entries := tracer.Entries()
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Status != "success" || entries[1].Status != "error" {
		t.Fatalf("statuses = %q, %q", entries[0].Status, entries[1].Status)
	}
	if entries[1].Error == "" {
		t.Fatalf("error span missing message")
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("encoded lines = %d, want 2", len(lines))
	}
	var decoded JSONTraceEntry
	if err := json.Unmarshal([]byte(lines[0]), &decoded); err != nil {
		t.Fatalf("decode line: %v", err)
	}
	if decoded.Operation != "record_sale" {
		t.Fatalf("operation = %q", decoded.Operation)
	}
}

func TestPrometheusMetricsRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	recorder, err := NewPrometheusMetricsRecorder(reg)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}

	recorder.Observe(context.Background(), "record_sale", true, 20*time.Millisecond)
	recorder.Observe(context.Background(), "record_sale", false, 5*time.Millisecond)
	recorder.Observe(context.Background(), "", true, time.Millisecond) // ignored

	count := testutil.CollectAndCount(recorder.results, "bizflow_service_operation_results_total")
	if count != 2 {
		t.Fatalf("result series = %d, want 2", count)
	}
	success := testutil.ToFloat64(recorder.results.WithLabelValues("record_sale", "success"))
	if success != 1 {
		t.Fatalf("success count = %v", success)
	}

	// Double registration surfaces the registry error.
	if _, err := NewPrometheusMetricsRecorder(reg); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
}
