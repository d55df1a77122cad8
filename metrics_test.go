package hyzhttp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsCollectorRecordsLifecycle(t *testing.T) {
	mc := NewMetricsCollectorWithRegistry(prometheus.NewRegistry())

	mc.RecordRequestStart("GET", "api.example.com/users")
	if got := testutil.ToFloat64(mc.requestsInFlight.WithLabelValues("GET", "api.example.com/users")); got != 1 {
		t.Errorf("Expected 1 request in flight, got %v", got)
	}

	mc.RecordRequestEnd("GET", "api.example.com/users")
	if got := testutil.ToFloat64(mc.requestsInFlight.WithLabelValues("GET", "api.example.com/users")); got != 0 {
		t.Errorf("Expected 0 requests in flight, got %v", got)
	}

	mc.RecordRequest("GET", "api.example.com/users", 200, 50*time.Millisecond)
	if got := testutil.ToFloat64(mc.requestsTotal.WithLabelValues("GET", "200", "api.example.com/users")); got != 1 {
		t.Errorf("Expected 1 request recorded, got %v", got)
	}

	mc.RecordRetry("GET", "api.example.com/users", 2)
	if got := testutil.ToFloat64(mc.retriesTotal.WithLabelValues("GET", "api.example.com/users", "2")); got != 1 {
		t.Errorf("Expected 1 retry recorded, got %v", got)
	}

	mc.RecordCircuitBreakerState("default", StateOpen)
	if got := testutil.ToFloat64(mc.circuitBreakerState.WithLabelValues("default")); got != float64(StateOpen) {
		t.Errorf("Expected breaker state %d, got %v", StateOpen, got)
	}

	mc.RecordError(ErrorTypeTransport, "GET", "api.example.com/users")
	if got := testutil.ToFloat64(mc.errorsTotal.WithLabelValues(ErrorTypeTransport, "GET", "api.example.com/users")); got != 1 {
		t.Errorf("Expected 1 error recorded, got %v", got)
	}
}

func TestClientEmitsMetrics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	mc := NewMetricsCollectorWithRegistry(prometheus.NewRegistry())
	client := New(WithMetricsCollector(mc))

	if _, err := client.Get(context.Background(), &Request{Path: server.URL}); err != nil {
		t.Fatalf("Get() returned error: %v", err)
	}

	endpoint := endpointLabel(server.URL)
	if got := testutil.ToFloat64(mc.requestsTotal.WithLabelValues("GET", "200", endpoint)); got != 1 {
		t.Errorf("Expected 1 request counted, got %v", got)
	}
	if got := testutil.ToFloat64(mc.requestsInFlight.WithLabelValues("GET", endpoint)); got != 0 {
		t.Errorf("Expected in-flight gauge back to 0, got %v", got)
	}
	if got := testutil.ToFloat64(mc.circuitBreakerState.WithLabelValues("default")); got != float64(StateClosed) {
		t.Errorf("Expected breaker state closed, got %v", got)
	}
}

func TestClientEmitsErrorMetrics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	mc := NewMetricsCollectorWithRegistry(prometheus.NewRegistry())
	client := New(WithMetricsCollector(mc), WithRetryConfig(fastRetry(1)))

	if _, err := client.Get(context.Background(), &Request{Path: server.URL}); err == nil {
		t.Fatal("Expected error from failing server")
	}

	endpoint := endpointLabel(server.URL)
	if got := testutil.ToFloat64(mc.errorsTotal.WithLabelValues(ErrorTypeTransport, "GET", endpoint)); got != 1 {
		t.Errorf("Expected 1 transport error counted, got %v", got)
	}
	if got := testutil.ToFloat64(mc.retriesTotal.WithLabelValues("GET", endpoint, "1")); got != 1 {
		t.Errorf("Expected retry attempt 1 counted, got %v", got)
	}
}
