package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestGatewayMetrics_RecordOperation(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewGatewayMetrics(reg)

	m.RecordOperation("list_orders", ResultOK, 10*time.Millisecond)
	m.RecordOperation("list_orders", ResultOK, 20*time.Millisecond)
	m.RecordOperation("get_order", ResultNotFound, time.Millisecond)

	if got := testutil.ToFloat64(m.operations.WithLabelValues("list_orders", ResultOK)); got != 2 {
		t.Fatalf("expected 2 list_orders ok, got %v", got)
	}
	if got := testutil.ToFloat64(m.operations.WithLabelValues("get_order", ResultNotFound)); got != 1 {
		t.Fatalf("expected 1 get_order not_found, got %v", got)
	}
	if got := testutil.CollectAndCount(m.duration); got != 2 {
		t.Fatalf("expected 2 duration series, got %d", got)
	}
}

func TestGatewayMetrics_SessionState(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewGatewayMetrics(reg)

	m.SetSessionState(2)
	m.RecordHandshake(ResultFailed)

	if got := testutil.ToFloat64(m.sessionState); got != 2 {
		t.Fatalf("expected session state 2, got %v", got)
	}
	if got := testutil.ToFloat64(m.handshakes.WithLabelValues(ResultFailed)); got != 1 {
		t.Fatalf("expected 1 failed handshake, got %v", got)
	}
}

func TestRegister_ReusesExistingCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := NewOrderMetrics(reg)
	second := NewOrderMetrics(reg)

	first.RecordOrderCreated(250)
	second.RecordOrderCreated(100)

	if got := testutil.ToFloat64(second.created); got != 2 {
		t.Fatalf("collectors must be shared, got %v", got)
	}
}

func TestOrderMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewOrderMetrics(reg)

	m.RecordOrdersDeleted(3)
	m.RecordOrdersDeleted(0)
	m.RecordExport("xlsx")
	m.RecordPublishFailure()

	if got := testutil.ToFloat64(m.deleted); got != 3 {
		t.Fatalf("expected 3 deleted, got %v", got)
	}
	if got := testutil.ToFloat64(m.exports.WithLabelValues("xlsx")); got != 1 {
		t.Fatalf("expected 1 xlsx export, got %v", got)
	}
	if got := testutil.ToFloat64(m.publishFails); got != 1 {
		t.Fatalf("expected 1 publish failure, got %v", got)
	}
}

func TestHTTPMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	m.RecordRequest("GET", "/v1/orders", 200, 5*time.Millisecond)

	if got := testutil.ToFloat64(m.requests.WithLabelValues("GET", "/v1/orders", "200")); got != 1 {
		t.Fatalf("expected 1 request, got %v", got)
	}
}

func TestNilMetricsAreNoop(t *testing.T) {
	var g *GatewayMetrics
	var o *OrderMetrics
	var h *HTTPMetrics

	g.RecordOperation("x", ResultOK, time.Second)
	g.RecordHandshake(ResultOK)
	g.SetSessionState(1)
	o.RecordOrderCreated(1)
	o.RecordOrdersDeleted(1)
	o.RecordExport("pdf")
	o.RecordPublishFailure()
	h.RecordRequest("GET", "/", 200, time.Second)
}
