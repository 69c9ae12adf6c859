package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Результаты операций шлюза для label result.
const (
	ResultOK       = "ok"
	ResultNotFound = "not_found"
	ResultFailed   = "failed"
)

// GatewayMetrics: метрики шлюза хранения заказов.
type GatewayMetrics struct {
	operations   *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	handshakes   *prometheus.CounterVec
	sessionState prometheus.Gauge
}

// NewGatewayMetrics регистрирует метрики шлюза в registerer (nil: глобальный реестр).
func NewGatewayMetrics(registerer prometheus.Registerer) *GatewayMetrics {
	return &GatewayMetrics{
		operations: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "pos_gateway_operations_total",
			Help: "Total number of persistence gateway operations by result",
		}, []string{"operation", "result"}),
		duration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "pos_gateway_operation_duration_seconds",
			Help:    "Duration of persistence gateway operations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"operation"}),
		handshakes: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "pos_gateway_session_handshakes_total",
			Help: "Total number of store session handshakes by result",
		}, []string{"result"}),
		sessionState: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "pos_gateway_session_state",
			Help: "Current session state: 0 unauthenticated, 1 authenticating, 2 ready",
		}),
	}
}

// RecordOperation учитывает операцию и её длительность.
func (m *GatewayMetrics) RecordOperation(operation, result string, took time.Duration) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, result).Inc()
	m.duration.WithLabelValues(operation).Observe(took.Seconds())
}

// RecordHandshake учитывает попытку установить сессию.
func (m *GatewayMetrics) RecordHandshake(result string) {
	if m == nil {
		return
	}
	m.handshakes.WithLabelValues(result).Inc()
}

// SetSessionState публикует текущее состояние сессии.
func (m *GatewayMetrics) SetSessionState(state int) {
	if m == nil {
		return
	}
	m.sessionState.Set(float64(state))
}
