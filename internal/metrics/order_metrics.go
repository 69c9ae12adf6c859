package metrics

import "github.com/prometheus/client_golang/prometheus"

// OrderMetrics: бизнес-метрики кассы.
type OrderMetrics struct {
	created      prometheus.Counter
	deleted      prometheus.Counter
	orderTotal   prometheus.Histogram
	exports      *prometheus.CounterVec
	publishFails prometheus.Counter
}

// NewOrderMetrics регистрирует бизнес-метрики в registerer (nil: глобальный реестр).
func NewOrderMetrics(registerer prometheus.Registerer) *OrderMetrics {
	return &OrderMetrics{
		created: registerCounter(registerer, prometheus.CounterOpts{
			Name: "pos_orders_created_total",
			Help: "Total number of orders created",
		}),
		deleted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "pos_orders_deleted_total",
			Help: "Total number of orders deleted",
		}),
		orderTotal: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "pos_order_total_rupees",
			Help:    "Distribution of order totals in rupees",
			Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000},
		}),
		exports: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "pos_exports_total",
			Help: "Total number of order exports by format",
		}, []string{"format"}),
		publishFails: registerCounter(registerer, prometheus.CounterOpts{
			Name: "pos_order_event_publish_failures_total",
			Help: "Total number of order events that failed to publish",
		}),
	}
}

// RecordOrderCreated учитывает созданный заказ и его сумму.
func (m *OrderMetrics) RecordOrderCreated(total float64) {
	if m == nil {
		return
	}
	m.created.Inc()
	m.orderTotal.Observe(total)
}

// RecordOrdersDeleted учитывает удалённые заказы.
func (m *OrderMetrics) RecordOrdersDeleted(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.deleted.Add(float64(n))
}

// RecordExport учитывает выгрузку в формате format.
func (m *OrderMetrics) RecordExport(format string) {
	if m == nil {
		return
	}
	m.exports.WithLabelValues(format).Inc()
}

// RecordPublishFailure учитывает неотправленное событие.
func (m *OrderMetrics) RecordPublishFailure() {
	if m == nil {
		return
	}
	m.publishFails.Inc()
}
