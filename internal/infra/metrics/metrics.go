package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	MessagesTotal            *prometheus.CounterVec
	StoreErrorsTotal         *prometheus.CounterVec
	BroadcastDeliveriesTotal *prometheus.CounterVec
	BroadcastDurationSeconds prometheus.Histogram
	AdminActionsTotal        *prometheus.CounterVec
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	return &Metrics{
		MessagesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "soupbot_messages_total",
				Help: "Total number of answered chat messages by platform and intent",
			},
			[]string{"platform", "intent"}, // intent: today, day, location, day_location, prompt, help, error
		),

		StoreErrorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "soupbot_store_errors_total",
				Help: "Total number of failed soup store operations",
			},
			[]string{"operation"},
		),

		BroadcastDeliveriesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "soupbot_broadcast_deliveries_total",
				Help: "Daily broadcast send attempts by result",
			},
			[]string{"result"}, // result: delivered, removed, failed
		),

		BroadcastDurationSeconds: promauto.With(registry).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "soupbot_broadcast_duration_seconds",
				Help:    "Duration of one daily broadcast run",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
		),

		AdminActionsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "soupbot_admin_actions_total",
				Help: "Admin actions by action and status",
			},
			[]string{"action", "status"}, // status: success, rejected, error
		),
	}
}

func (m *Metrics) RecordMessage(platform, intent string) {
	if m == nil {
		return
	}
	m.MessagesTotal.WithLabelValues(platform, intent).Inc()
}

func (m *Metrics) RecordStoreError(operation string) {
	if m == nil {
		return
	}
	m.StoreErrorsTotal.WithLabelValues(operation).Inc()
}

func (m *Metrics) RecordDelivery(result string) {
	if m == nil {
		return
	}
	m.BroadcastDeliveriesTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveBroadcast(seconds float64) {
	if m == nil {
		return
	}
	m.BroadcastDurationSeconds.Observe(seconds)
}

func (m *Metrics) RecordAdminAction(action, status string) {
	if m == nil {
		return
	}
	m.AdminActionsTotal.WithLabelValues(action, status).Inc()
}
