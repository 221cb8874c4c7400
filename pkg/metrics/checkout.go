package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Checkout outcome labels.
const (
	OutcomeCompleted = "completed"
	OutcomeRedirect  = "redirect"
	OutcomeEmpty     = "empty"
	OutcomeFailed    = "failed"
)

// CheckoutMetrics records checkout attempts and the orders they create.
type CheckoutMetrics struct {
	attempts *prometheus.CounterVec
	orders   *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewCheckoutMetrics registers the checkout metrics on reg. A nil registerer
// yields a no-op recorder.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dronemart",
		Name:      "checkout_attempts_total",
		Help:      "Checkout attempts by outcome.",
	}, []string{"outcome"})
	orders := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dronemart",
		Name:      "orders_created_total",
		Help:      "Orders inserted by checkout, by transaction mode.",
	}, []string{"action"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "dronemart",
		Name:      "checkout_duration_seconds",
		Help:      "Time spent reconciling a cart into orders.",
		Buckets:   prometheus.DefBuckets,
	})
	reg.MustRegister(attempts, orders, duration)
	return &CheckoutMetrics{attempts: attempts, orders: orders, duration: duration}
}

// ObserveAttempt records one checkout with its outcome and duration.
func (m *CheckoutMetrics) ObserveAttempt(outcome string, took time.Duration) {
	if m == nil || m.attempts == nil {
		return
	}
	m.attempts.WithLabelValues(normalizeLabel(outcome)).Inc()
	m.duration.Observe(took.Seconds())
}

// IncOrder counts one inserted order.
func (m *CheckoutMetrics) IncOrder(action string) {
	if m == nil || m.orders == nil {
		return
	}
	m.orders.WithLabelValues(normalizeLabel(action)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
