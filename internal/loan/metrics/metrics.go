package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the loan module.
type Metrics struct {
	// Decision outcomes by mode, decision, and reason code.
	Decisions *prometheus.CounterVec

	// Vendor call results by classified status.
	VendorCalls *prometheus.CounterVec

	// Vendor call latency.
	VendorLatency prometheus.Histogram

	// Full application processing latency including the vendor call.
	ProcessLatency prometheus.Histogram
}

// New creates a Metrics instance with all loan module metrics registered.
func New() *Metrics {
	return &Metrics{
		Decisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lendgate_decisions_total",
			Help: "Total loan decisions by mode, decision, and reason code",
		}, []string{"mode", "decision", "reason_code"}),

		VendorCalls: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lendgate_vendor_calls_total",
			Help: "Total vendor risk-score calls by classified status",
		}, []string{"status"}),

		VendorLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "lendgate_vendor_call_duration_seconds",
			Help:    "Duration of vendor risk-score calls",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),

		ProcessLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "lendgate_process_duration_seconds",
			Help:    "Duration of full application processing including the vendor call",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

// IncrementDecision records a decision outcome.
func (m *Metrics) IncrementDecision(mode, decision, reasonCode string) {
	if m != nil {
		m.Decisions.WithLabelValues(mode, decision, reasonCode).Inc()
	}
}

// ObserveVendorCall records one vendor call with its classified status.
func (m *Metrics) ObserveVendorCall(status string, d time.Duration) {
	if m != nil {
		m.VendorCalls.WithLabelValues(status).Inc()
		m.VendorLatency.Observe(d.Seconds())
	}
}

// ObserveProcessLatency records the total processing duration.
func (m *Metrics) ObserveProcessLatency(d time.Duration) {
	if m != nil {
		m.ProcessLatency.Observe(d.Seconds())
	}
}
