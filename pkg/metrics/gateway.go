package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// GatewayMetrics records payment gateway traffic by operation and outcome.
type GatewayMetrics struct {
	duration *prometheus.HistogramVec
	calls    *prometheus.CounterVec
}

// NewGatewayMetrics registers the gateway metrics on the provided registerer.
func NewGatewayMetrics(reg prometheus.Registerer) *GatewayMetrics {
	if reg == nil {
		return &GatewayMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "payment_gateway_call_duration_seconds",
		Help:    "Duration of payment gateway calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	calls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_gateway_calls",
		Help: "Payment gateway calls by operation and outcome.",
	}, []string{"operation", "outcome"})
	reg.MustRegister(duration, calls)
	return &GatewayMetrics{
		duration: duration,
		calls:    calls,
	}
}

// ObserveCall records one gateway round trip.
func (g *GatewayMetrics) ObserveCall(operation, outcome string, duration time.Duration) {
	if g == nil || g.calls == nil {
		return
	}
	op := normalizeLabel(operation)
	g.calls.WithLabelValues(op, normalizeLabel(outcome)).Inc()
	g.duration.WithLabelValues(op).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
