// Package metrics exposes Prometheus collectors for the payments service.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "payments",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		},
		[]string{"route", "method", "code"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "payments",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets: []float64{
				0.01, 0.02, 0.05, 0.1, 0.2, 0.3,
				0.5, 0.8, 1.2, 2, 3, 5,
			},
		},
		[]string{"route"},
	)

	// PaymentsCreatedTotal counts create attempts by outcome:
	// admitted, lock_contention, duplicate, lock_unavailable, invalid, error.
	PaymentsCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "payments",
			Name:      "created_total",
			Help:      "Payment create attempts by outcome.",
		},
		[]string{"outcome"},
	)

	ProviderSubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "payments",
			Name:      "provider_submissions_total",
			Help:      "Provider submissions by provider and result.",
		},
		[]string{"provider", "result"},
	)

	ReconciliationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "payments",
			Name:      "reconciliations_total",
			Help:      "Webhook status transitions applied or rejected.",
		},
		[]string{"from", "to", "result"},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		PaymentsCreatedTotal,
		ProviderSubmissionsTotal,
		ReconciliationsTotal,
	)
}

func ObserveHTTP(route, method, code string, seconds float64) {
	HTTPRequestsTotal.WithLabelValues(route, method, code).Inc()
	HTTPRequestDuration.WithLabelValues(route).Observe(seconds)
}

func IncCreated(outcome string) {
	PaymentsCreatedTotal.WithLabelValues(outcome).Inc()
}

func IncSubmission(provider, result string) {
	ProviderSubmissionsTotal.WithLabelValues(provider, result).Inc()
}

func IncReconciliation(from, to, result string) {
	ReconciliationsTotal.WithLabelValues(from, to, result).Inc()
}
