package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ResponseTimeHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_time_seconds",
			Help:    "Histogram of response times",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	WebhooksReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_webhooks_total",
			Help: "Payment webhooks received by notification type and outcome",
		},
		[]string{"type", "outcome"},
	)

	CommissionsAllocated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "referral_commissions_total",
			Help: "Referral commission ledger entries written, by level",
		},
		[]string{"nivel"},
	)

	// Fallas de asignación tragadas por el webhook: son la señal de
	// reconciliación fuera de banda.
	CommissionFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "commission_failures_total",
			Help: "Commission allocations that failed and were only logged",
		},
	)
)
