package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "gogotex", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "gogotex", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	ResourceRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "gogotex", Name: "resource_requests_total", Help: "Resource actions handled, by collection, action and outcome."},
		[]string{"collection", "action", "outcome"},
	)
	ResourceDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: "gogotex", Name: "resource_request_duration_seconds", Help: "Time spent in the store per resource action.", Buckets: prometheus.DefBuckets},
		[]string{"collection", "action"},
	)
)

// Outcome labels for ResourceRequests.
const (
	OutcomeOK         = "ok"
	OutcomeBadRequest = "bad_request"
	OutcomeError      = "error"
)

// ObserveAction records one handled resource action.
func ObserveAction(collection, action, outcome string, d time.Duration) {
	ResourceRequests.WithLabelValues(collection, action, outcome).Inc()
	if outcome != OutcomeBadRequest {
		ResourceDuration.WithLabelValues(collection, action).Observe(d.Seconds())
	}
}

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(ResourceRequests)
	reg.MustRegister(ResourceDuration)
}
