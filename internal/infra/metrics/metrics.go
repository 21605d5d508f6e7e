package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "highlight",
	Subsystem: "http",
	Name:      "requests_total",
	Help:      "HTTP requests by route, method and status",
}, []string{"route", "method", "status"})

var HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "highlight",
	Subsystem: "http",
	Name:      "request_duration_seconds",
	Help:      "HTTP request latency by route",
	Buckets:   prometheus.DefBuckets,
}, []string{"route", "method"})

var EntitlementChecks = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "highlight",
	Subsystem: "access",
	Name:      "entitlement_checks_total",
	Help:      "Entitlement decisions by feature and outcome",
}, []string{"feature", "granted"})

var ExternalCalls = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "highlight",
	Subsystem: "external",
	Name:      "calls_total",
	Help:      "Calls to third-party platforms by provider, operation and outcome",
}, []string{"provider", "operation", "outcome"})

var UploadRejections = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "highlight",
	Subsystem: "uploads",
	Name:      "rejected_files_total",
	Help:      "Files rejected by the upload validator, by reason",
}, []string{"reason"})

// ObserveExternal records the outcome of a third-party call.
func ObserveExternal(provider, operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	ExternalCalls.WithLabelValues(provider, operation, outcome).Inc()
}
