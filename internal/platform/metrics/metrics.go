// Package metrics holds the process Prometheus collectors
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "orgcore"

// Registry is private so tests and multiple servers never collide on the default registerer
var Registry = prometheus.NewRegistry()

var (
	// AuthzDenials counts guard failures by guard name
	AuthzDenials = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authz_denials_total",
		Help:      "Authorization guard denials.",
	}, []string{"guard"})

	// BillingTransitions counts assignment status changes made by lazy activation
	BillingTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "billing_transitions_total",
		Help:      "Billing plan assignment transitions.",
	}, []string{"transition"})

	// DocstoreConflicts counts optimistic concurrency losses by document
	DocstoreConflicts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "docstore_conflicts_total",
		Help:      "Document writes rejected by a stale updated_at.",
	}, []string{"document"})

	// RateLimitDecisions counts throttle decisions by backend and outcome
	RateLimitDecisions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ratelimit_decisions_total",
		Help:      "Mutation throttle decisions.",
	}, []string{"backend", "outcome"})

	// CacheInvalidations counts org cache tag invalidations by scope
	CacheInvalidations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_invalidations_total",
		Help:      "Org scoped cache invalidations.",
	}, []string{"scope"})

	// HTTPRequests observes request latency by route pattern and status class
	HTTPRequests = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		AuthzDenials,
		BillingTransitions,
		DocstoreConflicts,
		RateLimitDecisions,
		CacheInvalidations,
		HTTPRequests,
	)
}

// Handler serves the registry in the Prometheus text format
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
