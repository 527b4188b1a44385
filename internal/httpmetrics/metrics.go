// Package httpmetrics instruments the server loop with Prometheus
// collectors. It observes the unchanged accept/parse/match/respond flow;
// it never changes control flow.
package httpmetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collectors groups every metric the server loop touches. The zero value is
// not usable; construct with NewCollectors.
type Collectors struct {
	ConnectionsAccepted prometheus.Counter
	ParseFailures       *prometheus.CounterVec
	RoutesMatched       *prometheus.CounterVec
	RoutesUnmatched     prometheus.Counter
	ResponseLatency     prometheus.Histogram
}

// NewCollectors builds a Collectors and registers it against reg. Pass
// prometheus.NewRegistry() for an isolated registry in tests, or
// prometheus.DefaultRegisterer in production.
func NewCollectors(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		ConnectionsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "httpd",
			Name:      "connections_accepted_total",
			Help:      "Total TCP connections accepted by the server loop.",
		}),
		ParseFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "httpd",
			Name:      "parse_failures_total",
			Help:      "Total requests that failed to parse, labeled by error kind.",
		}, []string{"kind"}),
		RoutesMatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "httpd",
			Name:      "routes_matched_total",
			Help:      "Total requests matched to a handler, labeled by pattern.",
		}, []string{"pattern"}),
		RoutesUnmatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "httpd",
			Name:      "routes_unmatched_total",
			Help:      "Total requests that matched no registered handler.",
		}),
		ResponseLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "httpd",
			Name:      "response_latency_seconds",
			Help:      "Time from accept to final response byte written.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(c.ConnectionsAccepted, c.ParseFailures, c.RoutesMatched, c.RoutesUnmatched, c.ResponseLatency)
	return c
}

// ObserveLatency records the elapsed duration since start.
func (c *Collectors) ObserveLatency(start time.Time) {
	c.ResponseLatency.Observe(time.Since(start).Seconds())
}
