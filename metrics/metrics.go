// Package metrics exposes the router's Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Requests counts handled requests by terminal outcome: redirect,
	// passthrough or error.
	Requests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "georouter_requests_total",
		Help: "Handled requests by outcome.",
	}, []string{"outcome"})

	// Redirects counts issued redirects by selected region.
	Redirects = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "georouter_redirects_total",
		Help: "Issued redirects by selected region.",
	}, []string{"region"})

	// Duration observes end-to-end request handling time.
	Duration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "georouter_request_duration_seconds",
		Help:    "End-to-end request handling time.",
		Buckets: prometheus.DefBuckets,
	})
)

// Handler serves the default registry for the metrics listener.
func Handler() http.Handler {
	return promhttp.Handler()
}
