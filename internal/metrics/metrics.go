// Package metrics exposes prometheus counters for pipeline activity and an
// optional /metrics listener for scheduled runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PageFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_page_fetches_total",
			Help: "Schedule and detail page fetches, by outcome",
		},
		[]string{"source", "outcome"}, // source: live|cache, outcome: ok|error
	)

	ExtractionCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_extraction_calls_total",
			Help: "Language model extraction calls, by outcome",
		},
		[]string{"outcome"}, // ok|error
	)

	ReconcileOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_reconcile_operations_total",
			Help: "Events inserted, updated, and deleted by reconciliation",
		},
		[]string{"operation"}, // inserted|updated|deleted
	)

	VenueFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "events_venue_failures_total",
			Help: "Venue-scoped pipeline failures recorded in run summaries",
		},
	)

	ExtractionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "events_extraction_duration_seconds",
			Help:    "Wall time of language model extraction calls",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)
)

// Serve starts a /metrics listener on addr in the background. Errors are
// returned through the channel; the caller typically just logs them.
func Serve(addr string) <-chan error {
	errc := make(chan error, 1)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		errc <- srv.ListenAndServe()
	}()
	return errc
}
