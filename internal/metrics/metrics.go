package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SearchBackendRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "icpfinder_search_backend_requests_total",
		Help: "Search backend calls by backend and outcome status.",
	}, []string{"backend", "status"})

	SearchBackendDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "icpfinder_search_backend_duration_seconds",
		Help:    "Latency of search backend calls.",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20},
	}, []string{"backend"})

	SearchCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "icpfinder_search_cache_total",
		Help: "Search cache lookups by result (hit, miss, error).",
	}, []string{"result"})

	Runs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "icpfinder_runs_total",
		Help: "Finder runs by parsed search type.",
	}, []string{"search_type"})

	FanoutFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "icpfinder_fanout_failures_total",
		Help: "Company to people sub-searches that failed and contributed no results.",
	})
)
