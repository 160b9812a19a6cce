// Package metrics holds the Prometheus collectors exported at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts handled requests by route and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "planets_http_requests_total",
		Help: "Total HTTP requests by method, route and status code",
	}, []string{"method", "route", "status"})

	// HTTPLatency records request latency by route.
	HTTPLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "planets_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// TaskRankWrites counts ordered-task operations by kind and outcome.
	TaskRankWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "planets_task_rank_operations_total",
		Help: "Ordered task operations by kind and outcome",
	}, []string{"operation", "outcome"})

	// ColumnLockWait records time spent waiting for column locks.
	ColumnLockWait = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "planets_column_lock_wait_seconds",
		Help:    "Time spent acquiring column locks",
		Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
	})

	// RateLimited counts requests rejected by the limiter.
	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "planets_rate_limited_total",
		Help: "Requests rejected by the rate limiter",
	})
)
