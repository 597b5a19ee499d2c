// Package metrics holds the Prometheus collectors shared across packages.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "argumetrics_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "argumetrics_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	HTTPRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "argumetrics_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	AuthAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "argumetrics_auth_attempts_total",
			Help: "Register and login attempts by outcome",
		},
		[]string{"action", "result"},
	)

	SessionsPrunedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "argumetrics_sessions_pruned_total",
			Help: "Expired sessions removed by the pruner",
		},
	)

	ArgumentsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "argumetrics_arguments_created_total",
			Help: "Arguments created, by archetype",
		},
		[]string{"archetype"},
	)
)
