package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Poll loop metrics
	TicksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "harvestguard_ticks_total",
			Help: "Total number of poll loop ticks",
		},
	)

	FetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harvestguard_fetch_total",
			Help: "Total number of source fetch attempts",
		},
		[]string{"status"}, // status: success, no_reading
	)

	FetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "harvestguard_fetch_duration_seconds",
			Help:    "Time taken to fetch a reading from the source",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)

	// Store metrics
	StoreWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harvestguard_store_writes_total",
			Help: "Total number of object store writes",
		},
		[]string{"namespace", "status"}, // status: success, failed
	)

	StoreWriteDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "harvestguard_store_write_duration_seconds",
			Help:    "Time taken to write one object to the store",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
	)

	// Alerting metrics
	AlertsFiredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harvestguard_alerts_fired_total",
			Help: "Total number of threshold alerts fired",
		},
		[]string{"metric"},
	)

	NotifyTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harvestguard_notify_total",
			Help: "Total number of notification attempts",
		},
		[]string{"status"}, // status: success, failed
	)

	// Relay metrics
	RelayEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harvestguard_relay_events_total",
			Help: "Total number of relay events handled",
		},
		[]string{"status"}, // status: accepted, rejected, error
	)

	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harvestguard_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "harvestguard_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint", "status"},
	)

	// Panic recovery
	PanicsRecovered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harvestguard_panics_recovered_total",
			Help: "Total number of panics recovered",
		},
		[]string{"component"},
	)
)
