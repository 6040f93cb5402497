// Package metrics provides Prometheus metrics for the bootstrapper.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// Namespace for all bootstrapper metrics
	namespace = "bootstrapper"
)

var (
	// CompositionsTotal tracks composition requests
	CompositionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "compositions_total",
			Help:      "Total number of composition requests",
		},
	)

	// AddonsRemoved tracks addons dropped during composition
	AddonsRemoved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "addons_removed_total",
			Help:      "Total number of addons dropped from compositions",
		},
		[]string{"addon"},
	)

	// ExchangeFailures tracks failed hosted configuration exchanges
	ExchangeFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exchange_failures_total",
			Help:      "Total number of failed hosted configuration exchanges",
		},
		[]string{"service"},
	)

	// SyncTotal tracks addon collection sync attempts by result
	SyncTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_total",
			Help:      "Total number of addon collection sync attempts",
		},
		[]string{"result"},
	)

	// SyncDuration tracks addon collection sync duration
	SyncDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sync_duration_seconds",
			Help:      "Duration of addon collection sync calls in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
	)
)

func init() {
	prometheus.MustRegister(
		CompositionsTotal,
		AddonsRemoved,
		ExchangeFailures,
		SyncTotal,
		SyncDuration,
	)
}

// RecordSyncSuccess records a successful collection sync
func RecordSyncSuccess(duration float64) {
	SyncTotal.WithLabelValues("success").Inc()
	SyncDuration.Observe(duration)
}

// RecordSyncFailure records a failed collection sync
func RecordSyncFailure(duration float64) {
	SyncTotal.WithLabelValues("failure").Inc()
	SyncDuration.Observe(duration)
}

// RecordExchangeFailure records a failed hosted exchange for a service
func RecordExchangeFailure(service string) {
	ExchangeFailures.WithLabelValues(service).Inc()
}
