package geolib

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricResultFound    = "found"
	metricResultNotFound = "not_found"
	metricResultError    = "error"
)

var (
	metricLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geoweblog",
		Subsystem: "dataset",
		Name:      "lookups_total",
		Help:      "Total dataset lookups by outcome",
	}, []string{"dataset", "result"})

	metricLookupDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "geoweblog",
		Subsystem: "dataset",
		Name:      "lookup_duration_seconds",
		Help:      "Dataset lookup latency in seconds",
		Buckets:   []float64{0.000001, 0.00001, 0.0001, 0.001, 0.01, 0.1},
	}, []string{"dataset"})

	metricInvalidAddresses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "geoweblog",
		Subsystem: "enricher",
		Name:      "invalid_addresses_total",
		Help:      "Total malformed addresses given to enricher",
	})

	metricReloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geoweblog",
		Subsystem: "dataset",
		Name:      "reloads_total",
		Help:      "Total dataset reloads by outcome",
	}, []string{"dataset", "result"})
)

func observeLookup(name string, result LookupResult, err error, seconds float64) {
	outcome := metricResultNotFound

	switch {
	case err != nil:
		outcome = metricResultError
	case result.OK():
		outcome = metricResultFound
	}

	metricLookupsTotal.WithLabelValues(name, outcome).Inc()
	metricLookupDuration.WithLabelValues(name).Observe(seconds)
}
