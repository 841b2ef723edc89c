// Package metrics holds the Prometheus collectors the pipeline updates.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RecordsSkipped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mikerp_records_skipped_total",
		Help: "Malformed records dropped during extraction",
	}, []string{"record"})

	EntitiesUpserted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mikerp_entities_upserted_total",
		Help: "Entity rows written by the dependency-ordered writer",
	})

	RacesWritten = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mikerp_races_total",
		Help: "Race writes by outcome",
	}, []string{"outcome"})

	EnrichLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mikerp_enrich_lookups_total",
		Help: "Detail lookups by entity kind and outcome",
	}, []string{"kind", "outcome"})

	ProviderRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mikerp_provider_requests_total",
		Help: "Outbound provider requests, retries included, by endpoint",
	}, []string{"endpoint"})

	AggregateRows = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "mikerp_aggregate_rows",
		Help: "Rows written by the last run of each aggregation job",
	}, []string{"job"})

	AggregateDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mikerp_aggregate_duration_seconds",
		Help:    "Time taken by one aggregation job",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
	}, []string{"job"})
)

func init() {
	prometheus.MustRegister(
		RecordsSkipped,
		EntitiesUpserted,
		RacesWritten,
		EnrichLookups,
		ProviderRequests,
		AggregateRows,
		AggregateDuration,
	)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
