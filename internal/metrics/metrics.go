// Package metrics exposes Prometheus collectors for the scraper.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	scraperPagesTotal   prometheus.Counter
	scraperFetchesTotal *prometheus.CounterVec
	scraperStoreSize    prometheus.Gauge
	ingestTotal         *prometheus.CounterVec

	once sync.Once
)

// Init initializes the Prometheus collectors. Safe to call multiple times.
func Init() {
	once.Do(func() {
		scraperPagesTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "scraper_listing_pages_total",
				Help: "Total number of listing pages processed.",
			},
		)
		scraperFetchesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_detail_fetches_total",
				Help: "Total number of detail fetches, labeled by outcome.",
			},
			[]string{"outcome"},
		)
		scraperStoreSize = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "scraper_store_records",
				Help: "Number of records currently persisted in the store.",
			},
		)
		ingestTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingest_jobs_total",
				Help: "Total job records submitted for ingestion, labeled by outcome.",
			},
			[]string{"outcome"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObservePage counts a processed listing page.
func ObservePage() {
	if scraperPagesTotal != nil {
		scraperPagesTotal.Inc()
	}
}

// ObserveFetch counts a detail fetch by outcome: success, failure, skipped.
func ObserveFetch(outcome string) {
	if scraperFetchesTotal != nil {
		scraperFetchesTotal.WithLabelValues(outcome).Inc()
	}
}

// SetStoreSize records the current store size.
func SetStoreSize(n int) {
	if scraperStoreSize != nil {
		scraperStoreSize.Set(float64(n))
	}
}

// ObserveIngest counts an ingestion attempt by outcome: created, duplicate,
// rejected.
func ObserveIngest(outcome string) {
	if ingestTotal != nil {
		ingestTotal.WithLabelValues(outcome).Inc()
	}
}
