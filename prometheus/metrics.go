// Package prometheus instruments docbot services with Prometheus collectors
// and exposes them for scraping.
package prometheus

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Fetch results.
const (
	ResultOK     = "ok"
	ResultFailed = "failed"
)

// Metrics holds the collectors for crawling and searching.
type Metrics struct {
	FetchTotal         *prometheus.CounterVec
	PagesUpsertedTotal *prometheus.CounterVec
	SearchTotal        *prometheus.CounterVec
	SearchDuration     *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// uses a fresh registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		FetchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docbot_fetch_total",
				Help: "Total page fetches by result (ok, failed).",
			},
			[]string{"result"},
		),
		PagesUpsertedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docbot_pages_upserted_total",
				Help: "Total pages written to the index by language and whether content changed.",
			},
			[]string{"language", "changed"},
		),
		SearchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docbot_search_total",
				Help: "Total searches by language.",
			},
			[]string{"language"},
		),
		SearchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "docbot_search_duration_seconds",
				Help:    "Search latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"language"},
		),
		gatherer: reg,
	}

	reg.MustRegister(
		m.FetchTotal,
		m.PagesUpsertedTotal,
		m.SearchTotal,
		m.SearchDuration,
	)

	return m
}

// Handler returns the scrape HTTP handler for the registry m was created
// with.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
