// Package metrics exposes ingestion counters over a Prometheus registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the counters the importer and guide fetcher bump. Construct
// with New; a fresh registry per instance keeps tests independent.
type Metrics struct {
	registry *prometheus.Registry

	ChannelsImported prometheus.Counter
	EPGParsed        prometheus.Counter
	EPGSaved         prometheus.Counter
	FetchFailures    *prometheus.CounterVec
	CatalogSize      prometheus.Gauge
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		ChannelsImported: factory.NewCounter(prometheus.CounterOpts{
			Name: "tvcatalog_channels_imported_total",
			Help: "Channels written to the catalog by playlist imports.",
		}),
		EPGParsed: factory.NewCounter(prometheus.CounterOpts{
			Name: "tvcatalog_epg_entries_parsed_total",
			Help: "Guide entries parsed from XMLTV documents.",
		}),
		EPGSaved: factory.NewCounter(prometheus.CounterOpts{
			Name: "tvcatalog_epg_entries_saved_total",
			Help: "Guide entries upserted into the catalog.",
		}),
		FetchFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tvcatalog_fetch_failures_total",
			Help: "Remote fetches that yielded no usable document.",
		}, []string{"source"}),
		CatalogSize: factory.NewGauge(prometheus.GaugeOpts{
			Name: "tvcatalog_channels",
			Help: "Channels currently in the catalog.",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
