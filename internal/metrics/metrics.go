package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ---------------------------------------------------------------------------
// Registry
// ---------------------------------------------------------------------------

var defaultRegistry = newRegistry()

func newRegistry() *prometheus.Registry {
	r := prometheus.NewRegistry()
	r.MustRegister(collectors.NewGoCollector())
	r.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return r
}

// Default returns the application registry.
func Default() *prometheus.Registry {
	return defaultRegistry
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(defaultRegistry, promhttp.HandlerOpts{})
}

// ---------------------------------------------------------------------------
// Pre-defined Application Metrics
// ---------------------------------------------------------------------------

var (
	// Provider probes by outcome: match, empty, error.
	ProviderProbes = register(prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "flightlog_provider_probes_total",
		Help: "Telemetry provider probes by outcome.",
	}, []string{"outcome"}))
	// Probes that matched, by ladder offset in minutes.
	ProbeMatches = register(prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "flightlog_provider_probe_matches_total",
		Help: "Matched telemetry probes by ladder offset.",
	}, []string{"offset_min"}))
	// FR24 HTTP requests by result: ok, empty, failed.
	ProviderRequests = register(prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "flightlog_fr24_requests_total",
		Help: "Flightradar24 API requests by result.",
	}, []string{"result"}))
	ProviderLatency = register(prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "flightlog_provider_latency_seconds",
		Help:    "Telemetry provider request latency.",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}))

	// Enrichment results by outcome: ok, stale, not_found, reference_missing, invalid_time, error.
	Enrichments = register(prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "flightlog_enrichments_total",
		Help: "Flight enrichments by outcome.",
	}, []string{"outcome"}))
	EnrichmentLatency = register(prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "flightlog_enrichment_latency_seconds",
		Help:    "End-to-end enrichment latency.",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}))

	// Reference lookups by kind (airport, airline, emission) and result (hit, miss, error).
	ReferenceLookups = register(prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "flightlog_reference_lookups_total",
		Help: "Reference data lookups by kind and result.",
	}, []string{"kind", "result"}))
	ReferenceCache = register(prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "flightlog_reference_cache_total",
		Help: "Reference cache hits and misses.",
	}, []string{"result"}))

	// Aggregations served.
	Aggregations = register(prometheus.NewCounter(prometheus.CounterOpts{
		Name: "flightlog_aggregations_total",
		Help: "Statistics snapshots computed.",
	}))

	// HTTP metrics
	HTTPRequests = register(prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "flightlog_http_requests_total",
		Help: "Total HTTP requests.",
	}, []string{"method", "route", "status"}))
	HTTPLatency = register(prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "flightlog_http_latency_seconds",
		Help:    "HTTP request latency.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 5},
	}, []string{"route"}))
	ActiveConnections = register(prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "flightlog_active_connections",
		Help: "Number of in-flight HTTP requests.",
	}))
)

func register[C prometheus.Collector](c C) C {
	defaultRegistry.MustRegister(c)
	return c
}
