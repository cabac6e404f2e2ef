package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the ETL pipeline.
type Metrics struct {
	DocumentsConsumed prometheus.Counter
	EventsProduced    prometheus.Counter
	ParseErrors       prometheus.Counter
	ParseDiagnostics  prometheus.Counter
	PipelineRunning   prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// SnowPilot fetcher metrics.
	FetchRequests *prometheus.CounterVec // labels: outcome={success,error,no_results}
	FetchDuration prometheus.Histogram
	FetchCache    *prometheus.CounterVec // labels: result={hit,miss}
	IndexUpserts  prometheus.Counter
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		DocumentsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "snowpit_etl",
			Name:      "documents_consumed_total",
			Help:      "Total pit documents read from the source topic.",
		}),
		EventsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "snowpit_etl",
			Name:      "events_produced_total",
			Help:      "Total pit events written to the sink topic.",
		}),
		ParseErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "snowpit_etl",
			Name:      "parse_errors_total",
			Help:      "Total documents rejected as malformed or unrecognized.",
		}),
		ParseDiagnostics: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "snowpit_etl",
			Name:      "parse_diagnostics_total",
			Help:      "Total field-level diagnostics recorded on accepted documents.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "snowpit_etl",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "snowpit_etl",
			Name:      "batch_size",
			Help:      "Number of documents per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "snowpit_etl",
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-transform-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "snowpit_etl",
			Name:      "fetch_requests_total",
			Help:      "SnowPilot fetch requests by outcome.",
		}, []string{"outcome"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "snowpit_etl",
			Name:      "fetch_duration_seconds",
			Help:      "SnowPilot query and download duration in seconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		FetchCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "snowpit_etl",
			Name:      "fetch_cache_total",
			Help:      "Downloaded document cache lookups by result.",
		}, []string{"result"}),
		IndexUpserts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "snowpit_etl",
			Name:      "index_upserts_total",
			Help:      "Total pit rows written to the local index.",
		}),
	}

	prometheus.MustRegister(
		m.DocumentsConsumed,
		m.EventsProduced,
		m.ParseErrors,
		m.ParseDiagnostics,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.FetchRequests,
		m.FetchDuration,
		m.FetchCache,
		m.IndexUpserts,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		DocumentsConsumed:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "snowpit_etl", Name: "documents_consumed_total"}),
		EventsProduced:          prometheus.NewCounter(prometheus.CounterOpts{Namespace: "snowpit_etl", Name: "events_produced_total"}),
		ParseErrors:             prometheus.NewCounter(prometheus.CounterOpts{Namespace: "snowpit_etl", Name: "parse_errors_total"}),
		ParseDiagnostics:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "snowpit_etl", Name: "parse_diagnostics_total"}),
		PipelineRunning:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "snowpit_etl", Name: "pipeline_running"}),
		BatchSize:               prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "snowpit_etl", Name: "batch_size"}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "snowpit_etl", Name: "batch_processing_duration_seconds"}),
		FetchRequests:           prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "snowpit_etl", Name: "fetch_requests_total"}, []string{"outcome"}),
		FetchDuration:           prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "snowpit_etl", Name: "fetch_duration_seconds"}),
		FetchCache:              prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "snowpit_etl", Name: "fetch_cache_total"}, []string{"result"}),
		IndexUpserts:            prometheus.NewCounter(prometheus.CounterOpts{Namespace: "snowpit_etl", Name: "index_upserts_total"}),
	}
}
