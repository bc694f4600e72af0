package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "wildfire_map"

// Metrics holds the Prometheus counters, histograms, and gauges for the service.
type Metrics struct {
	// Graticule generation.
	GraticuleRequests *prometheus.CounterVec // labels: outcome={ok,empty,invalid,projection}
	GraticuleLines    prometheus.Histogram
	GraticuleDuration prometheus.Histogram

	// Fire/shelter/route API.
	UpstreamRequests *prometheus.CounterVec   // labels: endpoint={fire_init,safe_path,shelters}, outcome={success,error}
	UpstreamDuration *prometheus.HistogramVec // labels: endpoint

	// Cache lookups.
	CacheLookups *prometheus.CounterVec // labels: cache={safe_path,geocode}, result={hit,miss}

	// Fire-state stream.
	FireUpdatesConsumed     prometheus.Counter
	FireUpdatesApplied      prometheus.Counter
	FireUpdateErrors        prometheus.Counter
	PipelineRunning         prometheus.Gauge
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Shelters.
	SheltersIndexed prometheus.Gauge

	// Geocoding.
	GeocodeRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	GeocodeAPIDuration prometheus.Histogram
	GeocodeEnabled     prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		GraticuleRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "graticule_requests_total",
			Help:      "Graticule generations by outcome.",
		}, []string{"outcome"}),
		GraticuleLines: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "graticule_lines",
			Help:      "Number of lines emitted per generation.",
			Buckets:   []float64{0, 10, 25, 50, 100, 150, 200, 240, 500},
		}),
		GraticuleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "graticule_duration_seconds",
			Help:      "Time spent generating a graticule.",
			Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		}),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Fire API requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_duration_seconds",
			Help:      "Fire API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"endpoint"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by cache and result.",
		}, []string{"cache", "result"}),
		FireUpdatesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fire_updates_consumed_total",
			Help:      "Total fire-state messages read from the source topic.",
		}),
		FireUpdatesApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fire_updates_applied_total",
			Help:      "Total fire-state updates loaded into the store and sink.",
		}),
		FireUpdateErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fire_update_errors_total",
			Help:      "Total fire-state messages that failed to parse.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the fire-state pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of messages per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-transform-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		SheltersIndexed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "shelters_indexed",
			Help:      "Number of shelters in the index after the last refresh.",
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      "Reverse geocoding requests by outcome.",
		}, []string{"outcome"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geocode_api_duration_seconds",
			Help:      "Mapbox API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "geocode_enabled",
			Help:      "1 when shelter address enrichment is enabled, 0 otherwise.",
		}),
	}

	prometheus.MustRegister(
		m.GraticuleRequests,
		m.GraticuleLines,
		m.GraticuleDuration,
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.CacheLookups,
		m.FireUpdatesConsumed,
		m.FireUpdatesApplied,
		m.FireUpdateErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.SheltersIndexed,
		m.GeocodeRequests,
		m.GeocodeAPIDuration,
		m.GeocodeEnabled,
	)

	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		GraticuleRequests:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "graticule_requests_total"}, []string{"outcome"}),
		GraticuleLines:          prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "graticule_lines"}),
		GraticuleDuration:       prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "graticule_duration_seconds"}),
		UpstreamRequests:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "upstream_requests_total"}, []string{"endpoint", "outcome"}),
		UpstreamDuration:        prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: namespace, Name: "upstream_duration_seconds"}, []string{"endpoint"}),
		CacheLookups:            prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "cache_lookups_total"}, []string{"cache", "result"}),
		FireUpdatesConsumed:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "fire_updates_consumed_total"}),
		FireUpdatesApplied:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "fire_updates_applied_total"}),
		FireUpdateErrors:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "fire_update_errors_total"}),
		PipelineRunning:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "pipeline_running"}),
		BatchSize:               prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "batch_size"}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "batch_processing_duration_seconds"}),
		SheltersIndexed:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "shelters_indexed"}),
		GeocodeRequests:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "geocode_requests_total"}, []string{"outcome"}),
		GeocodeAPIDuration:      prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "geocode_api_duration_seconds"}),
		GeocodeEnabled:          prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "geocode_enabled"}),
	}
}
