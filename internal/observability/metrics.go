package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for an
// inversion analysis run.
type Metrics struct {
	ReportsFetched    prometheus.Counter
	MonthsSkipped     prometheus.Counter
	ProfilesProcessed prometheus.Counter
	ProfilesFailed    prometheus.Counter
	SegmentsDetected  prometheus.Counter
	EventsPublished   prometheus.Counter
	EventsArchived    prometheus.Counter
	RunActive         prometheus.Gauge

	ProfileLevels prometheus.Histogram
	MonthDuration prometheus.Histogram
}

// NewMetrics creates and registers all run metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		ReportsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sounding_etl",
			Name:      "reports_fetched_total",
			Help:      "Total monthly report pages retrieved.",
		}),
		MonthsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sounding_etl",
			Name:      "months_skipped_total",
			Help:      "Months skipped because no report text was available.",
		}),
		ProfilesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sounding_etl",
			Name:      "profiles_processed_total",
			Help:      "Profiles that yielded at least one inversion event.",
		}),
		ProfilesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sounding_etl",
			Name:      "profiles_failed_total",
			Help:      "Profiles discarded during parsing or yielding no events.",
		}),
		SegmentsDetected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sounding_etl",
			Name:      "segments_detected_total",
			Help:      "Candidate inversion segments before filtering.",
		}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sounding_etl",
			Name:      "events_published_total",
			Help:      "Inversion events published to the Kafka sink.",
		}),
		EventsArchived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sounding_etl",
			Name:      "events_archived_total",
			Help:      "Inversion events written to the sqlite archive.",
		}),
		RunActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sounding_etl",
			Name:      "run_active",
			Help:      "1 while a run is in progress, 0 otherwise.",
		}),
		ProfileLevels: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "sounding_etl",
			Name:      "profile_levels",
			Help:      "Number of parsed levels per profile.",
			Buckets:   []float64{5, 10, 20, 40, 60, 80, 100, 150},
		}),
		MonthDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "sounding_etl",
			Name:      "month_processing_duration_seconds",
			Help:      "Duration of one month's fetch-split-parse-classify cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
		}),
	}

	prometheus.MustRegister(
		m.ReportsFetched,
		m.MonthsSkipped,
		m.ProfilesProcessed,
		m.ProfilesFailed,
		m.SegmentsDetected,
		m.EventsPublished,
		m.EventsArchived,
		m.RunActive,
		m.ProfileLevels,
		m.MonthDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		ReportsFetched:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "sounding_etl", Name: "reports_fetched_total"}),
		MonthsSkipped:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "sounding_etl", Name: "months_skipped_total"}),
		ProfilesProcessed: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "sounding_etl", Name: "profiles_processed_total"}),
		ProfilesFailed:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "sounding_etl", Name: "profiles_failed_total"}),
		SegmentsDetected:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "sounding_etl", Name: "segments_detected_total"}),
		EventsPublished:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "sounding_etl", Name: "events_published_total"}),
		EventsArchived:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "sounding_etl", Name: "events_archived_total"}),
		RunActive:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "sounding_etl", Name: "run_active"}),
		ProfileLevels:     prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "sounding_etl", Name: "profile_levels"}),
		MonthDuration:     prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "sounding_etl", Name: "month_processing_duration_seconds"}),
	}
}
