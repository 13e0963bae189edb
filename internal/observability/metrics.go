package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "msg2_etl"

// Metrics holds the Prometheus counters, histograms, and gauges for the ETL pipeline.
type Metrics struct {
	RecordsConsumed prometheus.Counter
	RecordsProduced prometheus.Counter
	DecodeErrors    prometheus.Counter
	PipelineRunning prometheus.Gauge

	// Decoding breakdown.
	RecordsByGroup *prometheus.CounterVec // labels: group
	UnknownGroups  prometheus.Counter

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Archive sink metrics.
	ArchiveWrites *prometheus.CounterVec // labels: outcome={success,error}
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RecordsConsumed,
		m.RecordsProduced,
		m.DecodeErrors,
		m.PipelineRunning,
		m.RecordsByGroup,
		m.UnknownGroups,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.ArchiveWrites,
	)
	return m
}

// NewUnregisteredMetrics creates Metrics without registering them, avoiding
// "already registered" panics in tests. One-shot CLI runs use it too since
// they never serve /metrics.
func NewUnregisteredMetrics() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RecordsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_consumed_total",
			Help:      "Total raw records read from the source.",
		}),
		RecordsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_produced_total",
			Help:      "Total decoded records written to the sinks.",
		}),
		DecodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_errors_total",
			Help:      "Total records rejected by the decoder.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		RecordsByGroup: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_decoded_total",
			Help:      "Decoded records by group code.",
		}, []string{"group"}),
		UnknownGroups: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unknown_group_records_total",
			Help:      "Decoded records whose group code carries no variables.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of records per batch extracted from the source.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-decode-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		ArchiveWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "archive_writes_total",
			Help:      "Archive batch writes by outcome.",
		}, []string{"outcome"}),
	}
}
