// Package observability provides Prometheus metrics and the process logger.
package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ufc-data-lab/internal/domain"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "ufc_data_lab"

// Metrics holds all Prometheus metrics of a dataset build.
// Each instance owns its registry so runs and tests do not collide.
type Metrics struct {
	registry *prometheus.Registry

	// Ingestion metrics
	RowsLoaded *prometheus.CounterVec
	RowsKept   *prometheus.CounterVec

	// Validation metrics
	Warnings *prometheus.CounterVec

	// Output metrics
	RowsWritten     prometheus.Counter
	RecordsExported *prometheus.CounterVec

	// Pipeline metrics
	PipelineRunsTotal *prometheus.CounterVec
	StageDuration     *prometheus.HistogramVec

	// Health metrics
	LastSuccessfulBuild prometheus.Gauge
}

// NewMetrics creates a new Metrics instance on a fresh registry.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		RowsLoaded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "rows_loaded_total",
			Help:      "Total number of raw rows loaded by table",
		}, []string{"table"}),
		RowsKept: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "rows_kept_total",
			Help:      "Total number of rows kept after cleaning by table",
		}, []string{"table"}),

		Warnings: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "validation",
			Name:      "warnings_total",
			Help:      "Total number of row-level validation warnings by table and kind",
		}, []string{"table", "kind"}),

		RowsWritten: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "output",
			Name:      "rows_written_total",
			Help:      "Total number of processed rows written to CSV",
		}),
		RecordsExported: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "output",
			Name:      "records_exported_total",
			Help:      "Total number of records exported by sink",
		}, []string{"sink"}),

		PipelineRunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total number of pipeline runs by status",
		}, []string{"status"}),
		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Pipeline stage duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		}, []string{"stage"}),

		LastSuccessfulBuild: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_build_timestamp",
			Help:      "Unix timestamp of last successful dataset build",
		}),
	}
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler serving this instance's metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordLoaded records raw and kept row counts for a table.
func (m *Metrics) RecordLoaded(stage domain.Stage, loaded, kept int) {
	m.RowsLoaded.WithLabelValues(string(stage)).Add(float64(loaded))
	m.RowsKept.WithLabelValues(string(stage)).Add(float64(kept))
}

// RecordWarnings counts warnings by table and kind.
func (m *Metrics) RecordWarnings(warnings []domain.ValidationWarning) {
	for _, c := range domain.SummarizeWarnings(warnings) {
		m.Warnings.WithLabelValues(string(c.Stage), string(c.Kind)).Add(float64(c.Count))
	}
}

// RecordStage observes a stage duration.
func (m *Metrics) RecordStage(stage string, d time.Duration) {
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordRun records a finished run.
func (m *Metrics) RecordRun(success bool, finishedAt time.Time) {
	if !success {
		m.PipelineRunsTotal.WithLabelValues("error").Inc()
		return
	}
	m.PipelineRunsTotal.WithLabelValues("success").Inc()
	m.LastSuccessfulBuild.Set(float64(finishedAt.Unix()))
}

// WriteTextfile writes the metrics in the node-exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
