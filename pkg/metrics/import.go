package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ImportBatchMetrics records metadata for bulk import runs.
type ImportBatchMetrics struct {
	duration *prometheus.HistogramVec
	imported *prometheus.CounterVec
	failed   *prometheus.CounterVec
}

// NewImportBatchMetrics registers the import metrics on the provided registerer.
func NewImportBatchMetrics(reg prometheus.Registerer) *ImportBatchMetrics {
	if reg == nil {
		return &ImportBatchMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "import_batch_duration_seconds",
		Help:    "Duration of bulk import batches in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"source"})
	imported := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "import_rows_imported",
		Help: "Rows imported successfully.",
	}, []string{"source"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "import_rows_failed",
		Help: "Rows rejected during import.",
	}, []string{"source"})
	reg.MustRegister(duration, imported, failed)
	return &ImportBatchMetrics{
		duration: duration,
		imported: imported,
		failed:   failed,
	}
}

// ObserveDuration records the duration for the named import source.
func (m *ImportBatchMetrics) ObserveDuration(source string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(source)).Observe(duration.Seconds())
}

// AddImported adds to the imported-rows counter for the named source.
func (m *ImportBatchMetrics) AddImported(source string, rows int) {
	if m == nil || m.imported == nil || rows <= 0 {
		return
	}
	m.imported.WithLabelValues(normalizeLabel(source)).Add(float64(rows))
}

// AddFailed adds to the failed-rows counter for the named source.
func (m *ImportBatchMetrics) AddFailed(source string, rows int) {
	if m == nil || m.failed == nil || rows <= 0 {
		return
	}
	m.failed.WithLabelValues(normalizeLabel(source)).Add(float64(rows))
}

func normalizeLabel(source string) string {
	if source == "" {
		return "unknown"
	}
	return source
}
