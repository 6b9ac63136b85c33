package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestImportBatchMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewImportBatchMetrics(reg)
	source := "renewals-xlsx"
	metrics.ObserveDuration(source, 250*time.Millisecond)
	metrics.AddImported(source, 12)
	metrics.AddFailed(source, 3)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "import_rows_imported", "source", source); err != nil {
		t.Fatalf("fetch imported: %v", err)
	} else if got != 12 {
		t.Fatalf("expected imported=12, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "import_rows_failed", "source", source); err != nil {
		t.Fatalf("fetch failed: %v", err)
	} else if got != 3 {
		t.Fatalf("expected failed=3, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "import_batch_duration_seconds", "source", source); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestImportBatchMetricsIgnoresNonPositiveRows(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewImportBatchMetrics(reg)
	metrics.AddImported("src", 0)
	metrics.AddFailed("src", -1)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if mf := findMetricFamily(mfs, "import_rows_imported"); mf != nil && len(mf.GetMetric()) != 0 {
		t.Fatalf("expected no imported samples, got %d", len(mf.GetMetric()))
	}
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
