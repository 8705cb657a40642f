// internal/analytics/metrics_test.go
package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Ananya-0081/insightx-upi/internal/dataset"
	"github.com/Ananya-0081/insightx-upi/internal/models"
)

func metricRows() []*dataset.Transaction {
	ts := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	raw := []dataset.Transaction{
		txn("m1", ts, 100, "Delhi", "HDFC", true, false),
		txn("m2", ts, 200, "Delhi", "HDFC", true, false),
		txn("m3", ts, 300, "Delhi", "HDFC", false, true),
		txn("m4", ts, 400, "Delhi", "HDFC", false, false),
	}
	out := make([]*dataset.Transaction, len(raw))
	for i := range raw {
		out[i] = &raw[i]
	}
	return out
}

func TestMetricDefinitions(t *testing.T) {
	rows := metricRows()

	tests := []struct {
		metric models.Metric
		want   float64
	}{
		{models.MetricFraudRate, 50},
		{models.MetricFailureRate, 25},
		{models.MetricAvgAmount, 250},
		{models.MetricCount, 4},
		{models.MetricTotalVolume, 1000},
	}
	for _, tt := range tests {
		t.Run(string(tt.metric), func(t *testing.T) {
			assert.Equal(t, tt.want, metricDefs[tt.metric].compute(rows))
		})
	}
}

func TestMetricDefinitions_EmptyRows(t *testing.T) {
	for metric, def := range metricDefs {
		assert.Zero(t, def.compute(nil), "metric %s", metric)
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindPercent, KindOf(models.MetricFraudRate))
	assert.Equal(t, KindPercent, KindOf(models.MetricFailureRate))
	assert.Equal(t, KindCurrency, KindOf(models.MetricAvgAmount))
	assert.Equal(t, KindCurrency, KindOf(models.MetricTotalVolume))
	assert.Equal(t, KindCount, KindOf(models.MetricCount))
	assert.Equal(t, KindCount, KindOf(models.Metric("median")))
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported(models.MetricCount))
	assert.False(t, Supported(models.Metric("median")))
}
