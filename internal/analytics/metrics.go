// internal/analytics/metrics.go
package analytics

import (
	"github.com/Ananya-0081/insightx-upi/internal/dataset"
	"github.com/Ananya-0081/insightx-upi/internal/models"
)

// MetricKind tells presentation code how to format a metric's values.
type MetricKind string

const (
	KindPercent  MetricKind = "percent"
	KindCurrency MetricKind = "currency"
	KindCount    MetricKind = "count"
)

type metricDef struct {
	kind    MetricKind
	compute func(rows []*dataset.Transaction) float64
}

// metricDefs is the single place a metric's aggregation is defined. Rate
// metrics are percentages in [0,100]; empty inputs aggregate to zero.
var metricDefs = map[models.Metric]metricDef{
	models.MetricFraudRate:   {kind: KindPercent, compute: fraudRate},
	models.MetricFailureRate: {kind: KindPercent, compute: failureRate},
	models.MetricAvgAmount:   {kind: KindCurrency, compute: avgAmount},
	models.MetricCount:       {kind: KindCount, compute: rowCount},
	models.MetricTotalVolume: {kind: KindCurrency, compute: totalVolume},
}

// KindOf returns the presentation kind of a metric, defaulting to count.
func KindOf(m models.Metric) MetricKind {
	if def, ok := metricDefs[m]; ok {
		return def.kind
	}
	return KindCount
}

// Supported reports whether the metric has an aggregation definition.
func Supported(m models.Metric) bool {
	_, ok := metricDefs[m]
	return ok
}

func fraudRate(rows []*dataset.Transaction) float64 {
	if len(rows) == 0 {
		return 0
	}
	n := 0
	for _, t := range rows {
		if t.IsFraud {
			n++
		}
	}
	return float64(n) / float64(len(rows)) * 100
}

func failureRate(rows []*dataset.Transaction) float64 {
	if len(rows) == 0 {
		return 0
	}
	n := 0
	for _, t := range rows {
		if t.IsFailed() {
			n++
		}
	}
	return float64(n) / float64(len(rows)) * 100
}

func avgAmount(rows []*dataset.Transaction) float64 {
	if len(rows) == 0 {
		return 0
	}
	return totalVolume(rows) / float64(len(rows))
}

func rowCount(rows []*dataset.Transaction) float64 {
	return float64(len(rows))
}

func totalVolume(rows []*dataset.Transaction) float64 {
	sum := 0.0
	for _, t := range rows {
		sum += t.AmountINR
	}
	return sum
}
