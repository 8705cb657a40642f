// internal/insights/builder_test.go
package insights

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ananya-0081/insightx-upi/internal/models"
)

func scalarResult(metric models.Metric, value float64) *models.AggregationResult {
	return &models.AggregationResult{
		Type:           models.ResultScalar,
		Value:          &value,
		Metric:         metric,
		AppliedFilters: map[models.Dimension]string{},
		MatchedRows:    100,
	}
}

func TestBuild_ScalarInsight(t *testing.T) {
	b := NewBuilder(Options{})
	q := &models.StructuredQuery{
		Intent: models.IntentSingle,
		Metric: models.MetricFraudRate,
		Label:  models.LabelMedium,
	}
	res := scalarResult(models.MetricFraudRate, 2.35)
	res.AppliedFilters[models.DimState] = "Delhi"
	res.Breakdown = []models.GroupRow{
		{GroupKey: "HDFC", Value: 3.1},
		{GroupKey: "SBI", Value: 1.2},
	}

	insight := b.Build(q, res)

	_, err := uuid.Parse(insight.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ChartStat, insight.ChartType)
	assert.Equal(t, "The fraud rate is 2.35% where state = Delhi.", insight.Summary)
	assert.Equal(t, models.LabelMedium, insight.ConfidenceLabel)
	assert.False(t, insight.Empty)
	assert.Empty(t, insight.RiskFlags)

	require.Len(t, insight.Highlights, 2)
	assert.Equal(t, "value", insight.Highlights[0].Kind)
	assert.Equal(t, 2.35, insight.Highlights[0].Value)
	assert.Equal(t, "top_group", insight.Highlights[1].Kind)
	assert.Equal(t, "HDFC", insight.Highlights[1].GroupKey)

	assert.NotEmpty(t, insight.FollowUps)
	assert.LessOrEqual(t, len(insight.FollowUps), 3)
}

func TestBuild_RiskFlags(t *testing.T) {
	b := NewBuilder(Options{})

	t.Run("high fraud rate", func(t *testing.T) {
		q := &models.StructuredQuery{Intent: models.IntentSingle, Metric: models.MetricFraudRate}
		insight := b.Build(q, scalarResult(models.MetricFraudRate, 6.5))
		assert.Contains(t, insight.RiskFlags, models.RiskHighFraud)
	})

	t.Run("high failure rate in a group", func(t *testing.T) {
		q := &models.StructuredQuery{Intent: models.IntentRanking, Metric: models.MetricFailureRate}
		res := &models.AggregationResult{
			Type:           models.ResultSeries,
			Metric:         models.MetricFailureRate,
			GroupBy:        models.DimBank,
			AppliedFilters: map[models.Dimension]string{},
			MatchedRows:    50,
			Rows: []models.GroupRow{
				{GroupKey: "SBI", Value: 12.0},
				{GroupKey: "HDFC", Value: 4.0},
			},
		}
		insight := b.Build(q, res)
		assert.Contains(t, insight.RiskFlags, models.RiskHighFailure)
	})

	t.Run("anomalies detected", func(t *testing.T) {
		q := &models.StructuredQuery{Intent: models.IntentAnomaly, Metric: models.MetricCount}
		res := &models.AggregationResult{
			Type:           models.ResultSeries,
			Metric:         models.MetricCount,
			GroupBy:        models.DimState,
			AppliedFilters: map[models.Dimension]string{},
			MatchedRows:    60,
			Rows: []models.GroupRow{
				{GroupKey: "Bihar", Value: 50, IsAnomaly: true, ZScore: 2.24},
				{GroupKey: "Delhi", Value: 2, ZScore: -0.4},
			},
		}
		insight := b.Build(q, res)
		assert.Contains(t, insight.RiskFlags, models.RiskAnomalies)
		assert.Contains(t, insight.Summary, "Bihar")
		assert.Contains(t, insight.Summary, "z = 2.24")
	})
}

func TestBuild_PairComparison(t *testing.T) {
	b := NewBuilder(Options{})
	q := &models.StructuredQuery{
		Intent: models.IntentComparison,
		Metric: models.MetricFailureRate,
		Label:  models.LabelVeryHigh,
	}
	res := &models.AggregationResult{
		Type:           models.ResultComparisonPair,
		Metric:         models.MetricFailureRate,
		GroupBy:        models.DimBank,
		AppliedFilters: map[models.Dimension]string{},
		MatchedRows:    80,
		Rows: []models.GroupRow{
			{GroupKey: "HDFC", Value: 25},
			{GroupKey: "SBI", Value: 50},
		},
		Comparison: &models.PairComparison{AbsoluteDiff: -25, PercentDiff: -50},
	}

	insight := b.Build(q, res)

	assert.Equal(t, models.ChartBar, insight.ChartType)
	assert.Equal(t, "HDFC's failure rate (25.00%) is lower than SBI's (50.00%), a -50.0% difference.", insight.Summary)

	require.Len(t, insight.Highlights, 3)
	assert.Equal(t, "difference", insight.Highlights[2].Kind)
	assert.Equal(t, -25.0, insight.Highlights[2].Value)
}

func TestBuild_TrendUsesLineChart(t *testing.T) {
	b := NewBuilder(Options{})
	q := &models.StructuredQuery{Intent: models.IntentTrend, Metric: models.MetricCount}
	res := &models.AggregationResult{
		Type:           models.ResultSeries,
		Metric:         models.MetricCount,
		GroupBy:        models.DimHour,
		AppliedFilters: map[models.Dimension]string{},
		MatchedRows:    30,
		Rows: []models.GroupRow{
			{GroupKey: "8", Value: 4},
			{GroupKey: "12", Value: 20},
			{GroupKey: "22", Value: 6},
		},
	}

	insight := b.Build(q, res)

	assert.Equal(t, models.ChartLine, insight.ChartType)
	assert.Equal(t, "By hour, transaction count peaks at 12 (20) and dips at 8 (4).", insight.Summary)
}

func TestBuild_SmallComparisonSeriesUsesPie(t *testing.T) {
	b := NewBuilder(Options{})
	q := &models.StructuredQuery{Intent: models.IntentComparison, Metric: models.MetricTotalVolume}
	res := &models.AggregationResult{
		Type:           models.ResultSeries,
		Metric:         models.MetricTotalVolume,
		GroupBy:        models.DimDevice,
		AppliedFilters: map[models.Dimension]string{},
		MatchedRows:    40,
		Rows: []models.GroupRow{
			{GroupKey: "Android", Value: 1000},
			{GroupKey: "iOS", Value: 700},
			{GroupKey: "Web", Value: 120},
		},
	}

	insight := b.Build(q, res)

	assert.Equal(t, models.ChartPie, insight.ChartType)
	assert.Contains(t, insight.Summary, "₹1000.00")
}

func TestBuild_BottomRankingSummary(t *testing.T) {
	b := NewBuilder(Options{})
	q := &models.StructuredQuery{
		Intent:        models.IntentRanking,
		Metric:        models.MetricTotalVolume,
		SortDirection: models.SortAscending,
	}
	res := &models.AggregationResult{
		Type:           models.ResultSeries,
		Metric:         models.MetricTotalVolume,
		GroupBy:        models.DimState,
		AppliedFilters: map[models.Dimension]string{},
		MatchedRows:    20,
		Rows: []models.GroupRow{
			{GroupKey: "Karnataka", Value: 100},
			{GroupKey: "Delhi", Value: 1000},
		},
	}

	insight := b.Build(q, res)

	assert.Equal(t, "Bottom state by total volume: Karnataka at ₹100.00.", insight.Summary)
}

func TestBuild_EmptyResult(t *testing.T) {
	b := NewBuilder(Options{})
	q := &models.StructuredQuery{
		Intent: models.IntentSingle,
		Metric: models.MetricCount,
		Label:  models.LabelLow,
	}
	res := &models.AggregationResult{
		Type:   models.ResultScalar,
		Metric: models.MetricCount,
		AppliedFilters: map[models.Dimension]string{
			models.DimState: "Delhi",
			models.DimBank:  "SBI",
		},
		TimeWindow: models.WindowNight,
		Empty:      true,
	}

	insight := b.Build(q, res)

	assert.True(t, insight.Empty)
	assert.Equal(t, models.ChartStat, insight.ChartType)
	assert.Equal(t, "No transactions match this query where state = Delhi, bank = SBI at night.", insight.Summary)
	assert.Contains(t, insight.FollowUps, "Remove the state filter")
	assert.Contains(t, insight.FollowUps, "Widen the time window")
	assert.Empty(t, insight.Highlights)
	assert.Empty(t, insight.RiskFlags)
}

func TestBuild_NoAnomalySummary(t *testing.T) {
	b := NewBuilder(Options{})
	q := &models.StructuredQuery{Intent: models.IntentAnomaly, Metric: models.MetricCount}
	res := &models.AggregationResult{
		Type:           models.ResultSeries,
		Metric:         models.MetricCount,
		GroupBy:        models.DimState,
		AppliedFilters: map[models.Dimension]string{},
		MatchedRows:    12,
		Rows: []models.GroupRow{
			{GroupKey: "Delhi", Value: 6},
			{GroupKey: "Gujarat", Value: 6},
		},
	}

	insight := b.Build(q, res)

	assert.Equal(t, "No anomalies across 2 state groups on transaction count.", insight.Summary)
	assert.Empty(t, insight.RiskFlags)
}
