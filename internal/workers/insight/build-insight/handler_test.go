// internal/workers/insight/build-insight/handler_test.go
package buildinsight

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ananya-0081/insightx-upi/internal/common/logger"
	"github.com/Ananya-0081/insightx-upi/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	return NewHandler(LoadConfig(), logger.NewTestLogger(t))
}

func labeledQuery(intent models.Intent, metric models.Metric) models.StructuredQuery {
	return models.StructuredQuery{
		Intent:  intent,
		Metric:  metric,
		Filters: make(map[models.Dimension]string),
		Confidence: models.Confidence{
			Intent:  0.7,
			Metric:  0.85,
			GroupBy: 0.5,
			Overall: 0.68,
		},
		Label: models.LabelMedium,
	}
}

func scalarResult(metric models.Metric, v float64) *models.AggregationResult {
	return &models.AggregationResult{
		Type:           models.ResultScalar,
		Metric:         metric,
		Value:          &v,
		AppliedFilters: make(map[models.Dimension]string),
		MatchedRows:    1000,
	}
}

func seriesResult(metric models.Metric, groupBy models.Dimension, rows []models.GroupRow) *models.AggregationResult {
	return &models.AggregationResult{
		Type:           models.ResultSeries,
		Metric:         metric,
		GroupBy:        groupBy,
		Rows:           rows,
		AppliedFilters: make(map[models.Dimension]string),
		MatchedRows:    1000,
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	handler := newTestHandler(t)

	tests := []struct {
		name           string
		query          models.StructuredQuery
		result         *models.AggregationResult
		validateOutput func(t *testing.T, insight *models.Insight)
	}{
		{
			name:   "scalar result renders a stat",
			query:  labeledQuery(models.IntentSingle, models.MetricFraudRate),
			result: scalarResult(models.MetricFraudRate, 2.3),
			validateOutput: func(t *testing.T, insight *models.Insight) {
				assert.Equal(t, models.ChartStat, insight.ChartType)
				assert.Contains(t, insight.Summary, "fraud rate")
				assert.Equal(t, models.LabelMedium, insight.ConfidenceLabel)
				assert.False(t, insight.Empty)
			},
		},
		{
			name:  "grouped series renders a bar chart with highlights",
			query: labeledQuery(models.IntentRanking, models.MetricCount),
			result: seriesResult(models.MetricCount, models.DimState, []models.GroupRow{
				{GroupKey: "Maharashtra", Value: 420},
				{GroupKey: "Karnataka", Value: 390},
				{GroupKey: "Delhi", Value: 210},
			}),
			validateOutput: func(t *testing.T, insight *models.Insight) {
				assert.Equal(t, models.ChartBar, insight.ChartType)
				assert.NotEmpty(t, insight.Highlights)
				assert.NotEmpty(t, insight.FollowUps)
			},
		},
		{
			name:  "temporal series renders a line chart",
			query: labeledQuery(models.IntentTrend, models.MetricCount),
			result: seriesResult(models.MetricCount, models.DimHour, []models.GroupRow{
				{GroupKey: "0", Value: 40},
				{GroupKey: "1", Value: 25},
				{GroupKey: "2", Value: 30},
			}),
			validateOutput: func(t *testing.T, insight *models.Insight) {
				assert.Equal(t, models.ChartLine, insight.ChartType)
			},
		},
		{
			name:  "empty result explains itself",
			query: labeledQuery(models.IntentSingle, models.MetricFraudRate),
			result: &models.AggregationResult{
				Type:   models.ResultScalar,
				Metric: models.MetricFraudRate,
				AppliedFilters: map[models.Dimension]string{
					models.DimState: "Atlantis",
				},
				Empty: true,
			},
			validateOutput: func(t *testing.T, insight *models.Insight) {
				assert.True(t, insight.Empty)
				assert.Contains(t, insight.Summary, "No transactions match")
				assert.NotEmpty(t, insight.FollowUps)
				assert.Empty(t, insight.Highlights)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := handler.Execute(context.Background(), &Input{
				SessionID: "session-001",
				Query:     tt.query,
				Result:    tt.result,
			})

			assert.NoError(t, err)
			require.NotNil(t, output)
			require.NotNil(t, output.Insight)
			assert.NotEmpty(t, output.Insight.ID)
			assert.NotEmpty(t, output.Insight.Summary)

			if tt.validateOutput != nil {
				tt.validateOutput(t, output.Insight)
			}
		})
	}
}

func TestHandler_Execute_RiskFlags(t *testing.T) {
	handler := newTestHandler(t)

	tests := []struct {
		name     string
		metric   models.Metric
		result   *models.AggregationResult
		wantFlag models.RiskFlag
	}{
		{
			name:     "fraud rate above threshold",
			metric:   models.MetricFraudRate,
			result:   scalarResult(models.MetricFraudRate, 8.2),
			wantFlag: models.RiskHighFraud,
		},
		{
			name:   "failure rate above threshold",
			metric: models.MetricFailureRate,
			result: seriesResult(models.MetricFailureRate, models.DimBank, []models.GroupRow{
				{GroupKey: "HDFC Bank", Value: 14.5},
				{GroupKey: "SBI", Value: 8.0},
			}),
			wantFlag: models.RiskHighFailure,
		},
		{
			name:   "anomalous group",
			metric: models.MetricFraudRate,
			result: seriesResult(models.MetricFraudRate, models.DimCategory, []models.GroupRow{
				{GroupKey: "Gambling", Value: 4.9, IsAnomaly: true, ZScore: 2.4},
				{GroupKey: "Food", Value: 1.1, ZScore: -0.3},
			}),
			wantFlag: models.RiskAnomalies,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := handler.Execute(context.Background(), &Input{
				Query:  labeledQuery(models.IntentSingle, tt.metric),
				Result: tt.result,
			})

			require.NoError(t, err)
			assert.Contains(t, output.Insight.RiskFlags, tt.wantFlag)
		})
	}
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_InvalidInput(t *testing.T) {
	handler := newTestHandler(t)

	tests := []struct {
		name  string
		input *Input
	}{
		{
			name:  "missing query",
			input: &Input{Result: scalarResult(models.MetricCount, 100)},
		},
		{
			name:  "missing result",
			input: &Input{Query: labeledQuery(models.IntentSingle, models.MetricCount)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := handler.Execute(context.Background(), tt.input)

			assert.Nil(t, output)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestHandler_Execute_SchemaRejectsUnlabeledQuery(t *testing.T) {
	handler := newTestHandler(t)

	// A query that never went through parse/merge has no confidence label,
	// which the published payload schema treats as a contract violation.
	query := labeledQuery(models.IntentSingle, models.MetricCount)
	query.Label = ""

	output, err := handler.Execute(context.Background(), &Input{
		Query:  query,
		Result: scalarResult(models.MetricCount, 100),
	})

	assert.Nil(t, output)
	assert.ErrorIs(t, err, ErrInsightValidationFailed)
}

func TestLoadConfig_Defaults(t *testing.T) {
	config := LoadConfig()

	assert.Equal(t, 5.0, config.FraudRiskThreshold)
	assert.Equal(t, 10.0, config.FailureRiskThreshold)
	assert.Equal(t, 10*time.Second, config.Timeout)
}
