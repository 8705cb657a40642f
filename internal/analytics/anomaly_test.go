// internal/analytics/anomaly_test.go
package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Ananya-0081/insightx-upi/internal/models"
)

func TestMeanStd(t *testing.T) {
	mean, std := meanStd([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.Equal(t, 5.0, mean)
	assert.Equal(t, 2.0, std)
}

func TestAnnotateAnomalies_FlagsAboveThreshold(t *testing.T) {
	rows := []models.GroupRow{
		{GroupKey: "a", Value: 1},
		{GroupKey: "b", Value: 1},
		{GroupKey: "c", Value: 1},
		{GroupKey: "d", Value: 1},
		{GroupKey: "e", Value: 1},
		{GroupKey: "f", Value: 10},
	}
	annotateAnomalies(rows, 2.0)

	assert.True(t, rows[5].IsAnomaly)
	assert.InDelta(t, 2.236, rows[5].ZScore, 0.001)
	for _, r := range rows[:5] {
		assert.False(t, r.IsAnomaly)
		assert.InDelta(t, -0.447, r.ZScore, 0.001)
	}
}

func TestAnnotateAnomalies_SingleRowGuard(t *testing.T) {
	rows := []models.GroupRow{{GroupKey: "only", Value: 42}}
	annotateAnomalies(rows, 1.5)

	assert.False(t, rows[0].IsAnomaly)
	assert.Zero(t, rows[0].ZScore)
}

func TestAnnotateAnomalies_ZeroVarianceGuard(t *testing.T) {
	rows := []models.GroupRow{
		{GroupKey: "a", Value: 3},
		{GroupKey: "b", Value: 3},
		{GroupKey: "c", Value: 3},
	}
	annotateAnomalies(rows, 1.5)

	for _, r := range rows {
		assert.False(t, r.IsAnomaly)
		assert.Zero(t, r.ZScore)
	}
}

func TestAnnotateAnomalies_NegativeOutlier(t *testing.T) {
	rows := []models.GroupRow{
		{GroupKey: "a", Value: 100},
		{GroupKey: "b", Value: 100},
		{GroupKey: "c", Value: 100},
		{GroupKey: "d", Value: 100},
		{GroupKey: "e", Value: 100},
		{GroupKey: "f", Value: 10},
	}
	annotateAnomalies(rows, 2.0)

	assert.True(t, rows[5].IsAnomaly)
	assert.Negative(t, rows[5].ZScore)
}
