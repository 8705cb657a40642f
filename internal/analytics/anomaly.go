// internal/analytics/anomaly.go
package analytics

import (
	"math"

	"github.com/Ananya-0081/insightx-upi/internal/models"
)

// annotateAnomalies computes population z-scores over the row values and
// flags |z| >= threshold. With fewer than two groups, or when every group
// carries the same value, nothing is flagged and the scores stay zero.
func annotateAnomalies(rows []models.GroupRow, threshold float64) {
	if len(rows) < 2 {
		return
	}
	values := make([]float64, len(rows))
	for i, r := range rows {
		values[i] = r.Value
	}
	mean, std := meanStd(values)
	if std == 0 {
		return
	}
	for i := range rows {
		z := (rows[i].Value - mean) / std
		rows[i].ZScore = z
		rows[i].IsAnomaly = math.Abs(z) >= threshold
	}
}

// meanStd returns the mean and population standard deviation.
func meanStd(values []float64) (float64, float64) {
	n := float64(len(values))
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / n

	varSum := 0.0
	for _, v := range values {
		d := v - mean
		varSum += d * d
	}
	return mean, math.Sqrt(varSum / n)
}
