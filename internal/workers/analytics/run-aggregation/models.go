// internal/workers/analytics/run-aggregation/models.go
package runaggregation

import "github.com/Ananya-0081/insightx-upi/internal/models"

type Input struct {
	SessionID string                 `json:"sessionId"`
	Query     models.StructuredQuery `json:"resolvedQuery"`
}

type Output struct {
	Result *models.AggregationResult `json:"aggregationResult"`
}
