// internal/workers/insight/send-anomaly-alert/models.go
package sendanomalyalert

import "github.com/Ananya-0081/insightx-upi/internal/models"

type Input struct {
	SessionID string                    `json:"sessionId"`
	Query     models.StructuredQuery    `json:"resolvedQuery"`
	Result    *models.AggregationResult `json:"aggregationResult"`
}

type Output struct {
	AlertID  string                 `json:"alertId,omitempty"`
	Skipped  bool                   `json:"skipped"`
	Channels []models.ChannelResult `json:"channels,omitempty"`
	SentAt   string                 `json:"sentAt,omitempty"`
}
