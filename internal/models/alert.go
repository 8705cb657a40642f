// internal/models/alert.go
package models

// AlertChannel names one delivery channel for anomaly alerts.
type AlertChannel string

const (
	ChannelEmail   AlertChannel = "email"
	ChannelSNS     AlertChannel = "sns"
	ChannelWebhook AlertChannel = "webhook"
)

// Alert delivery statuses. "skipped" means the run carried no anomalies or
// every channel was disabled; it is a normal outcome, not a failure.
const (
	AlertStatusSent    = "sent"
	AlertStatusFailed  = "failed"
	AlertStatusSkipped = "skipped"
)

// AnomalyAlert is the outbound record of one anomaly notification.
type AnomalyAlert struct {
	ID        string               `json:"id"`
	SessionID string               `json:"sessionId"`
	Metric    Metric               `json:"metric"`
	GroupBy   Dimension            `json:"groupBy"`
	Filters   map[Dimension]string `json:"filters,omitempty"`
	Anomalies []GroupRow           `json:"anomalies"`
	Summary   string               `json:"summary"`
	CreatedAt string               `json:"createdAt"`
}

// ChannelResult is the per-channel delivery outcome.
type ChannelResult struct {
	Channel AlertChannel `json:"channel"`
	Status  string       `json:"status"`
	Detail  string       `json:"detail,omitempty"`
}
