// internal/models/insight.go
package models

// ChartType is the visualization hint attached to an insight.
type ChartType string

const (
	ChartStat ChartType = "stat"
	ChartBar  ChartType = "bar"
	ChartLine ChartType = "line"
	ChartPie  ChartType = "pie"
)

// RiskFlag marks a metric value crossing an operational threshold.
type RiskFlag string

const (
	RiskHighFraud   RiskFlag = "high_fraud_rate"
	RiskHighFailure RiskFlag = "high_failure_rate"
	RiskAnomalies   RiskFlag = "anomalies_detected"
)

// Highlight is one headline figure extracted from an aggregation result.
type Highlight struct {
	Kind     string  `json:"kind"`
	GroupKey string  `json:"group_key,omitempty"`
	Value    float64 `json:"value"`
}

// Insight is the presentation payload built on top of a resolved query and
// its aggregation result. Downstream renderers consume it read-only.
type Insight struct {
	ID              string          `json:"id"`
	Summary         string          `json:"summary"`
	ChartType       ChartType       `json:"chart_type"`
	Highlights      []Highlight     `json:"highlights,omitempty"`
	RiskFlags       []RiskFlag      `json:"risk_flags,omitempty"`
	FollowUps       []string        `json:"follow_ups,omitempty"`
	ConfidenceLabel ConfidenceLabel `json:"confidence_label"`
	Empty           bool            `json:"empty"`
}
