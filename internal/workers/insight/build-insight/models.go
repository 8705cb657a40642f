// internal/workers/insight/build-insight/models.go
package buildinsight

import "github.com/Ananya-0081/insightx-upi/internal/models"

type Input struct {
	SessionID string                    `json:"sessionId"`
	Query     models.StructuredQuery    `json:"resolvedQuery"`
	Result    *models.AggregationResult `json:"aggregationResult"`
}

type Output struct {
	Insight *models.Insight `json:"insight"`
}

// insightSchema is the contract published for the build-insight activity.
// Every payload is checked against it before the job completes so a renderer
// can rely on the shape without re-validating.
var insightSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"id", "summary", "chart_type", "confidence_label"},
	"properties": map[string]interface{}{
		"id":      map[string]interface{}{"type": "string", "minLength": 1},
		"summary": map[string]interface{}{"type": "string", "minLength": 1},
		"chart_type": map[string]interface{}{
			"type": "string",
			"enum": []interface{}{"stat", "bar", "line", "pie"},
		},
		"highlights": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type":     "object",
				"required": []interface{}{"kind", "value"},
			},
		},
		"risk_flags": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type": "string",
				"enum": []interface{}{"high_fraud_rate", "high_failure_rate", "anomalies_detected"},
			},
		},
		"follow_ups": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		},
		"confidence_label": map[string]interface{}{
			"type": "string",
			"enum": []interface{}{"Very High", "High", "Medium", "Low"},
		},
		"empty": map[string]interface{}{"type": "boolean"},
	},
}
