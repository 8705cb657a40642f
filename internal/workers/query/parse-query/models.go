// internal/workers/query/parse-query/models.go
package parsequery

import "github.com/Ananya-0081/insightx-upi/internal/models"

type Input struct {
	SessionID string `json:"sessionId"`
	QueryText string `json:"queryText"`
}

type Output struct {
	Query      models.StructuredQuery    `json:"structuredQuery"`
	Unresolved []models.UnresolvedEntity `json:"unresolvedEntities,omitempty"`
}
