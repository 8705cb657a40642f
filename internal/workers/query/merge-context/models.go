// internal/workers/query/merge-context/models.go
package mergecontext

import "github.com/Ananya-0081/insightx-upi/internal/models"

type Input struct {
	SessionID string                 `json:"sessionId"`
	Query     models.StructuredQuery `json:"structuredQuery"`
}

type Output struct {
	ResolvedQuery models.StructuredQuery `json:"resolvedQuery"`
	ContextSize   int                    `json:"contextSize"`
}
