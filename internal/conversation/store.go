// internal/conversation/store.go
package conversation

import (
	"context"

	"github.com/Ananya-0081/insightx-upi/internal/models"
)

// DefaultWindowSize bounds the per-session context window. Only the most
// recent turns participate in merging; older turns are evicted.
const DefaultWindowSize = 10

// Store keeps the bounded window of parsed queries per session. Append adds
// the newest turn and evicts beyond the window size; Window returns the
// retained turns oldest first.
type Store interface {
	Append(ctx context.Context, sessionID string, q models.StructuredQuery) error
	Window(ctx context.Context, sessionID string) ([]models.StructuredQuery, error)
	Clear(ctx context.Context, sessionID string) error
}
