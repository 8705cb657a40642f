// internal/conversation/memory.go
package conversation

import (
	"context"
	"sync"

	"github.com/Ananya-0081/insightx-upi/internal/models"
)

// MemoryStore is the in-process Store used by the sample dataset mode and
// the tests. Entries are deep-copied on the way in and out so callers can
// never mutate stored state.
type MemoryStore struct {
	mu      sync.RWMutex
	window  int
	entries map[string][]models.StructuredQuery
}

// NewMemoryStore builds an in-memory store; window <= 0 selects
// DefaultWindowSize.
func NewMemoryStore(window int) *MemoryStore {
	if window <= 0 {
		window = DefaultWindowSize
	}
	return &MemoryStore{
		window:  window,
		entries: make(map[string][]models.StructuredQuery),
	}
}

func (s *MemoryStore) Append(_ context.Context, sessionID string, q models.StructuredQuery) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	turns := append(s.entries[sessionID], q.Clone())
	if len(turns) > s.window {
		turns = turns[len(turns)-s.window:]
	}
	s.entries[sessionID] = turns
	return nil
}

func (s *MemoryStore) Window(_ context.Context, sessionID string) ([]models.StructuredQuery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	turns := s.entries[sessionID]
	out := make([]models.StructuredQuery, 0, len(turns))
	for i := range turns {
		out = append(out, turns[i].Clone())
	}
	return out, nil
}

func (s *MemoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sessionID)
	return nil
}
