package staging

import (
	"context"
	"sync"

	"github.com/rowanvale/njord/internal/domain"
)

// MemoryStore keeps descriptors in process memory. Used in development when
// no staging database is configured, and in tests.
type MemoryStore struct {
	mu      sync.Mutex
	pending map[string]domain.PendingOrder
}

// NewMemoryStore creates an in-memory staging store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{pending: make(map[string]domain.PendingOrder)}
}

func (s *MemoryStore) Put(ctx context.Context, pending *domain.PendingOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[pending.UserID] = *pending
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, userID string) (*domain.PendingOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pending[userID]
	if !ok {
		return nil, domain.ErrNoPendingOrder
	}
	copy := p
	return &copy, nil
}

func (s *MemoryStore) Delete(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, userID)
	return nil
}
