package testutil

import (
	"context"
	"sync"
)

// InMemoryStatementStore implements statement.Repository with a fixed map of
// closed years per partner/account pair.
type InMemoryStatementStore struct {
	mu     sync.RWMutex
	closed map[string]int
}

func NewInMemoryStatementStore() *InMemoryStatementStore {
	return &InMemoryStatementStore{
		closed: make(map[string]int),
	}
}

// CloseYear marks a year as covered by a finalized annual statement.
func (s *InMemoryStatementStore) CloseYear(partnerID, accountID string, year int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := partnerID + ":" + accountID
	if year > s.closed[key] {
		s.closed[key] = year
	}
}

func (s *InMemoryStatementStore) LatestClosedYear(ctx context.Context, partnerID, accountID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed[partnerID+":"+accountID], nil
}

// Clear removes all closed years
func (s *InMemoryStatementStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = make(map[string]int)
}
