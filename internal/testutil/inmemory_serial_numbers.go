package testutil

import (
	"context"
	"sync"
)

// InMemorySerialNumberService implements invoice.SerialNumberService with a
// monotonically increasing counter per scope key.
type InMemorySerialNumberService struct {
	mu       sync.Mutex
	counters map[string]int
}

func NewInMemorySerialNumberService() *InMemorySerialNumberService {
	return &InMemorySerialNumberService{
		counters: make(map[string]int),
	}
}

func (s *InMemorySerialNumberService) Next(ctx context.Context, scopeKey string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[scopeKey]++
	return s.counters[scopeKey], nil
}

// Clear resets all counters
func (s *InMemorySerialNumberService) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters = make(map[string]int)
}
