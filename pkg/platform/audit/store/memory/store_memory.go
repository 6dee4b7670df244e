package memory

import (
	"context"
	"sync"

	id "foodsupply/pkg/domain"
	audit "foodsupply/pkg/platform/audit"
)

// InMemoryStore keeps audit events in arrival order for tests and local runs.
type InMemoryStore struct {
	mu        sync.RWMutex
	events    []audit.Event
	byListing map[id.ListingID][]int
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{byListing: make(map[id.ListingID][]int)}
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	if !event.ListingID.IsNil() {
		s.byListing[event.ListingID] = append(s.byListing[event.ListingID], len(s.events)-1)
	}
	return nil
}

func (s *InMemoryStore) ListByListing(_ context.Context, listingID id.ListingID) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.byListing[listingID]
	out := make([]audit.Event, 0, len(idx))
	for _, i := range idx {
		out = append(out, s.events[i])
	}
	return out, nil
}
