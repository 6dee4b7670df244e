package listing

import (
	"context"
	"fmt"
	"sync"

	"foodsupply/internal/supply/models"
	id "foodsupply/pkg/domain"
	"foodsupply/pkg/platform/sentinel"
)

// Error Contract:
// All listing stores follow this error pattern:
// - Create returns ErrAlreadyUsed when the id is taken
// - FindByID and Update return ErrNotFound when the listing does not exist
// - Update returns ErrConflict when the caller's Version is stale
// - Infrastructure failures are wrapped with context
//
// On success Update increments Version on both the stored record and the
// caller's listing.

// InMemoryStore keeps listings in a map for tests and local runs.
type InMemoryStore struct {
	mu       sync.RWMutex
	listings map[id.ListingID]*models.Listing
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{listings: make(map[id.ListingID]*models.Listing)}
}

func (s *InMemoryStore) Create(_ context.Context, listing *models.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.listings[listing.ID]; exists {
		return fmt.Errorf("listing %s: %w", listing.ID, sentinel.ErrAlreadyUsed)
	}
	listing.Version = 1
	s.listings[listing.ID] = listing.Clone()
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, listingID id.ListingID) (*models.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.listings[listingID]
	if !ok {
		return nil, fmt.Errorf("listing %s: %w", listingID, sentinel.ErrNotFound)
	}
	return stored.Clone(), nil
}

func (s *InMemoryStore) Update(_ context.Context, listing *models.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.listings[listing.ID]
	if !ok {
		return fmt.Errorf("listing %s: %w", listing.ID, sentinel.ErrNotFound)
	}
	if stored.Version != listing.Version {
		return fmt.Errorf("listing %s at version %d, have %d: %w", listing.ID, stored.Version, listing.Version, sentinel.ErrConflict)
	}
	listing.Version++
	s.listings[listing.ID] = listing.Clone()
	return nil
}
