package party

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"foodsupply/internal/supply/models"
	id "foodsupply/pkg/domain"
	"foodsupply/pkg/platform/sentinel"
)

// Error Contract:
// - Find and Update return ErrNotFound for unknown (role, id) pairs
// - Create returns ErrAlreadyUsed when the pair is taken
// - Update returns ErrConflict when the party's Version is stale
//
// Parties are keyed by (role, id): the same id may be registered under
// different roles.

type key struct {
	role models.Role
	id   id.PartyID
}

func keyOf(p models.Party) key {
	return key{role: p.Role(), id: p.PartyID()}
}

// InMemoryStore is the party directory for tests and local runs.
type InMemoryStore struct {
	mu      sync.RWMutex
	parties map[key]models.Party
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{parties: make(map[key]models.Party)}
}

func (s *InMemoryStore) Create(_ context.Context, p models.Party) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := keyOf(p)
	if _, exists := s.parties[k]; exists {
		return fmt.Errorf("%s %s: %w", k.role, k.id, sentinel.ErrAlreadyUsed)
	}
	p.SetPartyVersion(1)
	s.parties[k] = p.Clone()
	return nil
}

func (s *InMemoryStore) Find(_ context.Context, role models.Role, partyID id.PartyID) (models.Party, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.parties[key{role: role, id: partyID}]
	if !ok {
		return nil, fmt.Errorf("%s %s: %w", role, partyID, sentinel.ErrNotFound)
	}
	return p.Clone(), nil
}

func (s *InMemoryStore) Exists(ctx context.Context, role models.Role, partyID id.PartyID) (bool, error) {
	_, err := s.Find(ctx, role, partyID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *InMemoryStore) Update(_ context.Context, p models.Party) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := keyOf(p)
	stored, ok := s.parties[k]
	if !ok {
		return fmt.Errorf("%s %s: %w", k.role, k.id, sentinel.ErrNotFound)
	}
	if stored.PartyVersion() != p.PartyVersion() {
		return fmt.Errorf("%s %s at version %d, have %d: %w", k.role, k.id, stored.PartyVersion(), p.PartyVersion(), sentinel.ErrConflict)
	}
	p.SetPartyVersion(p.PartyVersion() + 1)
	s.parties[k] = p.Clone()
	return nil
}
