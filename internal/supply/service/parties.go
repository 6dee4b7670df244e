package service

import (
	"context"
	"errors"

	"foodsupply/internal/supply/models"
	id "foodsupply/pkg/domain"
	dErrors "foodsupply/pkg/domain-errors"
	audit "foodsupply/pkg/platform/audit"
	"foodsupply/pkg/platform/sentinel"

	"go.opentelemetry.io/otel/attribute"
)

// RegisterParty adds a participant to the directory.
func (s *Service) RegisterParty(ctx context.Context, req models.RegisterPartyRequest) (_ models.Party, err error) {
	req.Normalize()
	ctx, finish := s.startOp(ctx, "register_party",
		attribute.String("party.role", req.Role),
		attribute.String("party.id", req.ID),
	)
	defer func() { finish(err) }()

	party, err := req.Build()
	if err != nil {
		return nil, err
	}
	if err := s.parties.Create(ctx, party); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "party already registered")
		}
		return nil, translateStoreError(err, "party not found")
	}

	s.logAudit(ctx, audit.Event{
		Action:  string(audit.EventPartyRegistered),
		PartyID: party.PartyID(),
		Role:    string(party.Role()),
	})
	return party, nil
}

// SeedParties registers every request, skipping parties that already exist
// so a restart over the same seed is a no-op. Returns how many were new.
func (s *Service) SeedParties(ctx context.Context, reqs []models.RegisterPartyRequest) (int, error) {
	created := 0
	for _, req := range reqs {
		_, err := s.RegisterParty(ctx, req)
		switch {
		case err == nil:
			created++
		case dErrors.HasCode(err, dErrors.CodeConflict):
			// already registered
		default:
			return created, dErrors.Wrap(err, dErrors.CodeOf(err), "seed party "+req.Role+"/"+req.ID)
		}
	}
	return created, nil
}

// GetParty looks up a participant by role and id.
func (s *Service) GetParty(ctx context.Context, rawRole, rawID string) (_ models.Party, err error) {
	ctx, finish := s.startOp(ctx, "get_party",
		attribute.String("party.role", rawRole),
		attribute.String("party.id", rawID),
	)
	defer func() { finish(err) }()

	role, err := models.ParseRole(rawRole)
	if err != nil {
		return nil, err
	}
	partyID, err := id.ParsePartyID(rawID)
	if err != nil {
		return nil, err
	}
	party, err := s.parties.Find(ctx, role, partyID)
	if err != nil {
		return nil, translateStoreError(err, string(role)+" not found")
	}
	return party, nil
}
