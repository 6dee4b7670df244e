package service

import (
	"context"

	"foodsupply/internal/supply/models"
	id "foodsupply/pkg/domain"
	dErrors "foodsupply/pkg/domain-errors"
	audit "foodsupply/pkg/platform/audit"
	"foodsupply/pkg/requestcontext"

	"go.opentelemetry.io/otel/attribute"
)

// TransferCommand hands a listing to the next custodian. OwnerType is the
// declared role of the current owner: "supplier" or "importer".
type TransferCommand struct {
	ListingID  string
	OwnerType  string
	NewOwnerID string
}

// ReconcileResult reports whether a reconciliation run had to deliver.
type ReconcileResult struct {
	ListingID  id.ListingID `json:"listing_id"`
	RetailerID id.PartyID   `json:"retailer_id"`
	Applied    bool         `json:"applied"`
}

// TransferListing moves custody one step along the chain.
//
// Checks run in a fixed order: owner type, listing existence, terminal
// custody, status precondition, acting owner, destination party existence. Nothing is
// written until all of them pass.
//
// A transfer to a retailer is a two-step saga: the listing update commits
// first, then the retailer is loaded fresh and receives the products. If the
// second step fails the listing is restored to its previous owner and status
// and the delivery error is returned. Under an atomic StoreTx the rollback
// does the restoring.
func (s *Service) TransferListing(ctx context.Context, cmd TransferCommand) (_ *models.Listing, err error) {
	ctx, finish := s.startOp(ctx, "transfer_listing",
		attribute.String("listing.id", cmd.ListingID),
		attribute.String("owner.type", cmd.OwnerType),
		attribute.String("new_owner.id", cmd.NewOwnerID),
	)
	defer func() { finish(err) }()

	ownerType, err := models.ParseOwnerType(cmd.OwnerType)
	if err != nil {
		return nil, err
	}
	listingID, err := id.ParseListingID(cmd.ListingID)
	if err != nil {
		return nil, err
	}

	var (
		result *models.Listing
		prev   models.Status
		plan   models.TransferPlan
	)
	err = s.tx.RunInTx(withTxKey(ctx, listingID.String()), func(ctx context.Context) error {
		listing, err := s.listings.FindByID(ctx, listingID)
		if err != nil {
			return translateStoreError(err, "listing not found")
		}
		plan, err = listing.PlanTransfer(ownerType)
		if err != nil {
			return err
		}
		if err := requireActor(ctx, listing.OwnerRole, listing.OwnerID); err != nil {
			return err
		}
		newOwner, err := s.requireDestination(ctx, plan.To, cmd.NewOwnerID)
		if err != nil {
			return err
		}

		before := listing.Clone()
		prev = before.Status
		listing.ApplyTransfer(newOwner, plan, requestcontext.Now(ctx))
		if err := s.listings.Update(ctx, listing); err != nil {
			return translateStoreError(err, "listing not found")
		}

		if plan.To == models.RoleRetailer {
			if _, err := s.deliver(ctx, listing); err != nil {
				s.compensate(ctx, before, listing, err)
				return err
			}
		}
		result = listing
		return nil
	})
	if err != nil {
		return nil, translateStoreError(err, "listing not found")
	}

	s.metrics.IncrementTransition(string(prev), string(result.Status))
	s.logAudit(ctx, audit.Event{
		Action:    string(audit.EventListingTransferred),
		ListingID: result.ID,
		PartyID:   result.OwnerID,
		Role:      string(plan.To),
		Status:    string(result.Status),
	}, "from_role", string(plan.From), "previous_status", string(prev))
	return result, nil
}

// requireDestination checks the new owner is registered under the role the
// custody chain requires.
func (s *Service) requireDestination(ctx context.Context, role models.Role, rawID string) (id.PartyID, error) {
	newOwner, err := id.ParsePartyID(rawID)
	if err != nil {
		return "", dErrors.New(dErrors.CodeValidation, "invalid new-owner details")
	}
	exists, err := s.parties.Exists(ctx, role, newOwner)
	if err != nil {
		return "", translateStoreError(err, "party not found")
	}
	if !exists {
		return "", dErrors.New(dErrors.CodeValidation, "invalid new-owner details")
	}
	return newOwner, nil
}

// deliver is saga step two: the retailer owning listing receives its
// products. Safe to repeat; reports whether anything was written.
// Deliveries to the same retailer run one at a time in this process.
func (s *Service) deliver(ctx context.Context, listing *models.Listing) (bool, error) {
	unlock := s.deliveries.lock("retailer:" + listing.OwnerID.String())
	defer unlock()

	retailer, err := s.findRetailer(ctx, listing.OwnerID)
	if err != nil {
		return false, err
	}
	if !retailer.Receive(listing.ID, listing.Products) {
		return false, nil
	}
	if err := s.parties.Update(ctx, retailer); err != nil {
		return false, translateStoreError(err, "retailer not found")
	}
	return true, nil
}

// compensate restores the listing to before after a failed delivery.
// current is the listing as written by step one.
func (s *Service) compensate(ctx context.Context, before, current *models.Listing, cause error) {
	if isAtomic(s.tx) {
		return
	}
	restored := before.Clone()
	restored.Version = current.Version
	restored.UpdatedAt = requestcontext.Now(ctx)
	if err := s.listings.Update(ctx, restored); err != nil {
		if s.logger != nil {
			s.logger.ErrorContext(ctx, "transfer compensation failed; listing needs reconciliation",
				"listing_id", current.ID,
				"retailer_id", current.OwnerID,
				"cause", cause,
				"error", err,
			)
		}
		return
	}
	s.metrics.IncrementCompensations()
	s.logAudit(ctx, audit.Event{
		Action:    string(audit.EventTransferReverted),
		ListingID: current.ID,
		PartyID:   current.OwnerID,
		Role:      string(models.RoleRetailer),
		Status:    string(restored.Status),
		Reason:    string(dErrors.CodeOf(cause)),
	}, "restored_owner", restored.OwnerID)
}

// ReconcileDelivery re-applies saga step two for a retailer-owned listing.
// It is idempotent: a listing whose products the retailer already holds is
// left alone.
func (s *Service) ReconcileDelivery(ctx context.Context, rawID string) (_ *ReconcileResult, err error) {
	ctx, finish := s.startOp(ctx, "reconcile_delivery", attribute.String("listing.id", rawID))
	defer func() { finish(err) }()

	listingID, err := id.ParseListingID(rawID)
	if err != nil {
		return nil, err
	}

	var result ReconcileResult
	err = s.tx.RunInTx(withTxKey(ctx, listingID.String()), func(ctx context.Context) error {
		listing, err := s.listings.FindByID(ctx, listingID)
		if err != nil {
			return translateStoreError(err, "listing not found")
		}
		if !listing.IsTerminal() {
			return dErrors.New(dErrors.CodeForbidden, "listing is not owned by a retailer")
		}
		applied, err := s.deliver(ctx, listing)
		if err != nil {
			return err
		}
		result = ReconcileResult{ListingID: listing.ID, RetailerID: listing.OwnerID, Applied: applied}
		return nil
	})
	if err != nil {
		return nil, translateStoreError(err, "listing not found")
	}

	if result.Applied {
		s.logAudit(ctx, audit.Event{
			Action:    string(audit.EventDeliveryReconciled),
			ListingID: result.ListingID,
			PartyID:   result.RetailerID,
			Role:      string(models.RoleRetailer),
		})
	}
	return &result, nil
}
