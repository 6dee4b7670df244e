package service

import (
	"context"
	"errors"
	"strings"

	"foodsupply/internal/supply/models"
	id "foodsupply/pkg/domain"
	dErrors "foodsupply/pkg/domain-errors"
	audit "foodsupply/pkg/platform/audit"
	"foodsupply/pkg/platform/sentinel"
	"foodsupply/pkg/requestcontext"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// CreateListingCommand creates a listing from raw "productId[,quantity]"
// descriptors. An empty ListingID is assigned a UUID.
type CreateListingCommand struct {
	ListingID  string
	Products   []string
	SupplierID string
}

// CreateProductListing registers a new listing in INITIALREQUEST, owned by
// its supplier. Products inherit the supplier's country.
func (s *Service) CreateProductListing(ctx context.Context, cmd CreateListingCommand) (_ *models.Listing, err error) {
	ctx, finish := s.startOp(ctx, "create_listing",
		attribute.String("listing.id", cmd.ListingID),
		attribute.String("supplier.id", cmd.SupplierID),
	)
	defer func() { finish(err) }()

	if len(cmd.Products) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "Product list Empty")
	}

	rawID := strings.TrimSpace(cmd.ListingID)
	if rawID == "" {
		rawID = uuid.NewString()
	}
	listingID, err := id.ParseListingID(rawID)
	if err != nil {
		return nil, err
	}
	supplierID, err := id.ParsePartyID(cmd.SupplierID)
	if err != nil {
		return nil, err
	}
	if err := requireActor(ctx, models.RoleSupplier, supplierID); err != nil {
		return nil, err
	}

	var listing *models.Listing
	err = s.tx.RunInTx(withTxKey(ctx, listingID.String()), func(ctx context.Context) error {
		supplier, err := s.findSupplier(ctx, supplierID)
		if err != nil {
			return err
		}
		products, err := models.ParseProductDescriptors(cmd.Products, supplier.CountryID)
		if err != nil {
			return err
		}
		l, err := models.NewListing(listingID, supplierID, products, requestcontext.Now(ctx))
		if err != nil {
			if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
				return dErrors.New(dErrors.CodeValidation, err.Error())
			}
			return err
		}
		if err := s.listings.Create(ctx, l); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				return dErrors.New(dErrors.CodeConflict, "listing already exists")
			}
			return translateStoreError(err, "listing not found")
		}
		listing = l
		return nil
	})
	if err != nil {
		return nil, translateStoreError(err, "listing not found")
	}

	s.metrics.IncrementTransition("", string(listing.Status))
	s.logAudit(ctx, audit.Event{
		Action:    string(audit.EventListingCreated),
		ListingID: listing.ID,
		PartyID:   listing.SupplierID,
		Role:      string(models.RoleSupplier),
		Status:    string(listing.Status),
	}, "products", len(listing.Products))
	return listing, nil
}

// GetListing returns the current state of a listing.
func (s *Service) GetListing(ctx context.Context, rawID string) (_ *models.Listing, err error) {
	ctx, finish := s.startOp(ctx, "get_listing", attribute.String("listing.id", rawID))
	defer func() { finish(err) }()

	listingID, err := id.ParseListingID(rawID)
	if err != nil {
		return nil, err
	}
	listing, err := s.listings.FindByID(ctx, listingID)
	if err != nil {
		return nil, translateStoreError(err, "listing not found")
	}
	return listing, nil
}

// historyReader is implemented by audit publishers that can read a listing's
// trail back from their store.
type historyReader interface {
	List(ctx context.Context, listingID id.ListingID) ([]audit.Event, error)
}

// ListingHistory returns the recorded custody trail of an existing listing,
// oldest first.
func (s *Service) ListingHistory(ctx context.Context, rawID string) (_ []audit.Event, err error) {
	ctx, finish := s.startOp(ctx, "listing_history", attribute.String("listing.id", rawID))
	defer func() { finish(err) }()

	listingID, err := id.ParseListingID(rawID)
	if err != nil {
		return nil, err
	}
	if _, err := s.listings.FindByID(ctx, listingID); err != nil {
		return nil, translateStoreError(err, "listing not found")
	}
	reader, ok := s.auditPublisher.(historyReader)
	if !ok {
		return nil, dErrors.New(dErrors.CodeInternal, "audit history is not available")
	}
	events, err := reader.List(ctx, listingID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "audit history is not available")
	}
	if events == nil {
		events = []audit.Event{}
	}
	return events, nil
}
