package service

import (
	"context"
	"time"

	"foodsupply/internal/supply/models"
	id "foodsupply/pkg/domain"
	audit "foodsupply/pkg/platform/audit"
	"foodsupply/pkg/requestcontext"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// lookupTimeout bounds the concurrent party lookups of a check.
const lookupTimeout = 2 * time.Second

const (
	DecisionExempt         = "exempt"
	DecisionHazardAnalysis = "hazard_analysis"
)

// CheckCommand asks a regulator to review a listing.
type CheckCommand struct {
	ListingID   string
	RegulatorID string
}

// CheckResult is the listing after the check and the decision reached.
type CheckResult struct {
	Listing  *models.Listing `json:"listing"`
	Decision string          `json:"decision"`
}

// CheckProducts runs the exemption review. The listing passes when the
// supplier's organization is exempt, or when every product is. A failed
// check moves the listing to HAZARDANALYSISCHECKREQ; it may be checked again
// after the regulator's exemption lists change.
func (s *Service) CheckProducts(ctx context.Context, cmd CheckCommand) (_ *CheckResult, err error) {
	ctx, finish := s.startOp(ctx, "check_products",
		attribute.String("listing.id", cmd.ListingID),
		attribute.String("regulator.id", cmd.RegulatorID),
	)
	defer func() { finish(err) }()

	listingID, err := id.ParseListingID(cmd.ListingID)
	if err != nil {
		return nil, err
	}
	regulatorID, err := id.ParsePartyID(cmd.RegulatorID)
	if err != nil {
		return nil, err
	}
	if err := requireActor(ctx, models.RoleRegulator, regulatorID); err != nil {
		return nil, err
	}

	var (
		result *models.Listing
		prev   models.Status
		passed bool
	)
	outer := ctx
	err = s.tx.RunInTx(withTxKey(ctx, listingID.String()), func(ctx context.Context) error {
		listing, err := s.listings.FindByID(ctx, listingID)
		if err != nil {
			return translateStoreError(err, "listing not found")
		}
		if err := listing.CanCheck(); err != nil {
			return err
		}

		// Party lookups use the outer context: they read outside the
		// transaction so they can run in parallel.
		regulator, supplier, err := s.gatherCheckParties(outer, regulatorID, listing.SupplierID)
		if err != nil {
			return err
		}

		prev = listing.Status
		passed = regulator.Exempts(supplier, listing.Products)
		listing.ApplyCheckResult(passed, requestcontext.Now(ctx))
		if err := s.listings.Update(ctx, listing); err != nil {
			return translateStoreError(err, "listing not found")
		}
		result = listing
		return nil
	})
	if err != nil {
		return nil, translateStoreError(err, "listing not found")
	}

	decision := DecisionHazardAnalysis
	if passed {
		decision = DecisionExempt
	}
	s.metrics.IncrementTransition(string(prev), string(result.Status))
	s.metrics.IncrementCheckDecision(decision)
	s.logAudit(ctx, audit.Event{
		Action:    string(audit.EventProductsChecked),
		ListingID: result.ID,
		PartyID:   regulatorID,
		Role:      string(models.RoleRegulator),
		Status:    string(result.Status),
		Decision:  decision,
	}, "previous_status", string(prev))
	return &CheckResult{Listing: result, Decision: decision}, nil
}

// gatherCheckParties loads the regulator and the listing's supplier in
// parallel with shared cancellation.
func (s *Service) gatherCheckParties(ctx context.Context, regulatorID, supplierID id.PartyID) (*models.Regulator, *models.Supplier, error) {
	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	var (
		regulator *models.Regulator
		supplier  *models.Supplier
	)
	g.Go(func() error {
		var err error
		regulator, err = s.findRegulator(ctx, regulatorID)
		return err
	})
	g.Go(func() error {
		var err error
		supplier, err = s.findSupplier(ctx, supplierID)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return regulator, supplier, nil
}
