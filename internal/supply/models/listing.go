package models

import (
	"time"

	id "foodsupply/pkg/domain"
	dErrors "foodsupply/pkg/domain-errors"
)

// Listing is the aggregate root tracking a batch of products through custody.
//
// Invariants:
//   - ID and SupplierID are immutable after construction
//   - Products is non-empty and never changes after construction
//   - OwnerID always names a party of OwnerRole in the party directory
//   - Status only moves along the edges in the transitions table
//   - A listing owned by a Retailer is terminal: no further transfers or checks
//
// Version is the optimistic concurrency token. Stores compare it on write and
// bump it on success; callers never set it by hand.
type Listing struct {
	ID         id.ListingID `json:"id"`
	Status     Status       `json:"status"`
	SupplierID id.PartyID   `json:"supplier_id"`
	OwnerID    id.PartyID   `json:"owner_id"`
	OwnerRole  Role         `json:"owner_role"`
	Products   []Product    `json:"products"`
	Version    int64        `json:"version"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// NewListing builds a listing in INITIALREQUEST owned by its supplier.
func NewListing(listingID id.ListingID, supplierID id.PartyID, products []Product, now time.Time) (*Listing, error) {
	if listingID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "listing id cannot be empty")
	}
	if supplierID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "supplier cannot be empty")
	}
	if len(products) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "Product list Empty")
	}
	return &Listing{
		ID:         listingID,
		Status:     StatusInitialRequest,
		SupplierID: supplierID,
		OwnerID:    supplierID,
		OwnerRole:  RoleSupplier,
		Products:   append([]Product(nil), products...),
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// IsTerminal reports whether custody has reached a retailer.
func (l *Listing) IsTerminal() bool {
	return l.OwnerRole == RoleRetailer
}

// TransferPlan is a validated transfer, computed before any write.
type TransferPlan struct {
	From   Role
	To     Role
	Status Status
}

// PlanTransfer validates a transfer declared by an owner of role ownerType
// and returns the destination role and resulting status.
// Use with ApplyTransfer once the destination party has been verified.
func (l *Listing) PlanTransfer(ownerType Role) (TransferPlan, error) {
	dest, ok := NextCustodian(ownerType)
	if !ok {
		return TransferPlan{}, dErrors.New(dErrors.CodeValidation, "invalid owner type")
	}
	if l.IsTerminal() {
		return TransferPlan{}, dErrors.New(dErrors.CodeForbidden, "listing custody is complete")
	}

	plan := TransferPlan{From: ownerType, To: dest, Status: l.Status}
	switch ownerType {
	case RoleSupplier:
		if l.Status != StatusCheckCompleted {
			plan.Status = StatusExemptCheckRequired
		}
	case RoleImporter:
		if l.Status != StatusCheckCompleted {
			return TransferPlan{}, dErrors.New(dErrors.CodeForbidden, "Exempt check pending")
		}
	}
	if !l.Status.CanTransitionTo(plan.Status) {
		return TransferPlan{}, dErrors.New(dErrors.CodeInvariantViolation, "illegal status transition")
	}
	return plan, nil
}

// ApplyTransfer hands custody to newOwner according to plan.
// Call PlanTransfer first.
func (l *Listing) ApplyTransfer(newOwner id.PartyID, plan TransferPlan, now time.Time) {
	l.OwnerID = newOwner
	l.OwnerRole = plan.To
	l.Status = plan.Status
	l.UpdatedAt = now
}

// CanCheck validates that a regulator check may run.
func (l *Listing) CanCheck() error {
	if !l.Status.AwaitingCheck() {
		return dErrors.New(dErrors.CodeForbidden, "unauthorized transaction")
	}
	return nil
}

// ApplyCheckResult records the outcome of a regulator check.
// Call CanCheck first.
func (l *Listing) ApplyCheckResult(passed bool, now time.Time) {
	if passed {
		l.Status = StatusCheckCompleted
	} else {
		l.Status = StatusHazardAnalysis
	}
	l.UpdatedAt = now
}

// Clone returns a deep copy. Stores hand out clones so callers never alias
// stored state.
func (l *Listing) Clone() *Listing {
	if l == nil {
		return nil
	}
	c := *l
	c.Products = append([]Product(nil), l.Products...)
	return &c
}
