package audit

import (
	"context"
	"time"

	id "foodsupply/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose so sinks can
// apply different retention.
type EventCategory string

const (
	// CategoryCompliance covers custody and inspection facts a regulator may
	// ask for: who held a listing, when, and what the check decided.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers directory maintenance and repair runs.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted by the lifecycle service after a state change commits.
// Keep it transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        string
	Category  EventCategory
	Timestamp time.Time
	Action    string
	ListingID id.ListingID
	// PartyID is the participant the action concerns: new owner, regulator
	// or registered party.
	PartyID id.PartyID
	Role    string
	Status  string
	// Decision is "exempt" or "hazard_analysis" for checks.
	Decision  string
	Reason    string
	RequestID string
	// ActorID is the authenticated caller when the request carried one.
	ActorID string
}

type AuditEvent string

const (
	EventListingCreated     AuditEvent = "listing_created"
	EventListingTransferred AuditEvent = "listing_transferred"
	EventProductsChecked    AuditEvent = "products_checked"
	EventExemptionsUpdated  AuditEvent = "exemptions_updated"
	EventDeliveryReconciled AuditEvent = "delivery_reconciled"
	EventTransferReverted   AuditEvent = "transfer_reverted"
	EventPartyRegistered    AuditEvent = "party_registered"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventListingCreated:     CategoryCompliance,
	EventListingTransferred: CategoryCompliance,
	EventProductsChecked:    CategoryCompliance,
	EventExemptionsUpdated:  CategoryCompliance,
	EventTransferReverted:   CategoryCompliance,

	EventDeliveryReconciled: CategoryOperations,
	EventPartyRegistered:    CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists or forwards audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Lister is implemented by stores that can read back a listing's trail.
type Lister interface {
	ListByListing(ctx context.Context, listingID id.ListingID) ([]Event, error)
}
