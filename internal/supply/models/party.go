package models

import (
	"strings"

	id "foodsupply/pkg/domain"
	dErrors "foodsupply/pkg/domain-errors"
	platformstrings "foodsupply/pkg/platform/strings"
)

// Party is a participant in the custody network. The set of implementations
// is closed: *Supplier, *Importer, *Retailer and *Regulator.
type Party interface {
	PartyID() id.PartyID
	Role() Role
	PartyVersion() int64
	SetPartyVersion(v int64)
	Clone() Party
	isParty()
}

// PartyRecord holds the fields every participant shares.
type PartyRecord struct {
	ID      id.PartyID `json:"id"`
	Version int64      `json:"version"`
}

func (p *PartyRecord) PartyID() id.PartyID     { return p.ID }
func (p *PartyRecord) PartyVersion() int64     { return p.Version }
func (p *PartyRecord) SetPartyVersion(v int64) { p.Version = v }

// Supplier originates listings.
type Supplier struct {
	PartyRecord
	CountryID string `json:"country_id"`
	OrgID     string `json:"org_id"`
}

// Importer holds custody between supplier and retailer.
type Importer struct {
	PartyRecord
}

// Retailer is the final custodian. Products only grow, one receipt per listing.
type Retailer struct {
	PartyRecord
	Products         []Product      `json:"products"`
	ReceivedListings []id.ListingID `json:"received_listings"`
}

// Regulator decides whether listings are exempt from hazard analysis.
// Exemption lists have set semantics and only grow.
type Regulator struct {
	PartyRecord
	Location           string   `json:"location"`
	ExemptedOrgIDs     []string `json:"exempted_org_ids"`
	ExemptedProductIDs []string `json:"exempted_product_ids"`
}

func (*Supplier) Role() Role  { return RoleSupplier }
func (*Importer) Role() Role  { return RoleImporter }
func (*Retailer) Role() Role  { return RoleRetailer }
func (*Regulator) Role() Role { return RoleRegulator }

func (*Supplier) isParty()  {}
func (*Importer) isParty()  {}
func (*Retailer) isParty()  {}
func (*Regulator) isParty() {}

func (s *Supplier) Clone() Party {
	c := *s
	return &c
}

func (i *Importer) Clone() Party {
	c := *i
	return &c
}

func (r *Retailer) Clone() Party {
	c := *r
	c.Products = append([]Product(nil), r.Products...)
	c.ReceivedListings = append([]id.ListingID(nil), r.ReceivedListings...)
	return &c
}

func (r *Regulator) Clone() Party {
	c := *r
	c.ExemptedOrgIDs = append([]string(nil), r.ExemptedOrgIDs...)
	c.ExemptedProductIDs = append([]string(nil), r.ExemptedProductIDs...)
	return &c
}

// NewSupplier validates and builds a supplier.
func NewSupplier(partyID id.PartyID, countryID, orgID string) (*Supplier, error) {
	if partyID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "party id cannot be empty")
	}
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "supplier org id cannot be empty")
	}
	return &Supplier{
		PartyRecord: PartyRecord{ID: partyID},
		CountryID:   strings.TrimSpace(countryID),
		OrgID:       orgID,
	}, nil
}

func NewImporter(partyID id.PartyID) (*Importer, error) {
	if partyID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "party id cannot be empty")
	}
	return &Importer{PartyRecord: PartyRecord{ID: partyID}}, nil
}

func NewRetailer(partyID id.PartyID) (*Retailer, error) {
	if partyID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "party id cannot be empty")
	}
	return &Retailer{PartyRecord: PartyRecord{ID: partyID}}, nil
}

func NewRegulator(partyID id.PartyID, location string, orgIDs, productIDs []string) (*Regulator, error) {
	if partyID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "party id cannot be empty")
	}
	r := &Regulator{
		PartyRecord: PartyRecord{ID: partyID},
		Location:    strings.TrimSpace(location),
	}
	r.AddExemptions(orgIDs, productIDs)
	return r, nil
}

// HasReceived reports whether the products of listingID were already delivered.
func (r *Retailer) HasReceived(listingID id.ListingID) bool {
	for _, received := range r.ReceivedListings {
		if received == listingID {
			return true
		}
	}
	return false
}

// Receive appends the products of a delivered listing. Receiving the same
// listing twice is a no-op; the return value reports whether anything changed.
func (r *Retailer) Receive(listingID id.ListingID, products []Product) bool {
	if r.HasReceived(listingID) {
		return false
	}
	r.ReceivedListings = append(r.ReceivedListings, listingID)
	r.Products = append(r.Products, products...)
	return true
}

// AddExemptions merges new organization and product ids into the exemption
// lists. Blank and duplicate ids are absorbed. Returns how many ids were new.
func (r *Regulator) AddExemptions(orgIDs, productIDs []string) int {
	before := len(r.ExemptedOrgIDs) + len(r.ExemptedProductIDs)
	r.ExemptedOrgIDs = platformstrings.Union(r.ExemptedOrgIDs, orgIDs)
	r.ExemptedProductIDs = platformstrings.Union(r.ExemptedProductIDs, productIDs)
	return len(r.ExemptedOrgIDs) + len(r.ExemptedProductIDs) - before
}

func (r *Regulator) ExemptsOrg(orgID string) bool {
	return platformstrings.Contains(r.ExemptedOrgIDs, orgID)
}

func (r *Regulator) ExemptsProduct(productID string) bool {
	return platformstrings.Contains(r.ExemptedProductIDs, productID)
}

// Exempts decides a check: the whole listing passes when the supplier's
// organization is exempt, otherwise every product must be exempt.
func (r *Regulator) Exempts(supplier *Supplier, products []Product) bool {
	if r.ExemptsOrg(supplier.OrgID) {
		return true
	}
	for _, p := range products {
		if !r.ExemptsProduct(p.ProductID) {
			return false
		}
	}
	return true
}
