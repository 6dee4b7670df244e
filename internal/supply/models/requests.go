package models

import (
	"strings"

	id "foodsupply/pkg/domain"
	dErrors "foodsupply/pkg/domain-errors"
)

// RegisterPartyRequest describes a participant to add to the directory.
// Fields that do not apply to Role are ignored.
type RegisterPartyRequest struct {
	Role               string   `json:"role" yaml:"role"`
	ID                 string   `json:"id" yaml:"id"`
	CountryID          string   `json:"country_id,omitempty" yaml:"country_id"`
	OrgID              string   `json:"org_id,omitempty" yaml:"org_id"`
	Location           string   `json:"location,omitempty" yaml:"location"`
	ExemptedOrgIDs     []string `json:"exempted_org_ids,omitempty" yaml:"exempted_org_ids"`
	ExemptedProductIDs []string `json:"exempted_product_ids,omitempty" yaml:"exempted_product_ids"`
}

func (r *RegisterPartyRequest) Normalize() {
	r.Role = strings.ToLower(strings.TrimSpace(r.Role))
	r.ID = strings.TrimSpace(r.ID)
}

// Build validates the request and constructs the concrete party.
func (r *RegisterPartyRequest) Build() (Party, error) {
	role, err := ParseRole(r.Role)
	if err != nil {
		return nil, err
	}
	partyID, err := id.ParsePartyID(r.ID)
	if err != nil {
		return nil, err
	}

	var party Party
	switch role {
	case RoleSupplier:
		party, err = NewSupplier(partyID, r.CountryID, r.OrgID)
	case RoleImporter:
		party, err = NewImporter(partyID)
	case RoleRetailer:
		party, err = NewRetailer(partyID)
	case RoleRegulator:
		party, err = NewRegulator(partyID, r.Location, r.ExemptedOrgIDs, r.ExemptedProductIDs)
	}
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}
	return party, nil
}
