package models

import (
	"strings"

	dErrors "foodsupply/pkg/domain-errors"
)

// Role is the closed set of participant kinds.
type Role string

const (
	RoleSupplier  Role = "supplier"
	RoleImporter  Role = "importer"
	RoleRetailer  Role = "retailer"
	RoleRegulator Role = "regulator"
)

// custodyChain maps the role of the current custodian to the only role
// custody may pass to. Supplier -> Importer -> Retailer; there is no direct
// Supplier -> Retailer edge and a Retailer is terminal.
var custodyChain = map[Role]Role{
	RoleSupplier: RoleImporter,
	RoleImporter: RoleRetailer,
}

// ParseRole validates a participant role, case-insensitively.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	switch r {
	case RoleSupplier, RoleImporter, RoleRetailer, RoleRegulator:
		return r, nil
	}
	return "", dErrors.New(dErrors.CodeValidation, "invalid party role")
}

// ParseOwnerType reads the declared role of a listing's current owner on a
// transfer request. Only roles that can hand custody on are accepted.
func ParseOwnerType(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := custodyChain[r]; !ok {
		return "", dErrors.New(dErrors.CodeValidation, "invalid owner type")
	}
	return r, nil
}

// NextCustodian returns the role custody passes to from r.
func NextCustodian(r Role) (Role, bool) {
	next, ok := custodyChain[r]
	return next, ok
}

func (r Role) String() string {
	return string(r)
}
