package domain

import (
	"strings"
	"unicode"

	dErrors "foodsupply/pkg/domain-errors"
)

// maxIDLength bounds identifiers accepted at trust boundaries.
const maxIDLength = 256

// ListingID identifies a product listing. Immutable once the listing exists.
type ListingID string

// PartyID identifies a participant (supplier, importer, retailer, regulator).
// Participants are keyed by opaque strings such as "supplier@acme.org".
type PartyID string

func (id ListingID) String() string { return string(id) }
func (id ListingID) IsNil() bool    { return id == "" }

func (id PartyID) String() string { return string(id) }
func (id PartyID) IsNil() bool    { return id == "" }

// ParseListingID validates a listing identifier from untrusted input.
func ParseListingID(s string) (ListingID, error) {
	v, err := parseID(s, "listing_id")
	if err != nil {
		return "", err
	}
	return ListingID(v), nil
}

// ParsePartyID validates a party identifier from untrusted input.
func ParsePartyID(s string) (PartyID, error) {
	v, err := parseID(s, "party_id")
	if err != nil {
		return "", err
	}
	return PartyID(v), nil
}

func parseID(s, field string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, field+" is required")
	}
	if len(s) > maxIDLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, field+" is too long")
	}
	for _, r := range s {
		if unicode.IsControl(r) || unicode.Is(unicode.Cf, r) || r == '/' {
			return "", dErrors.New(dErrors.CodeInvalidInput, field+" contains invalid characters")
		}
	}
	return s, nil
}
