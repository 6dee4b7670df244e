package jwttoken

import (
	"foodsupply/internal/platform/middleware"
	id "foodsupply/pkg/domain"
)

func ToMiddlewareClaims(claims *CallerClaims) *middleware.CallerClaims {
	return &middleware.CallerClaims{
		PartyID: id.PartyID(claims.Subject),
		Role:    claims.Role,
		JTI:     claims.ID,
	}
}

// VerifierAdapter exposes a Verifier as a middleware.CallerValidator.
type VerifierAdapter struct {
	verifier *Verifier
}

func NewVerifierAdapter(verifier *Verifier) *VerifierAdapter {
	return &VerifierAdapter{verifier: verifier}
}

func (a *VerifierAdapter) ValidateToken(tokenString string) (*middleware.CallerClaims, error) {
	claims, err := a.verifier.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return ToMiddlewareClaims(claims), nil
}
