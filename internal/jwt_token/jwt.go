package jwttoken

import (
	"errors"

	id "foodsupply/pkg/domain"
	dErrors "foodsupply/pkg/domain-errors"

	"github.com/golang-jwt/jwt/v5"
)

// CallerClaims are the claims carried by a participant's bearer token. The
// subject is the party id; tokens are issued elsewhere.
type CallerClaims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Verifier checks HMAC-signed caller tokens.
type Verifier struct {
	signingKey []byte
	parser     *jwt.Parser
}

// NewVerifier builds a Verifier. Empty issuer or audience disables that check.
func NewVerifier(signingKey, issuer, audience string) *Verifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg(), jwt.SigningMethodHS384.Alg(), jwt.SigningMethodHS512.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}
	return &Verifier{
		signingKey: []byte(signingKey),
		parser:     jwt.NewParser(opts...),
	}
}

func (v *Verifier) ValidateToken(tokenString string) (*CallerClaims, error) {
	parsed, err := v.parser.ParseWithClaims(tokenString, &CallerClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return v.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*CallerClaims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	if _, err := id.ParsePartyID(claims.Subject); err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token subject is not a party id")
	}
	return claims, nil
}
