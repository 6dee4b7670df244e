package jwttoken

import (
	"testing"
	"time"

	dErrors "foodsupply/pkg/domain-errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const signingKey = "test-signing-key"

var verifier = NewVerifier(signingKey, "test-issuer", "test-audience")

func signToken(t *testing.T, method jwt.SigningMethod, key any, subject string, expiresIn time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(method, CallerClaims{
		Role: "importer",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "test-issuer",
			Audience:  []string{"test-audience"},
			ID:        uuid.NewString(),
		},
	})
	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed
}

func Test_ValidateToken_ValidToken(t *testing.T) {
	token := signToken(t, jwt.SigningMethodHS256, []byte(signingKey), "importer@port.org", time.Hour)

	claims, err := verifier.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "importer@port.org", claims.Subject)
	assert.Equal(t, "importer", claims.Role)

	mw := ToMiddlewareClaims(claims)
	assert.Equal(t, "importer@port.org", mw.PartyID.String())
	assert.Equal(t, claims.ID, mw.JTI)
}

func Test_ValidateToken_InvalidToken(t *testing.T) {
	_, err := verifier.ValidateToken("invalid-token-string")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_ValidateToken_ExpiredToken(t *testing.T) {
	token := signToken(t, jwt.SigningMethodHS256, []byte(signingKey), "importer@port.org", -time.Hour)

	_, err := verifier.ValidateToken(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token has expired")
}

func Test_ValidateToken_WrongKey(t *testing.T) {
	token := signToken(t, jwt.SigningMethodHS256, []byte("other-key"), "importer@port.org", time.Hour)

	_, err := verifier.ValidateToken(token)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_ValidateToken_WrongAudience(t *testing.T) {
	v := NewVerifier(signingKey, "test-issuer", "someone-else")
	token := signToken(t, jwt.SigningMethodHS256, []byte(signingKey), "importer@port.org", time.Hour)

	_, err := v.ValidateToken(token)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_ValidateToken_MissingSubject(t *testing.T) {
	token := signToken(t, jwt.SigningMethodHS256, []byte(signingKey), "", time.Hour)

	_, err := verifier.ValidateToken(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "subject")
}

func Test_NewVerifierAdapter(t *testing.T) {
	token := signToken(t, jwt.SigningMethodHS256, []byte(signingKey), "retailer@shop.org", time.Hour)

	claims, err := NewVerifierAdapter(verifier).ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "retailer@shop.org", claims.PartyID.String())
}
