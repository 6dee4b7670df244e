package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	id "foodsupply/pkg/domain"
	"foodsupply/pkg/requestcontext"
)

// CallerValidator defines the interface for validating caller tokens
type CallerValidator interface {
	ValidateToken(tokenString string) (*CallerClaims, error)
}

// CallerClaims represents the claims we expect from the token validator
type CallerClaims struct {
	PartyID id.PartyID
	Role    string
	JTI     string
}

// RequireCaller rejects requests without a valid bearer token and records the
// caller's party id and role. The lifecycle service checks them against the
// acting party. A nil validator lets every request through,
// which is how the server runs when no signing key is configured.
func RequireCaller(validator CallerValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if validator == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), bearerPrefix)
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			ctx = requestcontext.WithCallerID(ctx, claims.PartyID)
			ctx = requestcontext.WithCallerRole(ctx, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
