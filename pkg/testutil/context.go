package testutil

import (
	"net/http"

	id "foodsupply/pkg/domain"
	"foodsupply/pkg/requestcontext"
)

// WithCaller adds an authenticated party to the request context, as
// RequireCaller would. Invalid party ids are ignored.
func WithCaller(req *http.Request, partyID, role string) *http.Request {
	parsed, err := id.ParsePartyID(partyID)
	if err != nil {
		return req
	}
	ctx := requestcontext.WithCallerRole(requestcontext.WithCallerID(req.Context(), parsed), role)
	return req.WithContext(ctx)
}
