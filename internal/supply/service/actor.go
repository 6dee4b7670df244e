package service

import (
	"context"
	"strings"

	"foodsupply/internal/supply/models"
	id "foodsupply/pkg/domain"
	dErrors "foodsupply/pkg/domain-errors"
	"foodsupply/pkg/requestcontext"
)

// requireActor checks an authenticated caller is the party the operation acts
// as: same id and same claimed role. Requests without a caller are not
// checked.
func requireActor(ctx context.Context, role models.Role, partyID id.PartyID) error {
	caller := requestcontext.CallerID(ctx)
	if caller.IsNil() {
		return nil
	}
	claimed := models.Role(strings.ToLower(strings.TrimSpace(requestcontext.CallerRole(ctx))))
	if caller != partyID || claimed != role {
		return dErrors.New(dErrors.CodeForbidden, "caller is not the acting "+role.String())
	}
	return nil
}
