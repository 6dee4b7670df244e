package service

import (
	"context"

	"foodsupply/internal/supply/models"
	id "foodsupply/pkg/domain"
	audit "foodsupply/pkg/platform/audit"

	"go.opentelemetry.io/otel/attribute"
)

// ExemptionCommand adds organization and product ids to a regulator's
// exemption lists. Either list may be empty.
type ExemptionCommand struct {
	RegulatorID string
	OrgIDs      []string
	ProductIDs  []string
}

// UpdateExemptedList merges the ids into the regulator's exemption sets.
// Duplicates and blanks are absorbed; nothing is ever removed. When every id
// is already present no write happens.
func (s *Service) UpdateExemptedList(ctx context.Context, cmd ExemptionCommand) (_ *models.Regulator, err error) {
	ctx, finish := s.startOp(ctx, "update_exempted_list",
		attribute.String("regulator.id", cmd.RegulatorID),
		attribute.Int("org_ids", len(cmd.OrgIDs)),
		attribute.Int("product_ids", len(cmd.ProductIDs)),
	)
	defer func() { finish(err) }()

	regulatorID, err := id.ParsePartyID(cmd.RegulatorID)
	if err != nil {
		return nil, err
	}
	if err := requireActor(ctx, models.RoleRegulator, regulatorID); err != nil {
		return nil, err
	}

	var (
		result *models.Regulator
		added  int
	)
	err = s.tx.RunInTx(withTxKey(ctx, "regulator:"+regulatorID.String()), func(ctx context.Context) error {
		regulator, err := s.findRegulator(ctx, regulatorID)
		if err != nil {
			return err
		}
		added = regulator.AddExemptions(cmd.OrgIDs, cmd.ProductIDs)
		if added > 0 {
			if err := s.parties.Update(ctx, regulator); err != nil {
				return translateStoreError(err, "regulator not found")
			}
		}
		result = regulator
		return nil
	})
	if err != nil {
		return nil, translateStoreError(err, "regulator not found")
	}

	if added > 0 {
		s.logAudit(ctx, audit.Event{
			Action:  string(audit.EventExemptionsUpdated),
			PartyID: result.ID,
			Role:    string(models.RoleRegulator),
		}, "added", added, "exempted_orgs", len(result.ExemptedOrgIDs), "exempted_products", len(result.ExemptedProductIDs))
	}
	return result, nil
}
