package party

import (
	"context"
	"testing"

	"foodsupply/internal/supply/models"
	id "foodsupply/pkg/domain"
	"foodsupply/pkg/platform/sentinel"

	"github.com/stretchr/testify/suite"
)

type store interface {
	Create(ctx context.Context, p models.Party) error
	Find(ctx context.Context, role models.Role, partyID id.PartyID) (models.Party, error)
	Exists(ctx context.Context, role models.Role, partyID id.PartyID) (bool, error)
	Update(ctx context.Context, p models.Party) error
}

type contractSuite struct {
	suite.Suite
	ctx   context.Context
	store store
}

func (s *contractSuite) TestCreateFindEachRole() {
	supplier := &models.Supplier{PartyRecord: models.PartyRecord{ID: "s@acme.org"}, CountryID: "UK", OrgID: "ACME"}
	importer := &models.Importer{PartyRecord: models.PartyRecord{ID: "i@port.org"}}
	retailer := &models.Retailer{PartyRecord: models.PartyRecord{ID: "r@shop.org"}}
	regulator := &models.Regulator{
		PartyRecord:    models.PartyRecord{ID: "reg@gov.uk"},
		Location:       "UK",
		ExemptedOrgIDs: []string{"ACME"},
	}
	for _, p := range []models.Party{supplier, importer, retailer, regulator} {
		s.Require().NoError(s.store.Create(s.ctx, p))
		s.Equal(int64(1), p.PartyVersion())
	}

	found, err := s.store.Find(s.ctx, models.RoleSupplier, "s@acme.org")
	s.Require().NoError(err)
	s.Equal("ACME", found.(*models.Supplier).OrgID)
	s.Equal("UK", found.(*models.Supplier).CountryID)

	found, err = s.store.Find(s.ctx, models.RoleRegulator, "reg@gov.uk")
	s.Require().NoError(err)
	s.Equal([]string{"ACME"}, found.(*models.Regulator).ExemptedOrgIDs)
	s.Equal("UK", found.(*models.Regulator).Location)

	ok, err := s.store.Exists(s.ctx, models.RoleImporter, "i@port.org")
	s.Require().NoError(err)
	s.True(ok)
}

func (s *contractSuite) TestRoleScopesIdentity() {
	s.Require().NoError(s.store.Create(s.ctx, &models.Importer{PartyRecord: models.PartyRecord{ID: "dual"}}))

	ok, err := s.store.Exists(s.ctx, models.RoleRetailer, "dual")
	s.Require().NoError(err)
	s.False(ok)

	_, err = s.store.Find(s.ctx, models.RoleRetailer, "dual")
	s.ErrorIs(err, sentinel.ErrNotFound)

	s.NoError(s.store.Create(s.ctx, &models.Retailer{PartyRecord: models.PartyRecord{ID: "dual"}}))
}

func (s *contractSuite) TestCreateDuplicate() {
	s.Require().NoError(s.store.Create(s.ctx, &models.Importer{PartyRecord: models.PartyRecord{ID: "i1"}}))
	err := s.store.Create(s.ctx, &models.Importer{PartyRecord: models.PartyRecord{ID: "i1"}})
	s.ErrorIs(err, sentinel.ErrAlreadyUsed)
}

func (s *contractSuite) TestUpdateRetailer() {
	s.Require().NoError(s.store.Create(s.ctx, &models.Retailer{PartyRecord: models.PartyRecord{ID: "r1"}}))

	found, err := s.store.Find(s.ctx, models.RoleRetailer, "r1")
	s.Require().NoError(err)
	r := found.(*models.Retailer)
	r.Receive("L1", []models.Product{{ProductID: "apples", CountryID: "UK", Quantity: 4}})
	s.Require().NoError(s.store.Update(s.ctx, r))
	s.Equal(int64(2), r.PartyVersion())

	found, err = s.store.Find(s.ctx, models.RoleRetailer, "r1")
	s.Require().NoError(err)
	r = found.(*models.Retailer)
	s.True(r.HasReceived("L1"))
	s.Require().Len(r.Products, 1)
	s.Equal(models.Quantity(4), r.Products[0].Quantity)
}

func (s *contractSuite) TestUpdateStaleVersion() {
	s.Require().NoError(s.store.Create(s.ctx, &models.Regulator{PartyRecord: models.PartyRecord{ID: "reg"}}))

	a, err := s.store.Find(s.ctx, models.RoleRegulator, "reg")
	s.Require().NoError(err)
	b, err := s.store.Find(s.ctx, models.RoleRegulator, "reg")
	s.Require().NoError(err)

	a.(*models.Regulator).AddExemptions([]string{"A"}, nil)
	s.Require().NoError(s.store.Update(s.ctx, a))

	b.(*models.Regulator).AddExemptions([]string{"B"}, nil)
	s.ErrorIs(s.store.Update(s.ctx, b), sentinel.ErrConflict)

	found, err := s.store.Find(s.ctx, models.RoleRegulator, "reg")
	s.Require().NoError(err)
	s.Equal([]string{"A"}, found.(*models.Regulator).ExemptedOrgIDs)
}

func (s *contractSuite) TestUpdateMissing() {
	err := s.store.Update(s.ctx, &models.Importer{PartyRecord: models.PartyRecord{ID: "ghost", Version: 1}})
	s.ErrorIs(err, sentinel.ErrNotFound)
}

type InMemoryStoreSuite struct {
	contractSuite
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = NewInMemoryStore()
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}
