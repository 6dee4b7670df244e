package listing

import (
	"context"
	"time"

	"foodsupply/internal/supply/models"
	id "foodsupply/pkg/domain"
	"foodsupply/pkg/platform/sentinel"

	"github.com/stretchr/testify/suite"
)

type store interface {
	Create(ctx context.Context, listing *models.Listing) error
	FindByID(ctx context.Context, listingID id.ListingID) (*models.Listing, error)
	Update(ctx context.Context, listing *models.Listing) error
}

// contractSuite is shared by every backend. Backends set newStore in
// SetupTest.
type contractSuite struct {
	suite.Suite
	ctx   context.Context
	store store
}

func (s *contractSuite) newListing(listingID string) *models.Listing {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	l, err := models.NewListing(id.ListingID(listingID), "supplier@acme.org", []models.Product{
		{ProductID: "apples", CountryID: "UK", Quantity: 10},
		{ProductID: "pears", CountryID: "UK", Quantity: 1},
	}, now)
	s.Require().NoError(err)
	return l
}

func (s *contractSuite) TestCreateAndFind() {
	l := s.newListing("L-create")
	s.Require().NoError(s.store.Create(s.ctx, l))
	s.Equal(int64(1), l.Version)

	found, err := s.store.FindByID(s.ctx, l.ID)
	s.Require().NoError(err)
	s.Equal(l.ID, found.ID)
	s.Equal(models.StatusInitialRequest, found.Status)
	s.Equal(l.SupplierID, found.OwnerID)
	s.Equal(models.RoleSupplier, found.OwnerRole)
	s.Equal(l.Products, found.Products)
	s.Equal(int64(1), found.Version)
}

func (s *contractSuite) TestCreateDuplicate() {
	s.Require().NoError(s.store.Create(s.ctx, s.newListing("L-dup")))
	err := s.store.Create(s.ctx, s.newListing("L-dup"))
	s.ErrorIs(err, sentinel.ErrAlreadyUsed)
}

func (s *contractSuite) TestFindNotFound() {
	_, err := s.store.FindByID(s.ctx, "missing")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *contractSuite) TestUpdate() {
	l := s.newListing("L-update")
	s.Require().NoError(s.store.Create(s.ctx, l))

	plan, err := l.PlanTransfer(models.RoleSupplier)
	s.Require().NoError(err)
	l.ApplyTransfer("importer@port.org", plan, l.CreatedAt.Add(time.Minute))
	s.Require().NoError(s.store.Update(s.ctx, l))
	s.Equal(int64(2), l.Version)

	found, err := s.store.FindByID(s.ctx, l.ID)
	s.Require().NoError(err)
	s.Equal(id.PartyID("importer@port.org"), found.OwnerID)
	s.Equal(models.RoleImporter, found.OwnerRole)
	s.Equal(models.StatusExemptCheckRequired, found.Status)
	s.Equal(int64(2), found.Version)
}

func (s *contractSuite) TestUpdateStaleVersionConflicts() {
	l := s.newListing("L-stale")
	s.Require().NoError(s.store.Create(s.ctx, l))

	first, err := s.store.FindByID(s.ctx, l.ID)
	s.Require().NoError(err)
	second, err := s.store.FindByID(s.ctx, l.ID)
	s.Require().NoError(err)

	first.Status = models.StatusExemptCheckRequired
	s.Require().NoError(s.store.Update(s.ctx, first))

	second.Status = models.StatusExemptCheckRequired
	err = s.store.Update(s.ctx, second)
	s.ErrorIs(err, sentinel.ErrConflict)
	s.Equal(int64(1), second.Version)
}

func (s *contractSuite) TestUpdateMissing() {
	l := s.newListing("L-never-created")
	l.Version = 1
	err := s.store.Update(s.ctx, l)
	s.ErrorIs(err, sentinel.ErrNotFound)
}
