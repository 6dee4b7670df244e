package service

import (
	"context"
	"sync"
	"sync/atomic"

	"foodsupply/internal/supply/models"
	partystore "foodsupply/internal/supply/store/party"
	id "foodsupply/pkg/domain"
	dErrors "foodsupply/pkg/domain-errors"
	"foodsupply/pkg/platform/sentinel"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// failingRetailerUpdates rejects every retailer write, simulating a lost
// race or an unavailable directory during saga step two.
type failingRetailerUpdates struct {
	*partystore.InMemoryStore
	err error
}

func (f *failingRetailerUpdates) Update(ctx context.Context, p models.Party) error {
	if p.Role() == models.RoleRetailer {
		return f.err
	}
	return f.InMemoryStore.Update(ctx, p)
}

// atomicNoRollback reports itself atomic; it cannot roll back memory stores,
// so tests only observe that no compensation is attempted.
type atomicNoRollback struct{}

func (atomicNoRollback) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (atomicNoRollback) Atomic() bool { return true }

// readyForRetailer creates a listing and walks it to a completed check while
// owned by the importer.
func (s *ServiceSuite) readyForRetailer(listingID string) *models.Listing {
	s.exemptOrg("X")
	s.create(listingID, "p1,5", "p2")
	s.toImporter(listingID)
	res, err := s.service.CheckProducts(s.ctx, CheckCommand{ListingID: listingID, RegulatorID: regulatorID})
	s.Require().NoError(err)
	s.Require().Equal(models.StatusCheckCompleted, res.Listing.Status)
	return res.Listing
}

func (s *ServiceSuite) TestDeliveryFailureRestoresListing() {
	before := s.readyForRetailer("L-saga")
	svc := s.newService(&failingRetailerUpdates{InMemoryStore: s.parties, err: sentinel.ErrConflict})

	_, err := svc.TransferListing(s.ctx, TransferCommand{ListingID: "L-saga", OwnerType: "importer", NewOwnerID: retailerID})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))

	after := s.stored("L-saga")
	s.Equal(id.PartyID(importerID), after.OwnerID)
	s.Equal(models.RoleImporter, after.OwnerRole)
	s.Equal(models.StatusCheckCompleted, after.Status)
	s.Equal(before.Version+2, after.Version, "transfer and compensation are both conditional writes")
	s.Empty(s.retailer().Products)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Compensations))
	s.Contains(s.auditActions("L-saga"), "transfer_reverted")

	s.Run("retry after the failure succeeds", func() {
		l, err := s.service.TransferListing(s.ctx, TransferCommand{ListingID: "L-saga", OwnerType: "importer", NewOwnerID: retailerID})
		s.Require().NoError(err)
		s.Equal(id.PartyID(retailerID), l.OwnerID)
		s.Len(s.retailer().Products, 2)
	})
}

func (s *ServiceSuite) TestDeliveryFailureUnderAtomicTxLeavesRollbackToTx() {
	s.readyForRetailer("L-atomic")
	svc := s.newService(&failingRetailerUpdates{InMemoryStore: s.parties, err: sentinel.ErrUnavailable}, WithTx(atomicNoRollback{}))

	_, err := svc.TransferListing(s.ctx, TransferCommand{ListingID: "L-atomic", OwnerType: "importer", NewOwnerID: retailerID})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	s.Zero(testutil.ToFloat64(s.metrics.Compensations))
	s.NotContains(s.auditActions("L-atomic"), "transfer_reverted")
}

func (s *ServiceSuite) TestReconcileDelivery() {
	s.readyForRetailer("L-rec")

	// Simulate a crash between the saga steps: the listing reached the
	// retailer but the retailer never received the products.
	l := s.stored("L-rec")
	l.OwnerID = retailerID
	l.OwnerRole = models.RoleRetailer
	s.Require().NoError(s.listings.Update(context.Background(), l))
	s.Require().Empty(s.retailer().Products)

	res, err := s.service.ReconcileDelivery(s.ctx, "L-rec")
	s.Require().NoError(err)
	s.True(res.Applied)
	s.Equal(id.PartyID(retailerID), res.RetailerID)
	s.Len(s.retailer().Products, 2)

	res, err = s.service.ReconcileDelivery(s.ctx, "L-rec")
	s.Require().NoError(err)
	s.False(res.Applied)
	s.Len(s.retailer().Products, 2)

	count := 0
	for _, a := range s.auditActions("L-rec") {
		if a == "delivery_reconciled" {
			count++
		}
	}
	s.Equal(1, count)
}

func (s *ServiceSuite) TestReconcileDeliveryPreconditions() {
	s.create("L-open", "p1")

	_, err := s.service.ReconcileDelivery(s.ctx, "L-open")
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	_, err = s.service.ReconcileDelivery(s.ctx, "missing")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestDeliveredTransferIsNotDoubleCounted() {
	s.readyForRetailer("L-once")
	_, err := s.service.TransferListing(s.ctx, TransferCommand{ListingID: "L-once", OwnerType: "importer", NewOwnerID: retailerID})
	s.Require().NoError(err)

	res, err := s.service.ReconcileDelivery(s.ctx, "L-once")
	s.Require().NoError(err)
	s.False(res.Applied)
	s.Len(s.retailer().Products, 2)
}

func (s *ServiceSuite) TestConcurrentChecksOnlyOneApplies() {
	s.exemptOrg("X")
	s.create("L-race", "p1")
	s.toImporter("L-race")

	const workers = 20
	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
		forbidden atomic.Int32
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.service.CheckProducts(s.ctx, CheckCommand{ListingID: "L-race", RegulatorID: regulatorID})
			switch {
			case err == nil:
				succeeded.Add(1)
			case dErrors.HasCode(err, dErrors.CodeForbidden):
				forbidden.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), succeeded.Load())
	s.Equal(int32(workers-1), forbidden.Load())
	s.Equal(models.StatusCheckCompleted, s.stored("L-race").Status)
}

func (s *ServiceSuite) TestConcurrentRetailerDeliveriesAreSerialized() {
	const listings = 10
	s.exemptOrg("X")
	for i := 0; i < listings; i++ {
		lid := "L-par-" + string(rune('a'+i))
		s.create(lid, "p"+string(rune('a'+i)))
		s.toImporter(lid)
		_, err := s.service.CheckProducts(s.ctx, CheckCommand{ListingID: lid, RegulatorID: regulatorID})
		s.Require().NoError(err)
	}

	var (
		wg       sync.WaitGroup
		failures atomic.Int32
	)
	for i := 0; i < listings; i++ {
		wg.Add(1)
		go func(lid string) {
			defer wg.Done()
			if _, err := s.service.TransferListing(s.ctx, TransferCommand{ListingID: lid, OwnerType: "importer", NewOwnerID: retailerID}); err != nil {
				failures.Add(1)
			}
		}("L-par-" + string(rune('a'+i)))
	}
	wg.Wait()

	s.Zero(failures.Load())
	r := s.retailer()
	s.Len(r.Products, listings)
	s.Len(r.ReceivedListings, listings)
	s.Zero(testutil.ToFloat64(s.metrics.Compensations))
}
