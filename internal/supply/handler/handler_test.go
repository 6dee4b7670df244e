package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"foodsupply/internal/platform/middleware"
	"foodsupply/internal/supply/handler/mocks"
	"foodsupply/internal/supply/models"
	"foodsupply/internal/supply/service"
	id "foodsupply/pkg/domain"
	dErrors "foodsupply/pkg/domain-errors"
	audit "foodsupply/pkg/platform/audit"
	"foodsupply/pkg/requestcontext"
	"foodsupply/pkg/testutil"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type stubValidator struct{}

func (stubValidator) ValidateToken(token string) (*middleware.CallerClaims, error) {
	if token != "good" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	return &middleware.CallerClaims{PartyID: "importer@port.org", Role: "importer"}, nil
}

type HandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  chi.Router
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	h := New(s.service, logger, nil, stubValidator{}, time.Second)
	s.router = chi.NewRouter()
	h.Register(s.router)
}

func (s *HandlerSuite) do(req *http.Request) *httptest.ResponseRecorder {
	req.Header.Set("Authorization", "Bearer good")
	return testutil.DoRequest(s.router, req)
}

func sampleListing() *models.Listing {
	return &models.Listing{
		ID:         "L1",
		Status:     models.StatusExemptCheckRequired,
		SupplierID: "S",
		OwnerID:    "I",
		OwnerRole:  models.RoleImporter,
		Products:   []models.Product{{ProductID: "p1", CountryID: "UK", Quantity: 5}},
		Version:    2,
	}
}

func (s *HandlerSuite) TestCreateListing() {
	s.service.EXPECT().CreateProductListing(gomock.Any(), service.CreateListingCommand{
		ListingID:  "L1",
		Products:   []string{"p1,5"},
		SupplierID: "S",
	}).DoAndReturn(func(ctx context.Context, _ service.CreateListingCommand) (*models.Listing, error) {
		s.Equal(id.PartyID("importer@port.org"), requestcontext.CallerID(ctx))
		s.NotEmpty(requestcontext.RequestID(ctx))
		l := sampleListing()
		l.Status = models.StatusInitialRequest
		return l, nil
	})

	rr := s.do(testutil.NewJSONRequest(s.T(), http.MethodPost, "/listings", createListingRequest{
		ListingID:  "L1",
		Products:   []string{"p1,5"},
		SupplierID: "S",
	}))

	s.Equal(http.StatusCreated, rr.Code)
	s.Equal("/listings/L1", rr.Header().Get("Location"))
	body := testutil.UnmarshalResponse[models.Listing](s.T(), rr)
	s.Equal(models.StatusInitialRequest, body.Status)
	s.Equal(models.Quantity(5), body.Products[0].Quantity)
}

func (s *HandlerSuite) TestCreateListingRejectsBadBody() {
	rr := s.do(testutil.NewRawRequest(http.MethodPost, "/listings", `{"products": "p1"}`))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")

	rr = s.do(testutil.NewRawRequest(http.MethodPost, "/listings", `{"listing_id":"L1","unknown":true}`))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
}

func (s *HandlerSuite) TestErrorMapping() {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", dErrors.New(dErrors.CodeValidation, "Product list Empty"), http.StatusBadRequest, "validation_error"},
		{"forbidden", dErrors.New(dErrors.CodeForbidden, "Exempt check pending"), http.StatusForbidden, "forbidden"},
		{"not found", dErrors.New(dErrors.CodeNotFound, "listing not found"), http.StatusNotFound, "not_found"},
		{"conflict", dErrors.New(dErrors.CodeConflict, "concurrent modification"), http.StatusConflict, "conflict"},
		{"internal", dErrors.New(dErrors.CodeInternal, "store failed"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.service.EXPECT().TransferListing(gomock.Any(), gomock.Any()).Return(nil, tt.err)
			rr := s.do(testutil.NewJSONRequest(s.T(), http.MethodPost, "/listings/L1/transfer", transferRequest{OwnerType: "importer", NewOwnerID: "T"}))
			testutil.AssertStatusAndError(s.T(), rr, tt.status, tt.code)
		})
	}
}

func (s *HandlerSuite) TestTransferListing() {
	s.service.EXPECT().TransferListing(gomock.Any(), service.TransferCommand{
		ListingID:  "L1",
		OwnerType:  "supplier",
		NewOwnerID: "I",
	}).Return(sampleListing(), nil)

	rr := s.do(testutil.NewJSONRequest(s.T(), http.MethodPost, "/listings/L1/transfer", transferRequest{OwnerType: "supplier", NewOwnerID: "I"}))
	s.Equal(http.StatusOK, rr.Code)
	body := testutil.UnmarshalResponse[models.Listing](s.T(), rr)
	s.Equal(id.PartyID("I"), body.OwnerID)
	s.Equal(models.StatusExemptCheckRequired, body.Status)
}

func (s *HandlerSuite) TestCheckProducts() {
	l := sampleListing()
	l.Status = models.StatusCheckCompleted
	s.service.EXPECT().CheckProducts(gomock.Any(), service.CheckCommand{ListingID: "L1", RegulatorID: "R"}).
		Return(&service.CheckResult{Listing: l, Decision: service.DecisionExempt}, nil)

	rr := s.do(testutil.NewJSONRequest(s.T(), http.MethodPost, "/listings/L1/check", checkRequest{RegulatorID: "R"}))
	s.Equal(http.StatusOK, rr.Code)
	body := testutil.UnmarshalResponse[service.CheckResult](s.T(), rr)
	s.Equal(service.DecisionExempt, body.Decision)
	s.Equal(models.StatusCheckCompleted, body.Listing.Status)
}

func (s *HandlerSuite) TestReconcileDelivery() {
	s.service.EXPECT().ReconcileDelivery(gomock.Any(), "L1").
		Return(&service.ReconcileResult{ListingID: "L1", RetailerID: "T", Applied: true}, nil)

	rr := s.do(testutil.NewRawRequest(http.MethodPost, "/listings/L1/reconcile", ""))
	s.Equal(http.StatusOK, rr.Code)
	body := testutil.UnmarshalResponse[service.ReconcileResult](s.T(), rr)
	s.True(body.Applied)
}

func (s *HandlerSuite) TestUpdateExemptions() {
	s.service.EXPECT().UpdateExemptedList(gomock.Any(), service.ExemptionCommand{
		RegulatorID: "R",
		OrgIDs:      []string{"X"},
	}).Return(&models.Regulator{PartyRecord: models.PartyRecord{ID: "R", Version: 2}, ExemptedOrgIDs: []string{"X"}}, nil)

	rr := s.do(testutil.NewJSONRequest(s.T(), http.MethodPost, "/regulators/R/exemptions", exemptionsRequest{OrgIDs: []string{"X"}}))
	s.Equal(http.StatusOK, rr.Code)
	s.Contains(rr.Body.String(), `"exempted_org_ids":["X"]`)
	s.Contains(rr.Body.String(), `"role":"regulator"`)
}

func (s *HandlerSuite) TestRegisterAndGetParty() {
	supplier := &models.Supplier{PartyRecord: models.PartyRecord{ID: "S", Version: 1}, CountryID: "UK", OrgID: "X"}
	s.service.EXPECT().RegisterParty(gomock.Any(), models.RegisterPartyRequest{Role: "supplier", ID: "S", CountryID: "UK", OrgID: "X"}).
		Return(supplier, nil)
	s.service.EXPECT().GetParty(gomock.Any(), "supplier", "S").Return(supplier, nil)

	rr := s.do(testutil.NewJSONRequest(s.T(), http.MethodPost, "/parties", models.RegisterPartyRequest{Role: "supplier", ID: "S", CountryID: "UK", OrgID: "X"}))
	s.Equal(http.StatusCreated, rr.Code)
	s.Contains(rr.Body.String(), `"org_id":"X"`)

	rr = s.do(testutil.NewRequest(http.MethodGet, "/parties/supplier/S"))
	s.Equal(http.StatusOK, rr.Code)
	s.Contains(rr.Body.String(), `"role":"supplier"`)
}

func (s *HandlerSuite) TestGetListingIsPublic() {
	s.service.EXPECT().GetListing(gomock.Any(), "L1").Return(sampleListing(), nil)

	rr := testutil.DoRequest(s.router, testutil.NewRequest(http.MethodGet, "/listings/L1"))
	s.Equal(http.StatusOK, rr.Code)
}

func (s *HandlerSuite) TestListingHistory() {
	at := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
	s.service.EXPECT().ListingHistory(gomock.Any(), "L1").Return([]audit.Event{
		{Action: "listing_created", Timestamp: at, PartyID: "S", Status: "INITIALREQUEST"},
		{Action: "products_checked", Timestamp: at.Add(time.Hour), PartyID: "R", Decision: "exempt"},
	}, nil)

	rr := testutil.DoRequest(s.router, testutil.NewRequest(http.MethodGet, "/listings/L1/history"))
	s.Require().Equal(http.StatusOK, rr.Code)
	body := testutil.UnmarshalResponse[struct {
		Events []historyEntry `json:"events"`
	}](s.T(), rr)
	s.Require().Len(body.Events, 2)
	s.Equal("listing_created", body.Events[0].Action)
	s.Equal("exempt", body.Events[1].Decision)
	s.True(body.Events[1].Timestamp.Equal(at.Add(time.Hour)))
}

func (s *HandlerSuite) TestMutationsRequireCaller() {
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/listings/L1/check", checkRequest{RegulatorID: "R"})
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthorized")

	req = testutil.NewJSONRequest(s.T(), http.MethodPost, "/listings/L1/check", checkRequest{RegulatorID: "R"})
	req.Header.Set("Authorization", "Bearer forged")
	rr = testutil.DoRequest(s.router, req)
	testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthorized")
}
