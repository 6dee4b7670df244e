package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"foodsupply/internal/platform/metrics"
	"foodsupply/internal/platform/middleware"
	"foodsupply/internal/supply/models"
	"foodsupply/internal/supply/service"
	dErrors "foodsupply/pkg/domain-errors"
	audit "foodsupply/pkg/platform/audit"
	"foodsupply/pkg/platform/httputil"
	"foodsupply/pkg/requestcontext"

	"github.com/go-chi/chi/v5"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Service defines the custody operations exposed over HTTP.
type Service interface {
	CreateProductListing(ctx context.Context, cmd service.CreateListingCommand) (*models.Listing, error)
	GetListing(ctx context.Context, listingID string) (*models.Listing, error)
	TransferListing(ctx context.Context, cmd service.TransferCommand) (*models.Listing, error)
	CheckProducts(ctx context.Context, cmd service.CheckCommand) (*service.CheckResult, error)
	ReconcileDelivery(ctx context.Context, listingID string) (*service.ReconcileResult, error)
	UpdateExemptedList(ctx context.Context, cmd service.ExemptionCommand) (*models.Regulator, error)
	RegisterParty(ctx context.Context, req models.RegisterPartyRequest) (models.Party, error)
	GetParty(ctx context.Context, role, partyID string) (models.Party, error)
	ListingHistory(ctx context.Context, listingID string) ([]audit.Event, error)
}

// Handler serves the custody endpoints.
type Handler struct {
	logger         *slog.Logger
	supply         Service
	metrics        *metrics.Metrics
	validator      middleware.CallerValidator
	requestTimeout time.Duration
}

// New creates a new custody Handler. A nil validator serves unauthenticated.
func New(
	supply Service,
	logger *slog.Logger,
	metrics *metrics.Metrics,
	validator middleware.CallerValidator,
	requestTimeout time.Duration) *Handler {
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}
	return &Handler{
		logger:         logger,
		supply:         supply,
		metrics:        metrics,
		validator:      validator,
		requestTimeout: requestTimeout,
	}
}

// Register registers the custody routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	supplyRouter := chi.NewRouter()
	supplyRouter.Use(middleware.Recovery(h.logger))
	supplyRouter.Use(middleware.RequestID)
	supplyRouter.Use(middleware.RequestTime)
	supplyRouter.Use(middleware.Logger(h.logger))
	supplyRouter.Use(middleware.Timeout(h.requestTimeout))
	supplyRouter.Use(middleware.ContentTypeJSON)
	supplyRouter.Use(middleware.LatencyMiddleware(h.metrics))

	supplyRouter.Group(func(r chi.Router) {
		r.Use(middleware.RequireCaller(h.validator, h.logger))
		r.Post("/listings", h.handleCreateListing)
		r.Post("/listings/{listingID}/transfer", h.handleTransferListing)
		r.Post("/listings/{listingID}/check", h.handleCheckProducts)
		r.Post("/listings/{listingID}/reconcile", h.handleReconcileDelivery)
		r.Post("/regulators/{regulatorID}/exemptions", h.handleUpdateExemptions)
		r.Post("/parties", h.handleRegisterParty)
	})
	supplyRouter.Get("/listings/{listingID}", h.handleGetListing)
	supplyRouter.Get("/listings/{listingID}/history", h.handleListingHistory)
	supplyRouter.Get("/parties/{role}/{partyID}", h.handleGetParty)

	r.Mount("/", supplyRouter)
}

type createListingRequest struct {
	ListingID  string   `json:"listing_id"`
	Products   []string `json:"products"`
	SupplierID string   `json:"supplier_id"`
}

type transferRequest struct {
	OwnerType  string `json:"owner_type"`
	NewOwnerID string `json:"new_owner_id"`
}

type checkRequest struct {
	RegulatorID string `json:"regulator_id"`
}

type exemptionsRequest struct {
	OrgIDs     []string `json:"org_ids"`
	ProductIDs []string `json:"product_ids"`
}

// partyResponse flattens a participant with its role.
type partyResponse struct {
	Role  models.Role  `json:"role"`
	Party models.Party `json:"party"`
}

type historyEntry struct {
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
	PartyID   string    `json:"party_id,omitempty"`
	Role      string    `json:"role,omitempty"`
	Status    string    `json:"status,omitempty"`
	Decision  string    `json:"decision,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
}

func (h *Handler) handleCreateListing(w http.ResponseWriter, r *http.Request) {
	var req createListingRequest
	if !h.decode(w, r, &req) {
		return
	}
	listing, err := h.supply.CreateProductListing(r.Context(), service.CreateListingCommand{
		ListingID:  req.ListingID,
		Products:   req.Products,
		SupplierID: req.SupplierID,
	})
	if err != nil {
		h.writeError(w, r, "create listing", err)
		return
	}
	w.Header().Set("Location", "/listings/"+listing.ID.String())
	httputil.WriteJSON(w, http.StatusCreated, listing)
}

func (h *Handler) handleGetListing(w http.ResponseWriter, r *http.Request) {
	listing, err := h.supply.GetListing(r.Context(), chi.URLParam(r, "listingID"))
	if err != nil {
		h.writeError(w, r, "get listing", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, listing)
}

func (h *Handler) handleListingHistory(w http.ResponseWriter, r *http.Request) {
	events, err := h.supply.ListingHistory(r.Context(), chi.URLParam(r, "listingID"))
	if err != nil {
		h.writeError(w, r, "listing history", err)
		return
	}
	entries := make([]historyEntry, 0, len(events))
	for _, e := range events {
		entries = append(entries, historyEntry{
			Action:    e.Action,
			Timestamp: e.Timestamp,
			PartyID:   e.PartyID.String(),
			Role:      e.Role,
			Status:    e.Status,
			Decision:  e.Decision,
			Reason:    e.Reason,
			RequestID: e.RequestID,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"events": entries})
}

func (h *Handler) handleTransferListing(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if !h.decode(w, r, &req) {
		return
	}
	listing, err := h.supply.TransferListing(r.Context(), service.TransferCommand{
		ListingID:  chi.URLParam(r, "listingID"),
		OwnerType:  req.OwnerType,
		NewOwnerID: req.NewOwnerID,
	})
	if err != nil {
		h.writeError(w, r, "transfer listing", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, listing)
}

func (h *Handler) handleCheckProducts(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if !h.decode(w, r, &req) {
		return
	}
	result, err := h.supply.CheckProducts(r.Context(), service.CheckCommand{
		ListingID:   chi.URLParam(r, "listingID"),
		RegulatorID: req.RegulatorID,
	})
	if err != nil {
		h.writeError(w, r, "check products", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleReconcileDelivery(w http.ResponseWriter, r *http.Request) {
	result, err := h.supply.ReconcileDelivery(r.Context(), chi.URLParam(r, "listingID"))
	if err != nil {
		h.writeError(w, r, "reconcile delivery", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleUpdateExemptions(w http.ResponseWriter, r *http.Request) {
	var req exemptionsRequest
	if !h.decode(w, r, &req) {
		return
	}
	regulator, err := h.supply.UpdateExemptedList(r.Context(), service.ExemptionCommand{
		RegulatorID: chi.URLParam(r, "regulatorID"),
		OrgIDs:      req.OrgIDs,
		ProductIDs:  req.ProductIDs,
	})
	if err != nil {
		h.writeError(w, r, "update exemptions", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, partyResponse{Role: models.RoleRegulator, Party: regulator})
}

func (h *Handler) handleRegisterParty(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterPartyRequest
	if !h.decode(w, r, &req) {
		return
	}
	party, err := h.supply.RegisterParty(r.Context(), req)
	if err != nil {
		h.writeError(w, r, "register party", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, partyResponse{Role: party.Role(), Party: party})
}

func (h *Handler) handleGetParty(w http.ResponseWriter, r *http.Request) {
	party, err := h.supply.GetParty(r.Context(), chi.URLParam(r, "role"), chi.URLParam(r, "partyID"))
	if err != nil {
		h.writeError(w, r, "get party", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, partyResponse{Role: party.Role(), Party: party})
}

// decode reads a JSON body into dst, writing a bad_request response on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		ctx := r.Context()
		h.logger.WarnContext(ctx, "invalid request body",
			"path", r.URL.Path,
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return false
	}
	return true
}

// writeError logs at a level matching the error's severity and writes the
// mapped response.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	ctx := r.Context()
	attrs := []any{
		"operation", op,
		"request_id", requestcontext.RequestID(ctx),
		"error", err.Error(),
	}
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, "custody request failed", attrs...)
	} else {
		h.logger.WarnContext(ctx, "custody request rejected", attrs...)
	}
	httputil.WriteError(w, err)
}
