package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"foodsupply/internal/supply/metrics"
	"foodsupply/internal/supply/models"
	id "foodsupply/pkg/domain"
	dErrors "foodsupply/pkg/domain-errors"
	audit "foodsupply/pkg/platform/audit"
	"foodsupply/pkg/platform/sentinel"
	"foodsupply/pkg/requestcontext"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ListingStore is the listing repository. Update is conditional on
// Listing.Version and bumps it on success.
type ListingStore interface {
	Create(ctx context.Context, listing *models.Listing) error
	FindByID(ctx context.Context, listingID id.ListingID) (*models.Listing, error)
	Update(ctx context.Context, listing *models.Listing) error
}

// PartyDirectory resolves participants by (role, id). Update is conditional
// on the party's version.
type PartyDirectory interface {
	Exists(ctx context.Context, role models.Role, partyID id.PartyID) (bool, error)
	Find(ctx context.Context, role models.Role, partyID id.PartyID) (models.Party, error)
	Create(ctx context.Context, party models.Party) error
	Update(ctx context.Context, party models.Party) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

var tracer = otel.Tracer("foodsupply/internal/supply/service")

// Service is the custody lifecycle engine. It loads current state, validates
// preconditions on the aggregates, and writes back conditionally.
type Service struct {
	listings       ListingStore
	parties        PartyDirectory
	tx             StoreTx
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	// deliveries serializes saga step two per retailer. Its table is
	// separate from the tx shards so a listing lock never waits on itself.
	deliveries keyedLocks
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTx sets the transactional boundary. Without it operations are
// serialized per key in-process and multi-aggregate writes are compensated.
func WithTx(tx StoreTx) Option {
	return func(s *Service) {
		if tx != nil {
			s.tx = tx
		}
	}
}

// New constructs a Service.
func New(listings ListingStore, parties PartyDirectory, opts ...Option) *Service {
	s := &Service{listings: listings, parties: parties}
	for _, opt := range opts {
		opt(s)
	}
	if s.tx == nil {
		s.tx = newShardedTx()
	}
	return s
}

// translateStoreError maps repository sentinels onto coded errors. Errors that
// already carry a code pass through.
func translateStoreError(err error, notFoundMsg string) error {
	if err == nil {
		return nil
	}
	var coded *dErrors.Error
	switch {
	case errors.As(err, &coded):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, notFoundMsg)
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, "concurrent modification, retry from fresh state")
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return dErrors.Wrap(err, dErrors.CodeConflict, "already exists")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return dErrors.Wrap(err, dErrors.CodeTimeout, "operation aborted")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "store operation failed")
	}
}

// startOp opens a span and returns a finisher that records the outcome.
func (s *Service) startOp(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "supply."+op, trace.WithAttributes(attrs...))
	return ctx, func(err error) {
		defer span.End()
		outcome := "ok"
		if err != nil {
			outcome = string(dErrors.CodeOf(err))
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
			if outcome == string(dErrors.CodeInternal) && s.logger != nil {
				s.logger.ErrorContext(ctx, "custody operation failed",
					"operation", op,
					"request_id", requestcontext.RequestID(ctx),
					"error", err,
				)
			}
		}
		s.metrics.ObserveOperation(op, outcome, time.Since(start))
	}
}

// logAudit writes the structured audit line and publishes the audit event.
// Publishing failures are logged; the state change has already committed.
func (s *Service) logAudit(ctx context.Context, event audit.Event, attributes ...any) {
	event.RequestID = requestcontext.RequestID(ctx)
	event.ActorID = requestcontext.CallerID(ctx).String()
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if s.logger != nil {
		args := append(attributes,
			"listing_id", event.ListingID,
			"party_id", event.PartyID,
			"event", event.Action,
			"log_type", "audit",
		)
		if event.RequestID != "" {
			args = append(args, "request_id", event.RequestID)
		}
		if event.ActorID != "" {
			args = append(args, "actor_id", event.ActorID)
		}
		s.logger.InfoContext(ctx, event.Action, args...)
	}
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "audit publish failed", "event", event.Action, "error", err)
	}
}

func (s *Service) findSupplier(ctx context.Context, partyID id.PartyID) (*models.Supplier, error) {
	start := time.Now()
	p, err := s.parties.Find(ctx, models.RoleSupplier, partyID)
	s.metrics.ObserveLookupLatency(string(models.RoleSupplier), time.Since(start))
	if err != nil {
		return nil, translateStoreError(err, "supplier not found")
	}
	supplier, ok := p.(*models.Supplier)
	if !ok {
		return nil, dErrors.New(dErrors.CodeInternal, "party directory returned a non-supplier")
	}
	return supplier, nil
}

func (s *Service) findRegulator(ctx context.Context, partyID id.PartyID) (*models.Regulator, error) {
	start := time.Now()
	p, err := s.parties.Find(ctx, models.RoleRegulator, partyID)
	s.metrics.ObserveLookupLatency(string(models.RoleRegulator), time.Since(start))
	if err != nil {
		return nil, translateStoreError(err, "regulator not found")
	}
	regulator, ok := p.(*models.Regulator)
	if !ok {
		return nil, dErrors.New(dErrors.CodeInternal, "party directory returned a non-regulator")
	}
	return regulator, nil
}

func (s *Service) findRetailer(ctx context.Context, partyID id.PartyID) (*models.Retailer, error) {
	start := time.Now()
	p, err := s.parties.Find(ctx, models.RoleRetailer, partyID)
	s.metrics.ObserveLookupLatency(string(models.RoleRetailer), time.Since(start))
	if err != nil {
		return nil, translateStoreError(err, "retailer not found")
	}
	retailer, ok := p.(*models.Retailer)
	if !ok {
		return nil, dErrors.New(dErrors.CodeInternal, "party directory returned a non-retailer")
	}
	return retailer, nil
}
