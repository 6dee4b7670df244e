// Package supply wires the custody lifecycle: stores, the lifecycle service
// and its HTTP handler.
package supply

import (
	"log/slog"
	"time"

	platformmetrics "foodsupply/internal/platform/metrics"
	"foodsupply/internal/platform/middleware"
	"foodsupply/internal/supply/handler"
	"foodsupply/internal/supply/metrics"
	"foodsupply/internal/supply/service"
	listingstore "foodsupply/internal/supply/store/listing"
	partystore "foodsupply/internal/supply/store/party"
)

// Dependencies are the collaborators of the lifecycle service. Listings and
// Parties are required; the rest are optional.
type Dependencies struct {
	Listings service.ListingStore
	Parties  service.PartyDirectory
	Tx       service.StoreTx
	Audit    service.AuditPublisher
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}

// NewService builds the lifecycle service from deps.
func NewService(deps Dependencies) *service.Service {
	opts := []service.Option{service.WithTx(deps.Tx)}
	if deps.Logger != nil {
		opts = append(opts, service.WithLogger(deps.Logger))
	}
	if deps.Audit != nil {
		opts = append(opts, service.WithAuditPublisher(deps.Audit))
	}
	if deps.Metrics != nil {
		opts = append(opts, service.WithMetrics(deps.Metrics))
	}
	return service.New(deps.Listings, deps.Parties, opts...)
}

// NewInMemoryDependencies returns in-process stores for local runs and tests.
func NewInMemoryDependencies(logger *slog.Logger) Dependencies {
	return Dependencies{
		Listings: listingstore.NewInMemoryStore(),
		Parties:  partystore.NewInMemoryStore(),
		Logger:   logger,
	}
}

// HandlerConfig configures the HTTP surface.
type HandlerConfig struct {
	Validator      middleware.CallerValidator
	Metrics        *platformmetrics.Metrics
	RequestTimeout time.Duration
}

// NewHandler exposes svc over HTTP.
func NewHandler(svc handler.Service, logger *slog.Logger, cfg HandlerConfig) *handler.Handler {
	return handler.New(svc, logger, cfg.Metrics, cfg.Validator, cfg.RequestTimeout)
}
