package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	jwttoken "foodsupply/internal/jwt_token"
	"foodsupply/internal/platform/config"
	"foodsupply/internal/platform/httpserver"
	"foodsupply/internal/platform/logger"
	platformmetrics "foodsupply/internal/platform/metrics"
	"foodsupply/internal/platform/middleware"
	"foodsupply/internal/supply"
	"foodsupply/internal/supply/metrics"
	partystore "foodsupply/internal/supply/store/party"
	"foodsupply/pkg/platform/audit/publisher"
	"foodsupply/pkg/platform/httputil"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

// auditBufferSize bounds the async audit queue.
const auditBufferSize = 1024

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

// run wires the stores, the lifecycle service and the HTTP surface, then
// serves until SIGINT or SIGTERM.
func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	b, err := openBackends(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer b.close(context.Background(), log)

	auditPublisher := publisher.NewPublisher(b.audit,
		publisher.WithAsyncBuffer(auditBufferSize),
		publisher.WithLogger(log),
	)
	defer auditPublisher.Close()

	svc := supply.NewService(supply.Dependencies{
		Listings: b.listings,
		Parties:  b.parties,
		Tx:       b.tx,
		Audit:    auditPublisher,
		Metrics:  metrics.New(prometheus.DefaultRegisterer),
		Logger:   log,
	})

	if cfg.PartySeedFile != "" {
		reqs, err := partystore.LoadSeedFile(cfg.PartySeedFile)
		if err != nil {
			return err
		}
		n, err := svc.SeedParties(ctx, reqs)
		if err != nil {
			return fmt.Errorf("seed parties: %w", err)
		}
		log.Info("party directory seeded", "file", cfg.PartySeedFile, "registered", n)
	}

	var validator middleware.CallerValidator
	if cfg.Server.JWTSigningKey != "" {
		validator = jwttoken.NewVerifierAdapter(
			jwttoken.NewVerifier(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer, cfg.Server.JWTAudience))
	} else {
		log.Warn("JWT_SIGNING_KEY not set, mutations are accepted without a caller token")
	}

	router := chi.NewRouter()
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := b.health(r.Context()); err != nil {
			log.WarnContext(r.Context(), "health check failed", "error", err)
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	router.Handle("/metrics", promhttp.Handler())
	supply.NewHandler(svc, log, supply.HandlerConfig{
		Validator:      validator,
		Metrics:        platformmetrics.New(prometheus.DefaultRegisterer),
		RequestTimeout: cfg.Server.RequestTimeout,
	}).Register(router)

	srv := httpserver.New(cfg.Server.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting foodsupply", "addr", cfg.Server.Addr, "store", cfg.Store)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})
	return g.Wait()
}
