package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"foodsupply/internal/platform/config"
	"foodsupply/internal/platform/kafka"
	"foodsupply/internal/platform/redis"
	"foodsupply/internal/supply/service"
	listingstore "foodsupply/internal/supply/store/listing"
	"foodsupply/internal/supply/store/migrations"
	partystore "foodsupply/internal/supply/store/party"
	audit "foodsupply/pkg/platform/audit"
	auditmemory "foodsupply/pkg/platform/audit/store/memory"
	auditpostgres "foodsupply/pkg/platform/audit/store/postgres"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// auditTopicPartitions and auditTopicReplication size the audit topic when
// the server has to create it.
const (
	auditTopicPartitions  = 3
	auditTopicReplication = 1
)

// backends holds the stores selected by configuration and the resources
// that must be released on shutdown.
type backends struct {
	listings service.ListingStore
	parties  service.PartyDirectory
	tx       service.StoreTx
	audit    audit.Store

	db    *sql.DB
	redis *redis.Client
	kafka *kafka.Producer
}

func openBackends(ctx context.Context, cfg config.Config, logger *slog.Logger) (*backends, error) {
	b := &backends{}
	switch cfg.Store {
	case config.StoreMemory:
		b.listings = listingstore.NewInMemoryStore()
		b.parties = partystore.NewInMemoryStore()
	case config.StorePostgres, config.StoreRedis:
		db, err := openPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		b.db = db
		b.parties = partystore.NewPostgresStore(db)
		if cfg.Store == config.StorePostgres {
			b.listings = listingstore.NewPostgresStore(db)
			b.tx = newSupplyPostgresTx(db)
			break
		}
		client, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			b.close(ctx, logger)
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		b.redis = client
		b.listings = listingstore.NewRedisStore(client.Client)
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}

	sink, err := b.openAuditSink(ctx, cfg, logger)
	if err != nil {
		b.close(ctx, logger)
		return nil, err
	}
	b.audit = sink
	return b, nil
}

func openPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := migrations.Apply(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// openAuditSink prefers Kafka, then the audit_events table, then memory.
func (b *backends) openAuditSink(ctx context.Context, cfg config.Config, logger *slog.Logger) (audit.Store, error) {
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
		if err != nil {
			return nil, err
		}
		if err := producer.Ping(ctx); err != nil {
			_ = producer.Close(ctx)
			return nil, fmt.Errorf("ping kafka: %w", err)
		}
		if err := producer.EnsureTopic(ctx, auditTopicPartitions, auditTopicReplication); err != nil {
			_ = producer.Close(ctx)
			return nil, fmt.Errorf("ensure audit topic: %w", err)
		}
		b.kafka = producer
		logger.Info("audit events published to kafka", "topic", cfg.Kafka.AuditTopic)
		return producer, nil
	}
	if b.db != nil {
		return auditpostgres.New(b.db), nil
	}
	return auditmemory.NewInMemoryStore(), nil
}

// health reports the first unreachable backend.
func (b *backends) health(ctx context.Context) error {
	if b.db != nil {
		if err := b.db.PingContext(ctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
	}
	if b.redis != nil {
		if err := b.redis.Health(ctx); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	if b.kafka != nil {
		if err := b.kafka.Ping(ctx); err != nil {
			return fmt.Errorf("kafka: %w", err)
		}
	}
	return nil
}

func (b *backends) close(ctx context.Context, logger *slog.Logger) {
	var errs []error
	if b.kafka != nil {
		errs = append(errs, b.kafka.Close(ctx))
	}
	if b.redis != nil {
		errs = append(errs, b.redis.Close())
	}
	if b.db != nil {
		errs = append(errs, b.db.Close())
	}
	if err := errors.Join(errs...); err != nil {
		logger.Error("failed to release backends", "error", err)
	}
}
