package listing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"foodsupply/internal/supply/models"
	id "foodsupply/pkg/domain"
	"foodsupply/pkg/platform/sentinel"

	"github.com/redis/go-redis/v9"
)

const (
	// Redis key prefix for listing documents
	listingKeyPrefix = "supply:listing:"

	maxWatchRetries = 3
)

// RedisStore keeps each listing as a JSON document. Conditional writes use
// WATCH/MULTI so a concurrent writer aborts the transaction.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func listingKey(listingID id.ListingID) string {
	return listingKeyPrefix + listingID.String()
}

func (s *RedisStore) Create(ctx context.Context, listing *models.Listing) error {
	doc := listing.Clone()
	doc.Version = 1
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal listing: %w", err)
	}
	created, err := s.client.SetNX(ctx, listingKey(listing.ID), payload, 0).Result()
	if err != nil {
		return fmt.Errorf("create listing: %w", err)
	}
	if !created {
		return fmt.Errorf("listing %s: %w", listing.ID, sentinel.ErrAlreadyUsed)
	}
	listing.Version = 1
	return nil
}

func (s *RedisStore) FindByID(ctx context.Context, listingID id.ListingID) (*models.Listing, error) {
	return s.get(ctx, s.client, listingID)
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *RedisStore) get(ctx context.Context, c getter, listingID id.ListingID) (*models.Listing, error) {
	payload, err := c.Get(ctx, listingKey(listingID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("listing %s: %w", listingID, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get listing: %w", err)
	}
	var listing models.Listing
	if err := json.Unmarshal(payload, &listing); err != nil {
		return nil, fmt.Errorf("unmarshal listing: %w", err)
	}
	return &listing, nil
}

func (s *RedisStore) Update(ctx context.Context, listing *models.Listing) error {
	key := listingKey(listing.ID)
	next := listing.Clone()
	next.Version = listing.Version + 1
	payload, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("marshal listing: %w", err)
	}

	txf := func(tx *redis.Tx) error {
		current, err := s.get(ctx, tx, listing.ID)
		if err != nil {
			return err
		}
		if current.Version != listing.Version {
			return fmt.Errorf("listing %s at version %d, have %d: %w", listing.ID, current.Version, listing.Version, sentinel.ErrConflict)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			return nil
		})
		return err
	}

	// A TxFailedErr means the key changed between WATCH and EXEC. Re-read so a
	// stale caller sees ErrConflict and an untouched-but-raced key retries.
	for attempt := 0; attempt < maxWatchRetries; attempt++ {
		err = s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return err
		}
		listing.Version = next.Version
		return nil
	}
	return fmt.Errorf("listing %s: %w", listing.ID, sentinel.ErrConflict)
}
