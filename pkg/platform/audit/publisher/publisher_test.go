package publisher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	id "foodsupply/pkg/domain"
	audit "foodsupply/pkg/platform/audit"
	"foodsupply/pkg/platform/audit/store/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublisher_SyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	listingID := id.ListingID("L1")
	err := pub.Emit(context.Background(), audit.Event{
		ListingID: listingID,
		Action:    string(audit.EventListingCreated),
	})
	require.NoError(t, err)

	events, err := pub.List(context.Background(), listingID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventListingCreated), events[0].Action)
	assert.Equal(t, audit.CategoryCompliance, events[0].Category)
	assert.NotEmpty(t, events[0].ID)
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(100))

	listingID := id.ListingID("L-async")
	for range 10 {
		err := pub.Emit(context.Background(), audit.Event{
			ListingID: listingID,
			Action:    string(audit.EventListingTransferred),
		})
		require.NoError(t, err)
	}

	pub.Close()

	events, err := store.ListByListing(context.Background(), listingID)
	require.NoError(t, err)
	assert.Len(t, events, 10, "all events should be drained on close")
}

func TestPublisher_BufferFullDropsEvent(t *testing.T) {
	store := &blockingStore{release: make(chan struct{})}
	pub := NewPublisher(store, WithAsyncBuffer(1))

	var wg sync.WaitGroup
	var mu sync.Mutex
	var dropped int
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := pub.Emit(context.Background(), audit.Event{Action: string(audit.EventListingCreated)})
			if errors.Is(err, ErrBufferFull) {
				mu.Lock()
				dropped++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	close(store.release)
	pub.Close()

	assert.Positive(t, dropped, "a single-slot buffer behind a blocked store must drop")
}

func TestPublisher_SetsTimestamp(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	before := time.Now()
	require.NoError(t, pub.Emit(context.Background(), audit.Event{ListingID: "L1", Action: string(audit.EventProductsChecked)}))
	after := time.Now()

	events, err := pub.List(context.Background(), "L1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.False(t, events[0].Timestamp.Before(before))
	assert.False(t, events[0].Timestamp.After(after))
}

func TestPublisher_PreservesExistingTimestamp(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	customTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, pub.Emit(context.Background(), audit.Event{
		ListingID: "L1",
		Action:    string(audit.EventListingCreated),
		Timestamp: customTime,
	}))

	events, err := pub.List(context.Background(), "L1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, customTime, events[0].Timestamp)
}

func TestPublisher_RequiresAction(t *testing.T) {
	pub := NewPublisher(memory.NewInMemoryStore())
	defer pub.Close()
	assert.Error(t, pub.Emit(context.Background(), audit.Event{ListingID: "L1"}))
}

func TestPublisher_ListUnsupported(t *testing.T) {
	pub := NewPublisher(&blockingStore{})
	defer pub.Close()
	_, err := pub.List(context.Background(), "L1")
	assert.Error(t, err)
}

// blockingStore holds every Append until release is closed.
type blockingStore struct {
	release chan struct{}
}

func (s *blockingStore) Append(ctx context.Context, _ audit.Event) error {
	if s.release == nil {
		return nil
	}
	select {
	case <-s.release:
	case <-ctx.Done():
	}
	return nil
}

func TestPublisher_EmitAfterCloseIsRejected(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(4))
	pub.Close()

	var err error
	require.NotPanics(t, func() {
		err = pub.Emit(context.Background(), audit.Event{ListingID: "L1", Action: string(audit.EventListingCreated)})
	})
	assert.ErrorIs(t, err, ErrClosed)

	events, err := store.ListByListing(context.Background(), "L1")
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestPublisher_EmitRacingCloseNeverPanics(t *testing.T) {
	pub := NewPublisher(memory.NewInMemoryStore(), WithAsyncBuffer(8))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				err := pub.Emit(context.Background(), audit.Event{ListingID: "L1", Action: string(audit.EventListingTransferred)})
				if err != nil && !errors.Is(err, ErrClosed) && !errors.Is(err, ErrBufferFull) {
					t.Errorf("unexpected emit error: %v", err)
				}
			}
		}()
	}
	pub.Close()
	wg.Wait()
}
