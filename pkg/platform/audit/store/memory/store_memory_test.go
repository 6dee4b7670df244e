package memory

import (
	"context"
	"testing"

	audit "foodsupply/pkg/platform/audit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	require.NoError(t, store.Append(ctx, audit.Event{Action: "listing_created", ListingID: "L1"}))
	require.NoError(t, store.Append(ctx, audit.Event{Action: "party_registered", PartyID: "s1"}))
	require.NoError(t, store.Append(ctx, audit.Event{Action: "listing_transferred", ListingID: "L1"}))
	require.NoError(t, store.Append(ctx, audit.Event{Action: "listing_created", ListingID: "L2"}))

	trail, err := store.ListByListing(ctx, "L1")
	require.NoError(t, err)
	require.Len(t, trail, 2)
	assert.Equal(t, "listing_created", trail[0].Action)
	assert.Equal(t, "listing_transferred", trail[1].Action)

	trail, err = store.ListByListing(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, trail)
}
