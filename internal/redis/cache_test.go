package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheStore_SetGetInvalidate(t *testing.T) {
	t.Parallel()

	_, client := newTestClient(t)
	store := NewCacheStore(client, time.Minute)
	ctx := context.Background()

	miss, err := store.GetPayment(ctx, "p-1")
	require.NoError(t, err)
	assert.Nil(t, miss)

	stored, err := store.SetPayment(ctx, &CachedPayment{
		PaymentID: "p-1",
		Status:    "PROCESSING",
		Amount:    123.45,
		Currency:  "USD",
		Sender:    "mike@gmail.com",
		Receiver:  "nick@gmail.com",
	}, 0)
	require.NoError(t, err)
	require.True(t, stored)

	hit, err := store.GetPayment(ctx, "p-1")
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, 123.45, hit.Amount)
	assert.Equal(t, "PROCESSING", hit.Status)

	require.NoError(t, store.InvalidatePayment(ctx, "p-1"))

	miss, err = store.GetPayment(ctx, "p-1")
	require.NoError(t, err)
	assert.Nil(t, miss)
}

func TestCacheStore_EntriesExpire(t *testing.T) {
	t.Parallel()

	mr, client := newTestClient(t)
	store := NewCacheStore(client, 10*time.Second)
	ctx := context.Background()

	_, err := store.SetPayment(ctx, &CachedPayment{PaymentID: "p-1", Status: "SUCCESS"}, 0)
	require.NoError(t, err)
	mr.FastForward(11 * time.Second)

	miss, err := store.GetPayment(ctx, "p-1")
	require.NoError(t, err)
	assert.Nil(t, miss)
}

func TestCacheStore_FillStartedBeforeInvalidationIsDiscarded(t *testing.T) {
	t.Parallel()

	_, client := newTestClient(t)
	store := NewCacheStore(client, time.Minute)
	ctx := context.Background()

	version, err := store.Version(ctx, "p-1")
	require.NoError(t, err)

	// A status change lands between the record read and the cache fill.
	require.NoError(t, store.InvalidatePayment(ctx, "p-1"))

	stored, err := store.SetPayment(ctx, &CachedPayment{PaymentID: "p-1", Status: "PROCESSING"}, version)
	require.NoError(t, err)
	assert.False(t, stored)

	miss, err := store.GetPayment(ctx, "p-1")
	require.NoError(t, err)
	assert.Nil(t, miss)

	fresh, err := store.Version(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, version+1, fresh)

	stored, err = store.SetPayment(ctx, &CachedPayment{PaymentID: "p-1", Status: "SUCCESS"}, fresh)
	require.NoError(t, err)
	assert.True(t, stored)
}
