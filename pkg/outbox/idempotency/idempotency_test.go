package idempotency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	keys        map[string]bool
	setNXError  error
	lastTTL     time.Duration
	lastDeleted string
}

func newFakeStore() *fakeStore {
	return &fakeStore{keys: map[string]bool{}}
}

func (f *fakeStore) SetNX(_ context.Context, key string, _ any, ttl time.Duration) (bool, error) {
	if f.setNXError != nil {
		return false, f.setNXError
	}
	f.lastTTL = ttl
	if f.keys[key] {
		return false, nil
	}
	f.keys[key] = true
	return true, nil
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.keys, key)
		f.lastDeleted = key
	}
	return nil
}

func (f *fakeStore) ProcessedEventKey(consumer, eventID string) string {
	return "sd:consumer:" + consumer + ":event:" + eventID
}

func TestCheckAndMarkProcessed(t *testing.T) {
	store := newFakeStore()
	manager, err := NewManager(store, time.Hour)
	require.NoError(t, err)

	ctx := context.Background()
	eventID := uuid.New()

	seen, err := manager.CheckAndMarkProcessed(ctx, "notifications", eventID)
	require.NoError(t, err)
	require.False(t, seen)
	require.Equal(t, time.Hour, store.lastTTL)

	seen, err = manager.CheckAndMarkProcessed(ctx, "notifications", eventID)
	require.NoError(t, err)
	require.True(t, seen)

	seen, err = manager.CheckAndMarkProcessed(ctx, "audit", eventID)
	require.NoError(t, err)
	require.False(t, seen, "markers are scoped per consumer")
}

func TestReleaseAllowsReprocessing(t *testing.T) {
	store := newFakeStore()
	manager, err := NewManager(store, time.Minute)
	require.NoError(t, err)

	ctx := context.Background()
	eventID := uuid.New()

	_, err = manager.CheckAndMarkProcessed(ctx, "notifications", eventID)
	require.NoError(t, err)
	require.NoError(t, manager.Release(ctx, "notifications", eventID))
	require.Equal(t, "sd:consumer:notifications:event:"+eventID.String(), store.lastDeleted)

	seen, err := manager.CheckAndMarkProcessed(ctx, "notifications", eventID)
	require.NoError(t, err)
	require.False(t, seen)
}

func TestManagerValidation(t *testing.T) {
	_, err := NewManager(nil, time.Minute)
	require.Error(t, err)
	_, err = NewManager(newFakeStore(), -time.Second)
	require.Error(t, err)

	manager, err := NewManager(newFakeStore(), time.Minute)
	require.NoError(t, err)
	_, err = manager.CheckAndMarkProcessed(context.Background(), "  ", uuid.New())
	require.ErrorIs(t, err, ErrNoConsumer)
	_, err = manager.CheckAndMarkProcessed(context.Background(), "notifications", uuid.Nil)
	require.ErrorIs(t, err, ErrNoEventID)
}

func TestZeroTTLFallsBackToDefault(t *testing.T) {
	store := newFakeStore()
	manager, err := NewManager(store, 0)
	require.NoError(t, err)

	_, err = manager.CheckAndMarkProcessed(context.Background(), "notifications", uuid.New())
	require.NoError(t, err)
	require.Equal(t, DefaultTTL, store.lastTTL)
}

func TestCheckAndMarkProcessedPropagatesStoreError(t *testing.T) {
	store := newFakeStore()
	store.setNXError = errors.New("redis down")
	manager, err := NewManager(store, time.Minute)
	require.NoError(t, err)

	_, err = manager.CheckAndMarkProcessed(context.Background(), "notifications", uuid.New())
	require.ErrorIs(t, err, store.setNXError)
}
