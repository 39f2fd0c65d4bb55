package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const lockKeyPrefix = "lock:"

// LockStore handles TTL-based mutual exclusion in Redis.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

// TryAcquire sets a marker for key only if none exists, expiring after ttl.
// Returns true if the caller now holds the lock, false if it is already held.
// Any Redis failure is returned as an error and must not be read as "unlocked".
func (s *LockStore) TryAcquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, lockKeyPrefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire lock %s: %w", key, err)
	}

	return ok, nil
}

// Release removes the marker for key before its TTL elapses.
func (s *LockStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, lockKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("release lock %s: %w", key, err)
	}
	return nil
}
