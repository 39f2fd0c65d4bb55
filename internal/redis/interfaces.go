package redis

import (
	"context"
	"time"
)

// LockStoreInterface defines the interface for the idempotency lock.
type LockStoreInterface interface {
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// PaymentCacheInterface defines the interface for the payment view cache.
type PaymentCacheInterface interface {
	GetPayment(ctx context.Context, paymentID string) (*CachedPayment, error)
	Version(ctx context.Context, paymentID string) (int64, error)
	SetPayment(ctx context.Context, payment *CachedPayment, version int64) (bool, error)
	InvalidatePayment(ctx context.Context, paymentID string) error
}

// Ensure concrete types implement interfaces.
var (
	_ LockStoreInterface    = (*LockStore)(nil)
	_ PaymentCacheInterface = (*CacheStore)(nil)
)
