package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultPaymentCacheTTL bounds how long a payment view may be served from cache.
const DefaultPaymentCacheTTL = 30 * time.Second

const (
	paymentCachePrefix   = "cache:payment:"
	paymentVersionPrefix = "cache:payment-version:"

	// paymentVersionTTL must outlive any in-flight cache fill.
	paymentVersionTTL = 24 * time.Hour
)

// CacheStore handles payment view caching in Redis.
// The record store stays authoritative; entries are invalidated on status change.
type CacheStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCacheStore creates a new CacheStore. A non-positive ttl uses DefaultPaymentCacheTTL.
func NewCacheStore(client *redis.Client, ttl time.Duration) *CacheStore {
	if ttl <= 0 {
		ttl = DefaultPaymentCacheTTL
	}
	return &CacheStore{client: client, ttl: ttl}
}

// CachedPayment represents a cached payment view.
type CachedPayment struct {
	PaymentID string  `json:"payment_id"`
	Status    string  `json:"status"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	Sender    string  `json:"sender"`
	Receiver  string  `json:"receiver"`
}

// GetPayment retrieves a payment view from cache. Returns nil on a miss.
func (s *CacheStore) GetPayment(ctx context.Context, paymentID string) (*CachedPayment, error) {
	data, err := s.client.Get(ctx, paymentCachePrefix+paymentID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var payment CachedPayment
	if err := json.Unmarshal(data, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

// Version returns the invalidation counter for a payment. Read it before
// loading the record that will be cached and pass it to SetPayment.
func (s *CacheStore) Version(ctx context.Context, paymentID string) (int64, error) {
	v, err := s.client.Get(ctx, paymentVersionPrefix+paymentID).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// SetPayment stores a payment view unless the payment was invalidated after
// version was read. Returns false when the write was skipped.
func (s *CacheStore) SetPayment(ctx context.Context, payment *CachedPayment, version int64) (bool, error) {
	data, err := json.Marshal(payment)
	if err != nil {
		return false, err
	}

	versionKey := paymentVersionPrefix + payment.PaymentID
	stored := false
	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, versionKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, paymentCachePrefix+payment.PaymentID, data, s.ttl)
			return nil
		})
		if err == nil {
			stored = true
		}
		return err
	}, versionKey)
	if errors.Is(err, redis.TxFailedErr) {
		return false, nil // Invalidated concurrently.
	}
	return stored, err
}

// InvalidatePayment removes a payment view from cache and bumps its version so
// that fills started before the invalidation are discarded.
func (s *CacheStore) InvalidatePayment(ctx context.Context, paymentID string) error {
	versionKey := paymentVersionPrefix + paymentID
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, paymentCachePrefix+paymentID)
		pipe.Incr(ctx, versionKey)
		pipe.Expire(ctx, versionKey, paymentVersionTTL)
		return nil
	})
	return err
}
