package service_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"payments/internal/domain"
	"payments/internal/events"
	"payments/internal/provider"
	"payments/internal/redis"
	"payments/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK PAYMENT REPOSITORY
// ──────────────────────────────────────────────

// MockPaymentRepository is an in-memory PaymentRepository with a uniqueness
// constraint on PaymentID.
type MockPaymentRepository struct {
	mu       sync.RWMutex
	payments map[string]*domain.Payment
	nextID   int64

	// Counters for verification
	InsertCallCount       int32
	UpdateStatusCallCount int32
	CASCallCount          int32

	// Error injection
	FindError   error
	InsertError error
	UpdateError error

	// InsertDelay holds Insert before the uniqueness check.
	InsertDelay time.Duration

	// FindHook runs after FindByPaymentID has read the record and before it
	// returns. Set it before the repository is shared.
	FindHook func(paymentID string)
}

// NewMockPaymentRepository creates a new mock payment repository.
func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{
		payments: make(map[string]*domain.Payment),
	}
}

// AddPayment seeds a payment.
func (m *MockPaymentRepository) AddPayment(p *domain.Payment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	p.ID = m.nextID
	m.payments[p.PaymentID] = p
}

func (m *MockPaymentRepository) Insert(ctx context.Context, p *domain.Payment) error {
	atomic.AddInt32(&m.InsertCallCount, 1)
	if m.InsertError != nil {
		return m.InsertError
	}
	if m.InsertDelay > 0 {
		time.Sleep(m.InsertDelay)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.payments[p.PaymentID]; exists {
		return repository.ErrConflict
	}
	m.nextID++
	p.ID = m.nextID
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	stored := *p
	m.payments[p.PaymentID] = &stored
	return nil
}

func (m *MockPaymentRepository) FindByPaymentID(ctx context.Context, paymentID string) (*domain.Payment, error) {
	if m.FindError != nil {
		return nil, m.FindError
	}
	m.mu.RLock()
	p, ok := m.payments[paymentID]
	var copy domain.Payment
	if ok {
		copy = *p
	}
	m.mu.RUnlock()

	if m.FindHook != nil {
		m.FindHook(paymentID)
	}
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &copy, nil
}

func (m *MockPaymentRepository) UpdateStatus(ctx context.Context, paymentID string, status domain.PaymentStatus) error {
	atomic.AddInt32(&m.UpdateStatusCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[paymentID]
	if !ok {
		return repository.ErrNotFound
	}
	p.Status = status
	p.UpdatedAt = time.Now()
	return nil
}

func (m *MockPaymentRepository) CompareAndSetStatus(ctx context.Context, paymentID string, current, next domain.PaymentStatus) (bool, error) {
	atomic.AddInt32(&m.CASCallCount, 1)
	if m.UpdateError != nil {
		return false, m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[paymentID]
	if !ok || p.Status != current {
		return false, nil
	}
	p.Status = next
	p.UpdatedAt = time.Now()
	return true, nil
}

// Count returns the number of stored payments.
func (m *MockPaymentRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.payments)
}

// GetPayment returns the stored payment for assertions.
func (m *MockPaymentRepository) GetPayment(paymentID string) *domain.Payment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.payments[paymentID]
	if !ok {
		return nil
	}
	copy := *p
	return &copy
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is an in-memory lock that honours TTL expiry.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]time.Time

	// Counters
	AcquireCallCount int32
	ReleaseCallCount int32

	// Error injection
	AcquireError error
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{
		locks: make(map[string]time.Time),
	}
}

func (m *MockLockStore) TryAcquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if expiry, exists := m.locks[key]; exists && time.Now().Before(expiry) {
		return false, nil // Lock still held.
	}

	m.locks[key] = time.Now().Add(ttl)
	return true, nil
}

func (m *MockLockStore) Release(ctx context.Context, key string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, key)
	return nil
}

// IsLocked reports whether key is held (for test assertions).
func (m *MockLockStore) IsLocked(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	expiry, exists := m.locks[key]
	return exists && time.Now().Before(expiry)
}

// ──────────────────────────────────────────────
// MOCK GATEWAY
// ──────────────────────────────────────────────

// MockGateway records submissions and answers QueryStatus from a table.
type MockGateway struct {
	mu       sync.Mutex
	statuses map[string]domain.PaymentStatus
	amounts  []decimal.Decimal

	// Counters
	SubmitCallCount int32
	QueryCallCount  int32

	// Error injection
	SubmitError error
	QueryError  error

	// SubmitDelay simulates provider latency.
	SubmitDelay time.Duration
}

// NewMockGateway creates a new mock gateway.
func NewMockGateway() *MockGateway {
	return &MockGateway{
		statuses: make(map[string]domain.PaymentStatus),
	}
}

func (m *MockGateway) Name() string { return "mock" }

func (m *MockGateway) Submit(ctx context.Context, req provider.SubmissionRequest) (*provider.SubmissionResult, error) {
	atomic.AddInt32(&m.SubmitCallCount, 1)
	if m.SubmitDelay > 0 {
		time.Sleep(m.SubmitDelay)
	}
	if m.SubmitError != nil {
		return nil, m.SubmitError
	}
	m.mu.Lock()
	m.amounts = append(m.amounts, req.Amount)
	m.mu.Unlock()
	return &provider.SubmissionResult{
		PaymentID: req.PaymentID,
		Status:    domain.PaymentStatusProcessing,
		Currency:  req.Currency,
		Amount:    req.Amount,
	}, nil
}

func (m *MockGateway) QueryStatus(ctx context.Context, paymentID string) (*provider.StatusResult, error) {
	atomic.AddInt32(&m.QueryCallCount, 1)
	if m.QueryError != nil {
		return nil, m.QueryError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	status, ok := m.statuses[paymentID]
	if !ok {
		status = domain.PaymentStatusProcessing
	}
	return &provider.StatusResult{PaymentID: paymentID, Status: status}, nil
}

// SetStatus configures the provider-side status returned by QueryStatus.
func (m *MockGateway) SetStatus(paymentID string, status domain.PaymentStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses[paymentID] = status
}

// SubmittedAmounts returns the amounts passed to Submit.
func (m *MockGateway) SubmittedAmounts() []decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]decimal.Decimal(nil), m.amounts...)
}

// ──────────────────────────────────────────────
// MOCK CACHE
// ──────────────────────────────────────────────

// MockPaymentCache is an in-memory PaymentCacheInterface with versioned fills.
type MockPaymentCache struct {
	mu       sync.Mutex
	entries  map[string]*redis.CachedPayment
	versions map[string]int64

	// Counters
	HitCount        int32
	InvalidateCount int32

	// Error injection
	GetError error
}

// NewMockPaymentCache creates a new mock cache.
func NewMockPaymentCache() *MockPaymentCache {
	return &MockPaymentCache{
		entries:  make(map[string]*redis.CachedPayment),
		versions: make(map[string]int64),
	}
}

func (m *MockPaymentCache) GetPayment(ctx context.Context, paymentID string) (*redis.CachedPayment, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[paymentID]
	if !ok {
		return nil, nil
	}
	atomic.AddInt32(&m.HitCount, 1)
	copy := *entry
	return &copy, nil
}

func (m *MockPaymentCache) Version(ctx context.Context, paymentID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.versions[paymentID], nil
}

func (m *MockPaymentCache) SetPayment(ctx context.Context, payment *redis.CachedPayment, version int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.versions[payment.PaymentID] != version {
		return false, nil
	}
	copy := *payment
	m.entries[payment.PaymentID] = &copy
	return true, nil
}

func (m *MockPaymentCache) InvalidatePayment(ctx context.Context, paymentID string) error {
	atomic.AddInt32(&m.InvalidateCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, paymentID)
	m.versions[paymentID]++
	return nil
}

// Cached returns the cached entry for assertions.
func (m *MockPaymentCache) Cached(paymentID string) *redis.CachedPayment {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[paymentID]
}

// Has reports whether paymentID is cached.
func (m *MockPaymentCache) Has(paymentID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[paymentID]
	return ok
}

// ──────────────────────────────────────────────
// MOCK PUBLISHER
// ──────────────────────────────────────────────

// MockPublisher collects published events.
type MockPublisher struct {
	mu     sync.Mutex
	events []events.StatusChanged

	PublishError error
}

func (m *MockPublisher) PublishStatusChanged(ctx context.Context, evt events.StatusChanged) error {
	if m.PublishError != nil {
		return m.PublishError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, evt)
	return nil
}

func (m *MockPublisher) Close() error { return nil }

// Events returns the published events.
func (m *MockPublisher) Events() []events.StatusChanged {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]events.StatusChanged(nil), m.events...)
}

// ──────────────────────────────────────────────
// HELPER ERRORS
// ──────────────────────────────────────────────

var (
	ErrMockDBDown    = errors.New("mock: database unavailable")
	ErrMockRedisDown = errors.New("mock: redis connection refused")
)
