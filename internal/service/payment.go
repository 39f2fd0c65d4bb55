package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"payments/internal/domain"
	"payments/internal/events"
	"payments/internal/metrics"
	"payments/internal/money"
	"payments/internal/provider"
	"payments/internal/redis"
	"payments/internal/repository"
)

// DefaultLockTTL is used when no lock TTL is configured. It must exceed the
// provider's submission latency, otherwise a second create can pass the lock
// while the first is still submitting.
const DefaultLockTTL = 30 * time.Second

const lockKeyPrefix = "payment:"

// LockKey returns the idempotency lock key for a payment ID.
func LockKey(paymentID string) string {
	return lockKeyPrefix + paymentID
}

// PaymentService admits payments, submits them to the provider at most once
// per payment ID and reconciles provider webhooks into the record store.
// It is the only writer of payment records.
type PaymentService struct {
	paymentRepo   repository.PaymentRepository
	lockStore     redis.LockStoreInterface
	gateway       provider.Gateway
	cache         redis.PaymentCacheInterface
	publisher     events.Publisher
	logger        *zap.Logger
	lockTTL       time.Duration
	guardTerminal bool
}

// Option configures a PaymentService.
type Option func(*PaymentService)

// WithCache serves GetPayment from cache and invalidates entries on status change.
func WithCache(cache redis.PaymentCacheInterface) Option {
	return func(s *PaymentService) { s.cache = cache }
}

// WithPublisher emits a StatusChanged event after every applied webhook.
func WithPublisher(p events.Publisher) Option {
	return func(s *PaymentService) { s.publisher = p }
}

// WithLogger sets the service logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *PaymentService) { s.logger = l }
}

// WithLockTTL sets the idempotency lock TTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(s *PaymentService) {
		if ttl > 0 {
			s.lockTTL = ttl
		}
	}
}

// WithTerminalGuard rejects webhook transitions out of a terminal status.
// Without it webhooks overwrite the status unconditionally, so a late
// FAILED can replace SUCCESS.
func WithTerminalGuard(enabled bool) Option {
	return func(s *PaymentService) { s.guardTerminal = enabled }
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	lockStore redis.LockStoreInterface,
	gateway provider.Gateway,
	opts ...Option,
) *PaymentService {
	s := &PaymentService{
		paymentRepo: paymentRepo,
		lockStore:   lockStore,
		gateway:     gateway,
		publisher:   events.NoopPublisher{},
		logger:      zap.NewNop(),
		lockTTL:     DefaultLockTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("payment")
	return s
}

// CreatePaymentRequest contains the parameters for creating a payment.
type CreatePaymentRequest struct {
	PaymentID string
	Amount    decimal.Decimal // Major units
	Currency  string
	Sender    string
	Receiver  string
}

// CreatePayment admits a new payment and submits it to the provider.
//
// Provider failures do not fail the call: the record stays PROCESSING until a
// webhook or RefreshStatus settles it.
func (s *PaymentService) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*domain.PaymentView, error) {
	if err := validateCreateRequest(req); err != nil {
		metrics.IncCreated("invalid")
		return nil, err
	}

	lockKey := LockKey(req.PaymentID)
	acquired, err := s.lockStore.TryAcquire(ctx, lockKey, s.lockTTL)
	if err != nil {
		metrics.IncCreated("lock_unavailable")
		s.logger.Error("idempotency lock unavailable", zap.String("payment_id", req.PaymentID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrLockUnavailable, err)
	}
	if !acquired {
		metrics.IncCreated("lock_contention")
		return nil, ErrLockContention
	}

	_, err = s.paymentRepo.FindByPaymentID(ctx, req.PaymentID)
	switch {
	case err == nil:
		metrics.IncCreated("duplicate")
		return nil, ErrDuplicatePaymentID
	case !errors.Is(err, repository.ErrNotFound):
		s.releaseLock(ctx, lockKey)
		metrics.IncCreated("error")
		return nil, fmt.Errorf("check payment id: %w", err)
	}

	payment := &domain.Payment{
		PaymentID: req.PaymentID,
		Status:    domain.PaymentStatusProcessing,
		Sender:    req.Sender,
		Receiver:  req.Receiver,
		Currency:  domain.NormalizeCurrency(req.Currency),
		Amount:    money.ToMinorUnits(req.Amount),
	}

	if err := s.paymentRepo.Insert(ctx, payment); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			metrics.IncCreated("duplicate")
			return nil, ErrDuplicatePaymentID
		}
		s.releaseLock(ctx, lockKey)
		metrics.IncCreated("error")
		return nil, fmt.Errorf("insert payment: %w", err)
	}
	metrics.IncCreated("admitted")

	// The record is committed; a client disconnect must not abort the submission.
	s.submit(context.WithoutCancel(ctx), payment, req.Amount)

	return toView(payment), nil
}

func (s *PaymentService) submit(ctx context.Context, payment *domain.Payment, amount decimal.Decimal) {
	res, err := s.gateway.Submit(ctx, provider.SubmissionRequest{
		PaymentID: payment.PaymentID,
		Sender:    payment.Sender,
		Receiver:  payment.Receiver,
		Currency:  payment.Currency,
		Amount:    amount,
	})
	if err != nil {
		metrics.IncSubmission(s.gateway.Name(), "error")
		s.logger.Error("provider submission failed, payment left PROCESSING",
			zap.String("payment_id", payment.PaymentID),
			zap.String("provider", s.gateway.Name()),
			zap.Error(err),
		)
		return
	}

	metrics.IncSubmission(s.gateway.Name(), "accepted")
	s.logger.Info("provider submission accepted",
		zap.String("payment_id", payment.PaymentID),
		zap.String("provider", s.gateway.Name()),
		zap.String("provider_status", string(res.Status)),
	)
}

// GetPayment retrieves a payment by its business identifier.
func (s *PaymentService) GetPayment(ctx context.Context, paymentID string) (*domain.PaymentView, error) {
	if paymentID == "" {
		return nil, ErrInvalidPaymentID
	}

	// The version is read before the store so that a status change landing
	// between the read and the fill voids the fill.
	var (
		version   int64
		cacheable bool
	)
	if s.cache != nil {
		cached, err := s.cache.GetPayment(ctx, paymentID)
		if err != nil {
			s.logger.Warn("payment cache read failed", zap.String("payment_id", paymentID), zap.Error(err))
		} else if cached != nil {
			return fromCached(cached), nil
		}

		version, err = s.cache.Version(ctx, paymentID)
		if err != nil {
			s.logger.Warn("payment cache version read failed", zap.String("payment_id", paymentID), zap.Error(err))
		} else {
			cacheable = true
		}
	}

	payment, err := s.paymentRepo.FindByPaymentID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("find payment: %w", err)
	}

	view := toView(payment)
	if cacheable {
		stored, err := s.cache.SetPayment(ctx, toCached(paymentID, view), version)
		switch {
		case err != nil:
			s.logger.Warn("payment cache write failed", zap.String("payment_id", paymentID), zap.Error(err))
		case !stored:
			s.logger.Debug("payment cache fill skipped, status changed", zap.String("payment_id", paymentID))
		}
	}

	return view, nil
}

// WebhookUpdate is a provider confirmation.
type WebhookUpdate struct {
	PaymentID string
	Status    domain.PaymentStatus
}

// ReconcileResult is the outcome of ReconcileWebhook.
type ReconcileResult struct {
	// Previous is the payment as it was before the update was applied.
	// Callers of the webhook receive this snapshot, not the new status.
	Previous domain.PaymentView

	// Applied is false when a guarded service acknowledged a repeated
	// confirmation without writing.
	Applied bool
}

// ReconcileWebhook applies a provider confirmation to the stored payment.
func (s *PaymentService) ReconcileWebhook(ctx context.Context, update WebhookUpdate) (*ReconcileResult, error) {
	if update.PaymentID == "" {
		return nil, ErrInvalidPaymentID
	}
	if !update.Status.IsTerminal() {
		return nil, ErrInvalidStatus
	}

	s.logger.Info("provider webhook received",
		zap.String("payment_id", update.PaymentID),
		zap.String("status", string(update.Status)),
	)

	existing, err := s.paymentRepo.FindByPaymentID(ctx, update.PaymentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoPriorPayment
		}
		return nil, fmt.Errorf("find payment: %w", err)
	}

	previous := toView(existing)

	applied, err := s.applyStatus(ctx, existing, update.Status)
	if err != nil {
		return nil, err
	}

	return &ReconcileResult{Previous: *previous, Applied: applied}, nil
}

// applyStatus writes next over the stored status of existing.
func (s *PaymentService) applyStatus(ctx context.Context, existing *domain.Payment, next domain.PaymentStatus) (bool, error) {
	from := existing.Status

	if s.guardTerminal {
		if from.IsTerminal() {
			return s.rejectOrAcknowledge(existing.PaymentID, from, next)
		}

		ok, err := s.paymentRepo.CompareAndSetStatus(ctx, existing.PaymentID, from, next)
		if err != nil {
			return false, fmt.Errorf("update payment status: %w", err)
		}
		if !ok {
			// Another writer settled it between our read and write.
			current, err := s.paymentRepo.FindByPaymentID(ctx, existing.PaymentID)
			if err != nil {
				return false, fmt.Errorf("reload payment: %w", err)
			}
			return s.rejectOrAcknowledge(existing.PaymentID, current.Status, next)
		}
	} else {
		if err := s.paymentRepo.UpdateStatus(ctx, existing.PaymentID, next); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return false, ErrNoPriorPayment
			}
			return false, fmt.Errorf("update payment status: %w", err)
		}
		if from.IsTerminal() && from != next {
			s.logger.Warn("terminal payment status overwritten",
				zap.String("payment_id", existing.PaymentID),
				zap.String("from", string(from)),
				zap.String("to", string(next)),
			)
		}
	}

	metrics.IncReconciliation(string(from), string(next), "applied")
	s.invalidateCache(ctx, existing.PaymentID)

	if err := s.publisher.PublishStatusChanged(ctx, events.NewStatusChanged(existing.PaymentID, from, next)); err != nil {
		s.logger.Error("status event publish failed", zap.String("payment_id", existing.PaymentID), zap.Error(err))
	}

	return true, nil
}

func (s *PaymentService) rejectOrAcknowledge(paymentID string, current, next domain.PaymentStatus) (bool, error) {
	if current == next {
		metrics.IncReconciliation(string(current), string(next), "duplicate")
		return false, nil
	}

	metrics.IncReconciliation(string(current), string(next), "rejected")
	s.logger.Warn("webhook rejected for terminal payment",
		zap.String("payment_id", paymentID),
		zap.String("current", string(current)),
		zap.String("requested", string(next)),
	)
	return false, ErrTerminalStatus
}

// RefreshStatus polls the provider for a PROCESSING payment and applies a
// terminal answer through the same path as webhooks. Returns the current view.
func (s *PaymentService) RefreshStatus(ctx context.Context, paymentID string) (*domain.PaymentView, error) {
	if paymentID == "" {
		return nil, ErrInvalidPaymentID
	}

	existing, err := s.paymentRepo.FindByPaymentID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("find payment: %w", err)
	}

	if existing.Status.IsTerminal() {
		return toView(existing), nil
	}

	res, err := s.gateway.QueryStatus(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("query provider status: %w", err)
	}
	if !res.Status.IsTerminal() {
		return toView(existing), nil
	}

	if _, err := s.applyStatus(ctx, existing, res.Status); err != nil && !errors.Is(err, ErrTerminalStatus) {
		return nil, err
	}

	current, err := s.paymentRepo.FindByPaymentID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("reload payment: %w", err)
	}
	return toView(current), nil
}

func (s *PaymentService) releaseLock(ctx context.Context, key string) {
	if err := s.lockStore.Release(ctx, key); err != nil {
		s.logger.Warn("idempotency lock release failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *PaymentService) invalidateCache(ctx context.Context, paymentID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidatePayment(ctx, paymentID); err != nil {
		s.logger.Warn("payment cache invalidation failed", zap.String("payment_id", paymentID), zap.Error(err))
	}
}

// validateCreateRequest validates the create payment request.
func validateCreateRequest(req CreatePaymentRequest) error {
	if strings.TrimSpace(req.PaymentID) == "" {
		return ErrInvalidPaymentID
	}

	if !req.Amount.IsPositive() {
		return ErrInvalidPaymentAmount
	}

	if !domain.IsSupportedCurrency(req.Currency) {
		return ErrUnsupportedCurrency
	}

	if req.Sender == "" || req.Receiver == "" {
		return ErrInvalidParty
	}

	return nil
}
