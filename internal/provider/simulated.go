package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"payments/internal/domain"
	"payments/internal/scheduler"
)

// Defaults for the simulated provider.
const (
	DefaultSubmitDelay   = 300 * time.Millisecond
	DefaultConfirmDelay  = 60 * time.Second
	DefaultQueryDelay    = 200 * time.Millisecond
	DefaultFailureMarker = "fail"
)

// Notifier delivers a confirmation for a payment.
type Notifier interface {
	Notify(ctx context.Context, paymentID string, status domain.PaymentStatus) error
}

// SimulatedConfig configures the simulated provider.
type SimulatedConfig struct {
	SubmitDelay   time.Duration
	ConfirmDelay  time.Duration
	QueryDelay    time.Duration
	FailureMarker string
}

// Simulated is a test-fixture provider. Payment IDs containing the failure
// marker settle as FAILED, all others as SUCCESS. The confirmation is pushed
// through the notifier after ConfirmDelay; delivery failures are logged and
// dropped.
type Simulated struct {
	cfg       SimulatedConfig
	notifier  Notifier
	scheduler *scheduler.Scheduler
	logger    *zap.Logger
}

// NewSimulated creates a simulated provider.
func NewSimulated(cfg SimulatedConfig, notifier Notifier, sched *scheduler.Scheduler, logger *zap.Logger) *Simulated {
	if cfg.FailureMarker == "" {
		cfg.FailureMarker = DefaultFailureMarker
	}
	return &Simulated{
		cfg:       cfg,
		notifier:  notifier,
		scheduler: sched,
		logger:    logger.Named("provider.simulated"),
	}
}

// Name implements Gateway.
func (p *Simulated) Name() string { return VariantSimulated }

// Submit implements Gateway.
func (p *Simulated) Submit(ctx context.Context, req SubmissionRequest) (*SubmissionResult, error) {
	if err := sleep(ctx, p.cfg.SubmitDelay); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	outcome := p.outcomeFor(req.PaymentID)
	_, err := p.scheduler.Schedule(p.cfg.ConfirmDelay, func(ctx context.Context) {
		p.confirm(ctx, req.PaymentID, outcome)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: schedule confirmation: %v", ErrProviderUnavailable, err)
	}

	return &SubmissionResult{
		PaymentID: req.PaymentID,
		Status:    domain.PaymentStatusProcessing,
		Currency:  req.Currency,
		Amount:    req.Amount,
	}, nil
}

// QueryStatus implements Gateway.
func (p *Simulated) QueryStatus(ctx context.Context, paymentID string) (*StatusResult, error) {
	if err := sleep(ctx, p.cfg.QueryDelay); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	return &StatusResult{
		PaymentID: paymentID,
		Status:    p.outcomeFor(paymentID),
	}, nil
}

func (p *Simulated) outcomeFor(paymentID string) domain.PaymentStatus {
	if strings.Contains(paymentID, p.cfg.FailureMarker) {
		return domain.PaymentStatusFailed
	}
	return domain.PaymentStatusSuccess
}

func (p *Simulated) confirm(ctx context.Context, paymentID string, status domain.PaymentStatus) {
	if err := p.notifier.Notify(ctx, paymentID, status); err != nil {
		p.logger.Error("webhook delivery failed",
			zap.String("payment_id", paymentID),
			zap.String("status", string(status)),
			zap.Error(err),
		)
		return
	}

	p.logger.Info("webhook delivered",
		zap.String("payment_id", paymentID),
		zap.String("status", string(status)),
	)
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
