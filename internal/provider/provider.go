// Package provider abstracts the external settlement provider.
//
// Submit only starts settlement: the outcome arrives later through the
// provider's webhook. QueryStatus is the synchronous polling fallback.
package provider

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"payments/internal/domain"
)

// ErrProviderUnavailable is returned when the provider cannot be reached or rejects the call.
var ErrProviderUnavailable = errors.New("payment provider unavailable")

// Gateway is the capability every provider variant implements.
type Gateway interface {
	// Name identifies the variant in logs.
	Name() string

	// Submit initiates settlement and returns a provisional PROCESSING result.
	Submit(ctx context.Context, req SubmissionRequest) (*SubmissionResult, error)

	// QueryStatus returns the provider-side status of a payment.
	QueryStatus(ctx context.Context, paymentID string) (*StatusResult, error)
}

// SubmissionRequest is what the provider needs to settle a payment.
type SubmissionRequest struct {
	PaymentID string
	Sender    string
	Receiver  string
	Currency  string
	Amount    decimal.Decimal
}

// SubmissionResult is the provider's immediate answer to Submit.
type SubmissionResult struct {
	PaymentID string
	Status    domain.PaymentStatus
	Currency  string
	Amount    decimal.Decimal
}

// StatusResult is the provider's answer to QueryStatus.
type StatusResult struct {
	PaymentID string
	Status    domain.PaymentStatus
}
