package repository

import (
	"context"

	"payments/internal/domain"
)

// PaymentRepository defines the persistence operations for payments.
type PaymentRepository interface {
	// Insert persists a new payment and fills in ID, CreatedAt and UpdatedAt.
	// Returns ErrConflict if the payment ID is already used.
	Insert(ctx context.Context, payment *domain.Payment) error

	// FindByPaymentID retrieves a payment by its business identifier.
	// Returns ErrNotFound if no payment exists with the given ID.
	FindByPaymentID(ctx context.Context, paymentID string) (*domain.Payment, error)

	// UpdateStatus overwrites the status of a payment.
	UpdateStatus(ctx context.Context, paymentID string, status domain.PaymentStatus) error

	// CompareAndSetStatus sets the status to next only if it currently equals current.
	// Returns false when the stored status did not match.
	CompareAndSetStatus(ctx context.Context, paymentID string, current, next domain.PaymentStatus) (bool, error)
}
