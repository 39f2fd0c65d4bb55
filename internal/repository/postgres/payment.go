package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"payments/internal/domain"
	"payments/internal/repository"
)

// PaymentRepository is a PostgreSQL implementation of repository.PaymentRepository.
type PaymentRepository struct {
	q Querier
}

// NewPaymentRepository creates a new PostgreSQL payment repository.
// q is usually a *sql.DB; a *sql.Tx works as well.
func NewPaymentRepository(q Querier) *PaymentRepository {
	return &PaymentRepository{q: q}
}

// Insert persists a new payment.
func (r *PaymentRepository) Insert(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (payment_id, status, sender, receiver, currency, amount)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := r.q.QueryRowContext(ctx, query,
		payment.PaymentID,
		payment.Status,
		payment.Sender,
		payment.Receiver,
		payment.Currency,
		payment.Amount,
	).Scan(&payment.ID, &payment.CreatedAt, &payment.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("insert payment %s: %w", payment.PaymentID, err)
	}

	return nil
}

// FindByPaymentID retrieves a payment by its business identifier.
func (r *PaymentRepository) FindByPaymentID(ctx context.Context, paymentID string) (*domain.Payment, error) {
	query := `
		SELECT id, payment_id, status, sender, receiver, currency, amount, created_at, updated_at
		FROM payments WHERE payment_id = $1
	`

	var payment domain.Payment
	err := r.q.QueryRowContext(ctx, query, paymentID).Scan(
		&payment.ID,
		&payment.PaymentID,
		&payment.Status,
		&payment.Sender,
		&payment.Receiver,
		&payment.Currency,
		&payment.Amount,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &payment, nil
}

// UpdateStatus overwrites the status of a payment.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, paymentID string, status domain.PaymentStatus) error {
	query := `UPDATE payments SET status = $1, updated_at = NOW() WHERE payment_id = $2`

	result, err := r.q.ExecContext(ctx, query, status, paymentID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// CompareAndSetStatus sets the status only if the stored value equals current.
func (r *PaymentRepository) CompareAndSetStatus(ctx context.Context, paymentID string, current, next domain.PaymentStatus) (bool, error) {
	query := `UPDATE payments SET status = $1, updated_at = NOW() WHERE payment_id = $2 AND status = $3`

	result, err := r.q.ExecContext(ctx, query, next, paymentID, current)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected == 1, nil
}
