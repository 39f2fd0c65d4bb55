// Package events publishes payment lifecycle events.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"payments/internal/domain"
)

// StatusChanged is emitted after a webhook updates a payment's status.
type StatusChanged struct {
	EventID    string               `json:"event_id"`
	PaymentID  string               `json:"payment_id"`
	From       domain.PaymentStatus `json:"from"`
	To         domain.PaymentStatus `json:"to"`
	OccurredAt time.Time            `json:"occurred_at"`
}

// NewStatusChanged builds a StatusChanged event with a fresh ID.
func NewStatusChanged(paymentID string, from, to domain.PaymentStatus) StatusChanged {
	return StatusChanged{
		EventID:    uuid.New().String(),
		PaymentID:  paymentID,
		From:       from,
		To:         to,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher delivers payment events to downstream consumers.
type Publisher interface {
	PublishStatusChanged(ctx context.Context, evt StatusChanged) error
	Close() error
}

// NoopPublisher discards events. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishStatusChanged(context.Context, StatusChanged) error { return nil }

func (NoopPublisher) Close() error { return nil }

var (
	_ Publisher = NoopPublisher{}
	_ Publisher = (*KafkaPublisher)(nil)
)
