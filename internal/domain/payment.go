package domain

import "time"

// PaymentStatus represents the current status of a payment.
type PaymentStatus string

const (
	PaymentStatusProcessing PaymentStatus = "PROCESSING"
	PaymentStatusSuccess    PaymentStatus = "SUCCESS"
	PaymentStatusFailed     PaymentStatus = "FAILED"
)

// IsTerminal reports whether no further transition is expected from s.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusSuccess || s == PaymentStatusFailed
}

// IsValid reports whether s is one of the known statuses.
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusProcessing, PaymentStatusSuccess, PaymentStatusFailed:
		return true
	}
	return false
}

// Payment is the durable record of a single payment.
type Payment struct {
	ID        int64  // Assigned by the store
	PaymentID string // Business identifier, unique
	Status    PaymentStatus
	Sender    string
	Receiver  string
	Currency  string
	Amount    int64 // Minor units (cents)
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PaymentView is the display projection of a payment returned to callers.
type PaymentView struct {
	Status   PaymentStatus
	Amount   float64 // Major units
	Currency string
	Sender   string
	Receiver string
}
