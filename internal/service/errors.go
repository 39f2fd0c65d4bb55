package service

import "errors"

var (
	// ErrLockContention is returned when another create for the same payment ID holds the lock.
	ErrLockContention = errors.New("payment is currently being processed")

	// ErrLockUnavailable is returned when the lock backend cannot be reached.
	ErrLockUnavailable = errors.New("payment lock unavailable")

	// ErrDuplicatePaymentID is returned when the payment ID is already recorded.
	ErrDuplicatePaymentID = errors.New("payment id already used")

	// ErrPaymentNotFound is returned when looking up an unknown payment ID.
	ErrPaymentNotFound = errors.New("no payment exists for this payment id")

	// ErrNoPriorPayment is returned when a webhook references an unknown payment ID.
	ErrNoPriorPayment = errors.New("no prior payment for this id")

	// ErrTerminalStatus is returned when a guarded webhook tries to leave a terminal status.
	ErrTerminalStatus = errors.New("payment already in a terminal status")

	// ErrInvalidPaymentID is returned when payment ID is empty.
	ErrInvalidPaymentID = errors.New("invalid payment id")

	// ErrInvalidPaymentAmount is returned when payment amount is not positive.
	ErrInvalidPaymentAmount = errors.New("invalid payment amount")

	// ErrUnsupportedCurrency is returned when the currency is not an accepted ISO 4217 code.
	ErrUnsupportedCurrency = errors.New("currency is not a supported ISO 4217 code")

	// ErrInvalidParty is returned when sender or receiver is empty.
	ErrInvalidParty = errors.New("sender and receiver are required")

	// ErrInvalidStatus is returned when a webhook carries a non-terminal or unknown status.
	ErrInvalidStatus = errors.New("status must be SUCCESS or FAILED")
)
