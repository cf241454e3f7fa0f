package domain

import "errors"

// Business rule violations. All of them are permanent: the requested state
// change is rejected and the enclosing transaction is rolled back.
var (
	ErrSpaceUnavailable                 = errors.New("space is unavailable for the requested interval")
	ErrInactiveUserCannotBook           = errors.New("inactive user cannot book")
	ErrPendingPaymentsBlockDeactivation = errors.New("user has pending payments")
	ErrReservationNotFound              = errors.New("reservation not found")
	ErrPaymentNotFound                  = errors.New("payment not found")
	ErrReservationAlreadyClosed         = errors.New("reservation is already closed")
	ErrPaymentNotPending                = errors.New("payment is not pending")

	ErrUserNotFound    = errors.New("user not found")
	ErrSpaceNotFound   = errors.New("space not found")
	ErrInvalidInterval = errors.New("invalid reservation interval")
	ErrAlreadyExists   = errors.New("already exists")
	ErrUserHasHistory  = errors.New("user has reservation history")
	ErrInvalidInput    = errors.New("invalid input")
)
