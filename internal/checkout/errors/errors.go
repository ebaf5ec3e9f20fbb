package errors

import "errors"

// Messages handed to onError. They are shown to end users verbatim.
var (
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	ErrOrderFailed = errors.New("failed to create payment order")

	ErrVerificationFailed = errors.New("payment verification failed")

	ErrCancelledByUser = errors.New("Payment cancelled by user")

	ErrSubmissionFailed = errors.New("failed to submit registration")

	ErrAlreadyInProgress = errors.New("payment already in progress")

	ErrSessionExpired = errors.New("checkout session expired")
)

var (
	ErrSessionNotFound = errors.New("checkout session not found")

	ErrSessionActive = errors.New("a checkout session is already active for this requester")

	ErrNotAwaitingCheckout = errors.New("checkout is not awaiting a payment outcome")

	ErrInvalidTransition = errors.New("invalid checkout state transition")
)
