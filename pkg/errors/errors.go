// Package errors provides common, reusable error values and helpers.
package errors

import (
	"errors"
	"fmt"
)

// Transfer engine errors
var (
	ErrRecipientNotFound      = errors.New("recipient not found")
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrInvalidChannel         = errors.New("invalid transfer channel")
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrSelfTransferNotAllowed = errors.New("cannot transfer to your own account")

	// Verification errors
	ErrContactRequired   = errors.New("phone number required for verification")
	ErrChallengeExpired  = errors.New("verification code expired")
	ErrChallengeRejected = errors.New("verification code rejected")
	ErrChallengeNotFound = errors.New("no active verification challenge")

	// Settlement errors
	ErrSettlementFailed = errors.New("settlement failed")

	// Notifier errors (non-fatal: the transfer flow degrades to on-screen display)
	ErrDeliveryFailed = errors.New("message delivery failed")

	// Attempt lifecycle errors. Settled and failed attempts are discarded,
	// so a late confirmation sees ErrAttemptNotFound.
	ErrAttemptNotFound   = errors.New("transfer attempt not found")
	ErrAttemptNotWaiting = errors.New("transfer attempt is not awaiting verification")

	// Account errors
	ErrAccountNotFound      = errors.New("account not found")
	ErrAccountAlreadyExists = errors.New("account already exists")
)

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
