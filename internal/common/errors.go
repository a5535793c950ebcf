// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Ledger Service errors.
	ErrNotFound         = errors.New("not found")
	ErrLedgerConnection = errors.New("ledger service connection failed")

	// Reconciliation errors.
	ErrMutationPending  = errors.New("mutation already in flight for this transaction")
	ErrAlreadyApproved  = errors.New("candidate already approved")
	ErrNothingToResolve = errors.New("no pending update to resolve")

	// ErrStaleCache marks a refresh failure after a write the ledger
	// already accepted. The mutation itself succeeded; only the local
	// view is behind.
	ErrStaleCache = errors.New("local cache is stale")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// IsNotFound reports whether err indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsRetryable determines if an error should trigger a retry.
func IsRetryable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}
