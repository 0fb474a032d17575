/*
errors.go - Centralized error types for the ledger engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  The engine surfaces every error to its caller; nothing is retried or
  swallowed internally.

ERROR CATEGORIES:
  1. Validation errors - malformed or out-of-range input, rejected before
     any write
  2. Not-found errors - referenced entity missing or not owned by the
     caller, rejected before any write
  3. Storage errors - the durable store is unreachable or rejects a write;
     may occur mid-sequence
  4. Partial failures - a multi-step operation stopped after some writes
     already succeeded; carries exactly what was and was not written

USAGE:
  if errors.Is(err, ledger.ErrWalletNotFound) { ... }

  var pf *ledger.PartialFailureError
  if errors.As(err, &pf) { reconcile(pf) }

SEE ALSO:
  - engine.go, debt.go, derived.go: producers of these errors
*/
package ledger

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrWalletNotFound is returned when a referenced wallet doesn't exist
	// or doesn't belong to the caller.
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrTransactionNotFound is returned when a referenced transaction
	// doesn't exist.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrDebtNotFound is returned when a referenced debt doesn't exist.
	ErrDebtNotFound = errors.New("debt not found")

	// ErrCategoryNotFound is returned when a referenced debt category
	// doesn't exist.
	ErrCategoryNotFound = errors.New("debt category not found")

	// ErrTemplateNotFound is returned when a referenced template doesn't
	// exist.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrDuplicateIdempotencyKey is returned when a transaction with the
	// same idempotency key already exists. Expected behavior for retries.
	ErrDuplicateIdempotencyKey = errors.New("duplicate idempotency key")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError is a rejected input. Always recoverable by the caller
// correcting the input; no write has happened.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func validationf(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// StorageError wraps a failure of the durable store: connectivity loss or a
// constraint violation. Any repository call can produce one independently.
type StorageError struct {
	Op  string // repository operation that failed
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// PartialFailureError reports a multi-step operation that failed after some
// writes already committed. The repository is not transactional across rows,
// so the engine cannot roll back; it reports the exact partial state for
// manual reconciliation instead. Callers must not retry blindly: the failed
// write may have succeeded server-side.
type PartialFailureError struct {
	Op        string // engine operation, e.g. "create_transaction"
	Completed string // what is durably written
	Missing   string // what is not
	Err       error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("%s partially failed: %s committed, %s missing: %v",
		e.Op, e.Completed, e.Missing, e.Err)
}

func (e *PartialFailureError) Unwrap() error { return e.Err }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrWalletNotFound) ||
		errors.Is(err, ErrTransactionNotFound) ||
		errors.Is(err, ErrDebtNotFound) ||
		errors.Is(err, ErrCategoryNotFound) ||
		errors.Is(err, ErrTemplateNotFound)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve) ||
		errors.Is(err, ErrDuplicateIdempotencyKey) ||
		IsNotFound(err)
}

// IsPartialFailure returns true if some writes of a multi-step operation
// committed before the failure. These need reconciliation, not retry.
func IsPartialFailure(err error) bool {
	var pf *PartialFailureError
	return errors.As(err, &pf)
}
