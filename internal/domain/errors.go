package domain

import "errors"

// Domain errors
var (
	// Validation errors — caller's fault, mapped to 400.
	ErrInvalidAmount          = errors.New("amount must be non-negative")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrCategoryTypeMismatch   = errors.New("transaction type does not match category type")
	ErrCategoryInactive       = errors.New("category is inactive")
	ErrDescriptionRequired    = errors.New("description is required")
	ErrDescriptionTooLong     = errors.New("description exceeds maximum length")
	ErrNotesTooLong           = errors.New("notes exceed maximum length")
	ErrInvalidStatus          = errors.New("invalid transaction status")

	// Lookup failures. Cross-store ids always surface as not-found.
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrBalanceNotFound     = errors.New("balance not found")
	ErrEmployeeNotFound    = errors.New("employee not found")
	ErrStoreNotFound       = errors.New("store not found")

	// ErrInvalidTransition is returned when an approval decision is applied to a
	// transaction that is no longer pending. Both decisions are terminal.
	ErrInvalidTransition = errors.New("transaction is not pending")

	// ErrConsistency means a recomputed balance row violates
	// closing = opening + income - expense. The enclosing transaction must roll
	// back; the ledger has diverged and the error is alert-worthy.
	ErrConsistency = errors.New("balance consistency violation")
)

// Validation constants
const (
	MaxDescriptionLength = 255
	MaxNotesLength       = 1000
)
