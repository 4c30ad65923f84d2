package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrUnbalanced indicates that a journal entry's debits and credits do not match.
var ErrUnbalanced = errors.New("journal entry is not balanced")

// ErrInsufficientBalance indicates that a balance mutation would breach the
// account's floor (zero, minimum balance, or credit limit).
var ErrInsufficientBalance = errors.New("insufficient balance")

// ErrApprovalRequired indicates that a journal entry needs approval before it can post.
var ErrApprovalRequired = errors.New("approval required")

// ErrImmutabilityViolation indicates an attempt to mutate an append-only record.
var ErrImmutabilityViolation = errors.New("audit records are immutable")

// ErrProcessingFailed wraps an atomic-unit abort during transaction processing.
var ErrProcessingFailed = errors.New("transaction processing failed")

// ErrConflict indicates the operation is not legal in the entity's current state.
var ErrConflict = errors.New("operation conflicts with current state")

// Error codes returned to callers in failure responses.
const (
	CodeValidation           = "VALIDATION_ERROR"
	CodeAccountNotFound      = "ACCOUNT_NOT_FOUND"
	CodeUnbalancedEntry      = "UNBALANCED_JOURNAL_ENTRY"
	CodeInsufficientBalance  = "INSUFFICIENT_BALANCE"
	CodeApprovalRequired     = "APPROVAL_REQUIRED"
	CodeImmutabilityViolated = "IMMUTABILITY_VIOLATION"
	CodeProcessingFailed     = "TRANSACTION_PROCESSING_FAILED"
	CodeInternal             = "INTERNAL_ERROR"
)

// AppError carries a stable error code alongside the HTTP status and cause.
type AppError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates an AppError with an internal code.
func NewAppError(status int, message string, err error) *AppError {
	return &AppError{Status: status, Code: CodeInternal, Message: message, Err: err}
}

// CodeFor maps a sentinel error to its stable external code.
func CodeFor(err error) string {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrDuplicate):
		return CodeValidation
	case errors.Is(err, ErrNotFound):
		return CodeAccountNotFound
	case errors.Is(err, ErrUnbalanced):
		return CodeUnbalancedEntry
	case errors.Is(err, ErrInsufficientBalance):
		return CodeInsufficientBalance
	case errors.Is(err, ErrApprovalRequired):
		return CodeApprovalRequired
	case errors.Is(err, ErrImmutabilityViolation):
		return CodeImmutabilityViolated
	case errors.Is(err, ErrProcessingFailed):
		return CodeProcessingFailed
	default:
		return CodeInternal
	}
}
