package errors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Domain errors
var (
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInvalidRange         = errors.New("invalid range")
	ErrInsufficientFunds    = errors.New("insufficient bank funds")
	ErrInvalidState         = errors.New("invalid state for requested action")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrNotFound             = errors.New("not found")
	ErrLoanAlreadySettled   = errors.New("loan is already fully paid")
	ErrAmountExceedsBalance = errors.New("amount exceeds remaining balance")
	ErrUnauthorized         = errors.New("actor is not allowed to perform this action")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeInvalidAmount        = "INVALID_AMOUNT"
	ErrCodeInvalidRange         = "INVALID_RANGE"
	ErrCodeInsufficientFunds    = "INSUFFICIENT_FUNDS"
	ErrCodeInvalidState         = "INVALID_STATE"
	ErrCodeInvalidTransition    = "INVALID_TRANSITION"
	ErrCodeNotFound             = "NOT_FOUND"
	ErrCodeLoanAlreadySettled   = "LOAN_ALREADY_SETTLED"
	ErrCodeAmountExceedsBalance = "AMOUNT_EXCEEDS_BALANCE"
	ErrCodeUnauthorized         = "UNAUTHORIZED"
	ErrCodeDatabaseError        = "DATABASE_ERROR"
)

// Wrap common errors with business context

func WrapInvalidAmount(amount decimal.Decimal) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidAmount,
		fmt.Sprintf("Amount %s must be greater than zero", amount.StringFixed(2)),
		ErrInvalidAmount,
	)
}

func WrapInvalidRange(message string) *BusinessError {
	return NewBusinessError(ErrCodeInvalidRange, message, ErrInvalidRange)
}

func WrapInsufficientFunds(requested, available decimal.Decimal) *BusinessError {
	return NewBusinessError(
		ErrCodeInsufficientFunds,
		fmt.Sprintf("Requested %s exceeds available bank funds %s", requested.StringFixed(2), available.StringFixed(2)),
		ErrInsufficientFunds,
	)
}

func WrapInvalidState(entity, id, status string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidState,
		fmt.Sprintf("%s %s is in status %q", entity, id, status),
		ErrInvalidState,
	)
}

func WrapInvalidTransition(id, status string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidTransition,
		fmt.Sprintf("Loan request %s cannot leave terminal status %q", id, status),
		ErrInvalidTransition,
	)
}

func WrapNotFound(entity, id string) *BusinessError {
	return NewBusinessError(
		ErrCodeNotFound,
		fmt.Sprintf("%s %s not found", entity, id),
		ErrNotFound,
	)
}

func WrapLoanAlreadySettled(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanAlreadySettled,
		fmt.Sprintf("Loan %s has already been fully paid", loanID),
		ErrLoanAlreadySettled,
	)
}

func WrapAmountExceedsBalance(amount, remaining decimal.Decimal) *BusinessError {
	return NewBusinessError(
		ErrCodeAmountExceedsBalance,
		fmt.Sprintf("Payment %s exceeds the remaining balance of %s", amount.StringFixed(2), remaining.StringFixed(2)),
		ErrAmountExceedsBalance,
	)
}

func WrapUnauthorized(message string) *BusinessError {
	return NewBusinessError(ErrCodeUnauthorized, message, ErrUnauthorized)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

// CodeOf extracts the business error code, or DATABASE_ERROR for
// anything unrecognized.
func CodeOf(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ErrCodeDatabaseError
}
