package errors

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	TransactionNotValid            ErrorCode = "transaction_not_valid"
	TransactionNotFound            ErrorCode = "transaction_not_found"
	TransactionAlreadyExists       ErrorCode = "transaction_already_exists"
	TransactionAlreadyUnderDispute ErrorCode = "transaction_already_under_dispute"
	TransactionNotDisputable       ErrorCode = "transaction_not_disputable"
	TransactionAccessDenied        ErrorCode = "transaction_access_denied"
	InsufficientAvailableFunds     ErrorCode = "insufficient_available_funds"
	InsufficientHeldFunds          ErrorCode = "insufficient_held_funds"
	AccountLocked                  ErrorCode = "account_locked"
	StorageFailure                 ErrorCode = "storage_failure"
)

// ProcessingError is the error type for every failure arising from processing
// a single transaction. Errors are contained to the record that caused them;
// only StorageFailure indicates a corrupted run.
type ProcessingError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewProcessingError(code ErrorCode, message string) *ProcessingError {
	return &ProcessingError{
		Code:    code,
		Message: message,
	}
}

func NewProcessingErrorf(code ErrorCode, format string, args ...interface{}) *ProcessingError {
	return &ProcessingError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// CodeOf extracts the error code, or the empty string for a non-processing
// error.
func CodeOf(err error) ErrorCode {
	var procErr *ProcessingError
	if errors.As(err, &procErr) {
		return procErr.Code
	}
	return ""
}

// IsFatal reports whether the error indicates a corrupted run rather than a
// rejected record.
func IsFatal(err error) bool {
	return CodeOf(err) == StorageFailure
}
