// internal/apperrors/errors.go
package apperrors

import (
	"errors"
	"fmt"
)

// ValidationError reports missing or invalid caller input. It is always
// raised before any network or database activity.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// WalletNotConnectedError means no signing context is available for a
// ledger-submitting operation.
type WalletNotConnectedError struct{}

func (e *WalletNotConnectedError) Error() string {
	return "wallet not connected: no signing address available"
}

// InvalidAmountError reports a mint or payment amount rejected locally.
type InvalidAmountError struct {
	Amount string
	Reason string
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("invalid amount %q: %s", e.Amount, e.Reason)
}

// StorageUploadError means the pinning service rejected an upload or was
// unreachable. Status is the upstream HTTP status, zero when the request
// never reached the service.
type StorageUploadError struct {
	Operation string
	Status    int
	Body      string
	Err       error
}

func (e *StorageUploadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("storage upload %s failed: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("storage upload %s failed: status %d: %s", e.Operation, e.Status, e.Body)
}

func (e *StorageUploadError) Unwrap() error { return e.Err }

// FetchError means a remote resource could not be fetched for hashing or
// metadata resolution.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s failed: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s failed: status %d", e.URL, e.Status)
}

func (e *FetchError) Unwrap() error { return e.Err }

// LedgerError means the ledger gateway rejected or reverted an operation.
// Message carries the upstream error text verbatim.
type LedgerError struct {
	Operation string
	Message   string
}

func (e *LedgerError) Error() string {
	return fmt.Sprintf("ledger %s failed: %s", e.Operation, e.Message)
}

func NewLedgerError(operation, message string) *LedgerError {
	return &LedgerError{Operation: operation, Message: message}
}

// IsValidation reports whether err is a locally raised input error, i.e. one
// that never touched the network.
func IsValidation(err error) bool {
	var ve *ValidationError
	var we *WalletNotConnectedError
	var ae *InvalidAmountError
	return errors.As(err, &ve) || errors.As(err, &we) || errors.As(err, &ae)
}
