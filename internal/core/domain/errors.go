package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain error with a structured error code.
// Codes have the form DC-<AREA>-<NNNN>.
type DomainError struct {
	Code    string // Error code (e.g., "DC-STOR-5001")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is matches any DomainError with the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return code == "" || de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// Code errors.
var (
	// ErrCodeMalformed indicates a code with a bad length or charset.
	ErrCodeMalformed = NewDomainError("DC-CODE-4000", "malformed code")

	// ErrCodeSpaceExhausted indicates generation gave up after too many collisions.
	ErrCodeSpaceExhausted = NewDomainError("DC-CODE-5030", "code space exhausted")
)

// Storage errors.
var (
	// ErrSnapshotMalformed indicates the snapshot file could not be parsed
	// or holds entries that violate the code invariants.
	ErrSnapshotMalformed = NewDomainError("DC-STOR-5001", "malformed snapshot")

	// ErrSnapshotWrite indicates a snapshot could not be written.
	ErrSnapshotWrite = NewDomainError("DC-STOR-5002", "snapshot write failed")

	// ErrQueueClosed indicates the persistence queue no longer accepts signals.
	ErrQueueClosed = NewDomainError("DC-STOR-5030", "persistence queue closed")
)

// Protocol and system errors.
var (
	// ErrProtocol indicates a malformed frame on the wire.
	ErrProtocol = NewDomainError("DC-PROT-4000", "protocol error")

	// ErrInternal indicates an unexpected internal failure.
	ErrInternal = NewDomainError("DC-SYS-5000", "internal error")
)
