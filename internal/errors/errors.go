package errors

import (
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// SnapshotInvalid indicates the analyzer snapshot could not be decoded
	SnapshotInvalid ErrorCode = "SNAPSHOT_INVALID"
	// SnapshotMissing indicates no snapshot file was found
	SnapshotMissing ErrorCode = "SNAPSHOT_MISSING"
	// ScopeInvalid indicates an invalid parameter (direction, depth, budget)
	ScopeInvalid ErrorCode = "SCOPE_INVALID"
	// CacheIO indicates a persistent cache read/write failure
	CacheIO ErrorCode = "CACHE_IO"
	// BudgetExceeded indicates a response hit its size limits
	BudgetExceeded ErrorCode = "BUDGET_EXCEEDED"
	// InternalError indicates an unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// CciError represents a CCI error with a stable code and message.
//
// Data-shape anomalies (unknown symbols, dangling edges, missing files) are
// never reported through this type; they surface as sentinel results at the
// query boundary. CciError is reserved for real failures: undecodable input,
// bad parameters, I/O.
type CciError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	cause   error       // Underlying error (not exported to JSON)
}

// New creates a new CciError
func New(code ErrorCode, message string, cause error) *CciError {
	return &CciError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Error implements the error interface
func (e *CciError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *CciError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *CciError) WithDetails(details interface{}) *CciError {
	e.Details = details
	return e
}

// CodeOf extracts the error code from an error, if it carries one.
func CodeOf(err error) (ErrorCode, bool) {
	if err == nil {
		return "", false
	}
	if ce, ok := err.(*CciError); ok {
		return ce.Code, true
	}
	return "", false
}
