package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a business error with a structured code.
//
// Codes have the form SG-{CATEGORY}-{NNNN}. The last four digits follow the
// HTTP status the error maps to when it reaches the transport layer.
type DomainError struct {
	Code    string // Error code (e.g., "SG-AUTH-4010")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is matches any DomainError carrying the same code.
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
		if code == "" {
			return true
		}
		return de.Code == code
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

// Session errors (SESS). These stay inside the process; the admin API
// reports a missing or expired session as authenticated=false.
var (
	// ErrSessionNotFound indicates no session matches the presented token.
	ErrSessionNotFound = NewDomainError("SG-SESS-4040", "session not found")

	// ErrSessionExpired indicates the session outlived the store TTL.
	ErrSessionExpired = NewDomainError("SG-SESS-4041", "session expired")
)

// Token errors (TOKN).
var (
	// ErrTokenConflict indicates the generator kept producing tokens whose
	// digest is already indexed.
	ErrTokenConflict = NewDomainError("SG-TOKN-4090", "token conflict")
)

// Authentication errors (AUTH).
var (
	// ErrInvalidCredentials is the generic login rejection. It never says
	// whether the identity exists.
	ErrInvalidCredentials = NewDomainError("SG-AUTH-4010", "invalid credentials")
)

// System errors (SYS).
var (
	// ErrBadRequest indicates a malformed request.
	ErrBadRequest = NewDomainError("SG-SYS-4000", "bad request")

	// ErrNotFound indicates an unknown API route.
	ErrNotFound = NewDomainError("SG-SYS-4040", "not found")

	// ErrMethodNotAllowed indicates the route exists for another method.
	ErrMethodNotAllowed = NewDomainError("SG-SYS-4050", "method not allowed")

	// ErrPayloadTooLarge indicates the request body exceeded its limit.
	ErrPayloadTooLarge = NewDomainError("SG-SYS-4130", "request body too large")

	// ErrRateLimited indicates too many requests.
	ErrRateLimited = NewDomainError("SG-SYS-4290", "too many requests")

	// ErrInternalServer indicates an internal server error.
	ErrInternalServer = NewDomainError("SG-SYS-5000", "internal server error")

	// ErrServiceUnavailable indicates the credential store cannot be reached.
	ErrServiceUnavailable = NewDomainError("SG-SYS-5030", "service unavailable")
)

// Argument errors (ARG).
var (
	// ErrInvalidArgument indicates an invalid argument.
	ErrInvalidArgument = NewDomainError("SG-ARG-1001", "invalid argument")

	// ErrMissingArgument indicates a required argument is missing.
	ErrMissingArgument = NewDomainError("SG-ARG-1002", "missing required argument")
)
