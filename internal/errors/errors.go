package errors

import "fmt"

// ErrorCode represents a Relay error code.
type ErrorCode string

const (
	ErrInvalidRequest    ErrorCode = "INVALID_REQUEST"    // 400
	ErrNotFound          ErrorCode = "NOT_FOUND"          // 404
	ErrInvalidTransition ErrorCode = "INVALID_TRANSITION" // 409
	ErrSourceUnavailable ErrorCode = "SOURCE_UNAVAILABLE" // 502 (degraded, rarely surfaced)
	ErrInternal          ErrorCode = "INTERNAL"           // 500
)

// RelayError represents a structured error with code, status, and details.
type RelayError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *RelayError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *RelayError {
	return &RelayError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when a handoff report cannot be found.
// Not-found is a distinct outcome and is never conflated with internal faults.
func NewNotFound(id string) *RelayError {
	return &RelayError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("handoff report not found: %s", id),
		Details: map[string]any{"id": id},
	}
}

// NewInvalidTransition creates a 409 error for illegal lifecycle transitions,
// e.g. synthesizing a prompt before a report is ready.
func NewInvalidTransition(from, op string) *RelayError {
	return &RelayError{
		Code:    ErrInvalidTransition,
		Status:  409,
		Message: fmt.Sprintf("operation %q is not allowed in state %q", op, from),
		Details: map[string]any{"state": from, "operation": op},
	}
}

// NewSourceUnavailable creates a 502 error for an external state source that
// failed or timed out. Aggregation logs this and substitutes the section's
// default instead of returning it.
func NewSourceUnavailable(source string, err error) *RelayError {
	msg := fmt.Sprintf("source %q unavailable", source)
	if err != nil {
		msg = fmt.Sprintf("source %q unavailable: %v", source, err)
	}
	return &RelayError{
		Code:    ErrSourceUnavailable,
		Status:  502,
		Message: msg,
		Details: map[string]any{"source": source},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *RelayError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &RelayError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a RelayError with the given code.
func Is(err error, code ErrorCode) bool {
	if rErr, ok := err.(*RelayError); ok {
		return rErr.Code == code
	}
	return false
}
