package client

import (
	"errors"
	"fmt"
)

// ErrorCategory is the normalized failure taxonomy of the verification service.
type ErrorCategory string

const (
	// CategoryNetworkUnavailable covers transport failures, empty bodies and
	// unexpected HTTP statuses.
	CategoryNetworkUnavailable ErrorCategory = "network_unavailable"

	// CategoryTimeout indicates the service did not answer within the deadline.
	CategoryTimeout ErrorCategory = "timeout"

	// CategoryUnauthorized indicates the API key was rejected.
	CategoryUnauthorized ErrorCategory = "unauthorized"

	// CategoryMalformedResponse indicates a body that is not valid JSON.
	CategoryMalformedResponse ErrorCategory = "malformed_response"

	// CategoryKnownDeliverability is a recognized problem with the address.
	CategoryKnownDeliverability ErrorCategory = "known_deliverability_error"

	// CategoryUnknownDeliverability is a classification this client does not know.
	CategoryUnknownDeliverability ErrorCategory = "unknown_deliverability_error"

	// CategoryCircuitOpen indicates the call was skipped by the circuit breaker.
	CategoryCircuitOpen ErrorCategory = "circuit_open"
)

// Error wraps a failed call with its normalized category.
type Error struct {
	Category ErrorCategory
	Op       string
	Status   int
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s [%s]: %v", e.Op, e.Category, e.Err)
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s [%s]: status %d", e.Op, e.Category, e.Status)
	}
	return fmt.Sprintf("%s [%s]", e.Op, e.Category)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether repeating the call could succeed.
func (e *Error) Retryable() bool {
	return e.Category == CategoryTimeout ||
		e.Category == CategoryNetworkUnavailable ||
		e.Category == CategoryCircuitOpen
}

// CategoryOf extracts the category from err, defaulting to network unavailable.
func CategoryOf(err error) ErrorCategory {
	var e *Error
	if errors.As(err, &e) {
		return e.Category
	}
	return CategoryNetworkUnavailable
}

// IsRetryable reports whether err is a retryable client error.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable()
	}
	return false
}
