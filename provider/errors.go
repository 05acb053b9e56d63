package provider

import (
	"errors"
	"fmt"
)

// ValidationError reports a request that failed a local precondition before
// any network call was made: a missing required field for the given action,
// an unknown recurring action, or an operation the processor does not
// support. It is never retried and never sent to the gateway.
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

// NewValidationError creates a ValidationError for the named field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// TransportError wraps a failure from the HTTP collaborator: network error,
// TLS failure, timeout, or a non-2xx status. It is propagated unchanged;
// this layer adds no retry logic because processors interpret duplicate
// submissions themselves.
type TransportError struct {
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %v", e.Cause)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// IsTransportError reports whether err is (or wraps) a TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// ParseError reports a response that is not well-formed XML or is missing
// the dialect's result container. It is distinct from a gateway decline,
// which is returned as a normal Result with Success=false.
type ParseError struct {
	Detail string
	Cause  error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse: %s: %v", e.Detail, e.Cause)
	}
	return fmt.Sprintf("parse: %s", e.Detail)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// IsParseError reports whether err is (or wraps) a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
