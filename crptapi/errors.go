/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package crptapi

import (
	"errors"
	"fmt"
)

// ErrRateLimited is returned by Outcome.AsError when no permit was available for the submission.
var ErrRateLimited = errors.New("request rate limit exceeded")

// ConfigurationError is returned by New when the client cannot be constructed with the given configuration.
type ConfigurationError struct {
	Inner error
}

// Error returns a string representation of the configuration error.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %v", e.Inner)
}

// Unwrap returns the inner error.
func (e *ConfigurationError) Unwrap() error {
	return e.Inner
}

// SerializationError is the error of an outcome whose payload could not be encoded.
type SerializationError struct {
	Inner error
}

// Error returns a string representation of the serialization error.
func (e *SerializationError) Error() string {
	return fmt.Sprintf("encode payload: %v", e.Inner)
}

// Unwrap returns the inner error.
func (e *SerializationError) Unwrap() error {
	return e.Inner
}

// TransportError is the error of an outcome whose request could not be sent
// or whose response could not be received.
type TransportError struct {
	Inner error
}

// Error returns a string representation of the transport error.
func (e *TransportError) Error() string {
	return fmt.Sprintf("send request: %v", e.Inner)
}

// Unwrap returns the inner error.
func (e *TransportError) Unwrap() error {
	return e.Inner
}

// UnexpectedStatusError is returned by Outcome.AsError when the API responded with a non-2xx status code.
type UnexpectedStatusError struct {
	StatusCode int
	Body       []byte
}

// Error returns a string representation of the unexpected status error.
func (e *UnexpectedStatusError) Error() string {
	if len(e.Body) == 0 {
		return fmt.Sprintf("unexpected HTTP status code %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected HTTP status code %d: %s", e.StatusCode, e.Body)
}
