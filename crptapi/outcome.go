/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package crptapi

import (
	"errors"
	"net/http"
)

// ErrUnknownOutcome is returned by Outcome.AsError for an outcome without a known kind
// (e.g. the zero value).
var ErrUnknownOutcome = errors.New("unknown submission outcome")

// OutcomeKind is a kind of the submission outcome.
type OutcomeKind int

// Outcome kinds.
const (
	// OutcomeUnknown is the zero value, it is never returned by Client.Submit.
	OutcomeUnknown OutcomeKind = iota
	// OutcomeSent means that the request was sent and the API responded with some status code.
	OutcomeSent
	// OutcomeRateLimited means that no permit was available, nothing was sent.
	OutcomeRateLimited
	// OutcomeSerializationFailed means that the payload could not be encoded, nothing was sent.
	OutcomeSerializationFailed
	// OutcomeTransportFailed means that the request could not be completed.
	OutcomeTransportFailed
)

// String returns the name of the outcome kind used in logs and metrics.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSent:
		return "sent"
	case OutcomeRateLimited:
		return "rate_limited"
	case OutcomeSerializationFailed:
		return "serialization_failed"
	case OutcomeTransportFailed:
		return "transport_failed"
	}
	return "unknown"
}

// Outcome is the result of a single submission.
type Outcome struct {
	Kind OutcomeKind

	// StatusCode is the HTTP status code of the response. Set only for OutcomeSent.
	StatusCode int

	// Body is the response body (possibly truncated). Set only for OutcomeSent.
	Body []byte

	// RequestID is the X-Request-ID of the request. Empty if nothing was sent.
	RequestID string

	// Err is either *SerializationError or *TransportError.
	// Set only for OutcomeSerializationFailed and OutcomeTransportFailed.
	Err error
}

// IsSuccessful reports whether the API accepted the submission (2xx status code).
func (o Outcome) IsSuccessful() bool {
	return o.Kind == OutcomeSent && o.StatusCode >= http.StatusOK && o.StatusCode < http.StatusMultipleChoices
}

// AsError converts the outcome to an error. Nil is returned for a successful outcome.
func (o Outcome) AsError() error {
	switch o.Kind {
	case OutcomeSent:
		if o.IsSuccessful() {
			return nil
		}
		return &UnexpectedStatusError{StatusCode: o.StatusCode, Body: o.Body}
	case OutcomeRateLimited:
		return ErrRateLimited
	case OutcomeSerializationFailed, OutcomeTransportFailed:
		if o.Err != nil {
			return o.Err
		}
	}
	return ErrUnknownOutcome
}
