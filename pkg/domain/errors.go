package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrIncomplete is returned when a submission is assembled from a state that fails a gate.
var ErrIncomplete = errors.New("wizard incomplete")

// ErrInvalidValue is returned when a raw value cannot be parsed into a field's type.
var ErrInvalidValue = errors.New("invalid value")

// ErrUnknownField is returned when a command names a field the wizard does not have.
var ErrUnknownField = errors.New("unknown field")

// ErrWrongBranch is returned when a location operation does not match the selected branch
// (e.g. fetching the device position while "at location now" is not "yes").
var ErrWrongBranch = errors.New("operation not available on the selected location branch")

// ErrStaleLocate is returned when a geolocation result arrives for a request
// that was superseded or cancelled.
var ErrStaleLocate = errors.New("stale geolocation result")

// ErrLocateUnavailable is returned by locators that cannot produce a position in this host.
var ErrLocateUnavailable = errors.New("geolocation unavailable")

// LocateFailureMessage is the retryable message surfaced after a failed device geolocation.
const LocateFailureMessage = "Could not fetch location. Please grant permission or try again."
