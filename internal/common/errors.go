// Package common contains shared constants and sentinel errors used across
// the clockin client layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// ErrSessionInvalid means the backend rejected (or never saw) the stored
	// session token. All locally cached session state must be wiped when it
	// is observed.
	ErrSessionInvalid = errors.New("session invalid")

	// ErrUnavailable covers transport-level failures: the request never
	// produced a usable response.
	ErrUnavailable = errors.New("server unavailable")

	// ErrNoMatch is the non-fatal "resolution empty" outcome: the backend
	// answered but returned no candidate projects for the given signal.
	ErrNoMatch = errors.New("no matching projects")

	// ErrRejected means the backend answered success:false to an action.
	// The server-provided message, when present, is wrapped around it.
	ErrRejected = errors.New("rejected by server")

	// ErrBusy is returned when an action is attempted while another one for
	// the same control is still in flight.
	ErrBusy = errors.New("another request is in flight")

	// ErrValidation covers locally rejected input (missing service id on
	// check-in, empty report fields).
	ErrValidation = errors.New("validation error")
)
